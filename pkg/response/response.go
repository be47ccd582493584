package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growshare/service-booking/pkg/domain"
)

// Envelope is the standard JSON response shape.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PaginatedEnvelope adds pagination metadata to the standard envelope.
type PaginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, PaginatedEnvelope{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: message})
}

// Error maps a domain error to its HTTP status. Non-domain errors become 500
// with a generic message.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindValidation, domain.KindPolicyViolation:
		status = http.StatusUnprocessableEntity
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindInvalidOperation:
		status = http.StatusBadRequest
	}
	c.JSON(status, Envelope{Success: false, Error: de.Message})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growshare/service-booking/internal/application"
	"github.com/growshare/service-booking/pkg/auth"
	"github.com/growshare/service-booking/pkg/middleware"
	"github.com/growshare/service-booking/pkg/response"
)

// DisputeHandler handles HTTP requests for disputes and their message logs.
type DisputeHandler struct {
	service *application.DisputeService
}

// NewDisputeHandler creates a new DisputeHandler.
func NewDisputeHandler(service *application.DisputeService) *DisputeHandler {
	return &DisputeHandler{service: service}
}

// RegisterRoutes registers all dispute routes on the given router group.
func (h *DisputeHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	disputes := r.Group("/api/v1/disputes")
	disputes.Use(authMW)
	{
		disputes.POST("", h.OpenDispute)
		disputes.GET("/:id", h.GetDispute)
		disputes.POST("/:id/review", h.StartReview)
		disputes.POST("/:id/messages", h.PostMessage)
		disputes.GET("/:id/messages", h.GetMessages)
	}

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.GET("/:id/dispute", h.GetBookingDispute)
	}
}

// OpenDispute handles POST /api/v1/disputes.
func (h *DisputeHandler) OpenDispute(c *gin.Context) {
	filerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.OpenDispute(c.Request.Context(), filerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetDispute handles GET /api/v1/disputes/:id.
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	disputeID, actor, ok := disputeRequest(c)
	if !ok {
		return
	}

	result, err := h.service.GetDispute(c.Request.Context(), disputeID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBookingDispute handles GET /api/v1/bookings/:id/dispute.
func (h *DisputeHandler) GetBookingDispute(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetBookingDispute(c.Request.Context(), bookingID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// StartReview handles POST /api/v1/disputes/:id/review.
func (h *DisputeHandler) StartReview(c *gin.Context) {
	disputeID, actor, ok := disputeRequest(c)
	if !ok {
		return
	}

	result, err := h.service.StartReview(c.Request.Context(), disputeID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// PostMessage handles POST /api/v1/disputes/:id/messages.
func (h *DisputeHandler) PostMessage(c *gin.Context) {
	disputeID, actor, ok := disputeRequest(c)
	if !ok {
		return
	}

	var req application.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.PostMessage(c.Request.Context(), disputeID, actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetMessages handles GET /api/v1/disputes/:id/messages.
func (h *DisputeHandler) GetMessages(c *gin.Context) {
	disputeID, actor, ok := disputeRequest(c)
	if !ok {
		return
	}

	result, err := h.service.GetMessages(c.Request.Context(), disputeID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// disputeRequest extracts the dispute ID and the acting user, writing the
// error response itself when either is missing.
func disputeRequest(c *gin.Context) (uuid.UUID, auth.Actor, bool) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid dispute ID")
		return uuid.Nil, auth.Actor{}, false
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, auth.Actor{}, false
	}

	return disputeID, actor, true
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growshare/service-booking/internal/application"
	bookingDomain "github.com/growshare/service-booking/internal/domain/booking"
	"github.com/growshare/service-booking/pkg/auth"
	"github.com/growshare/service-booking/pkg/middleware"
	"github.com/growshare/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleRenter), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/approve", h.ApproveBooking)
		bookings.POST("/:id/reject", h.RejectBooking)
		bookings.POST("/:id/activate", h.ActivateBooking)
		bookings.POST("/:id/complete", h.CompleteBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}

	plots := r.Group("/api/v1/plots")
	plots.Use(authMW)
	{
		plots.GET("/:id/calendar", h.PlotCalendar)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	renterID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), renterID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. The view query selects between
// bookings the caller made (renter, the default) and bookings on the
// caller's plots (owner).
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	if c.DefaultQuery("view", "renter") == "owner" {
		result, err := h.service.GetOwnerBookings(c.Request.Context(), userID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
		return
	}

	result, err := h.service.GetRenterBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
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

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ApproveBooking handles POST /api/v1/bookings/:id/approve.
func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	h.transition(c, bookingDomain.StatusApproved)
}

// RejectBooking handles POST /api/v1/bookings/:id/reject.
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	h.transition(c, bookingDomain.StatusRejected)
}

// ActivateBooking handles POST /api/v1/bookings/:id/activate.
func (h *BookingHandler) ActivateBooking(c *gin.Context) {
	h.transition(c, bookingDomain.StatusActive)
}

// CompleteBooking handles POST /api/v1/bookings/:id/complete.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, bookingDomain.StatusCompleted)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.transition(c, bookingDomain.StatusCancelled)
}

func (h *BookingHandler) transition(c *gin.Context, target bookingDomain.BookingStatus) {
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

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.TransitionBooking(c.Request.Context(), bookingID, actor, target, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// PlotCalendar handles GET /api/v1/plots/:id/calendar. It returns the
// calendar-blocking bookings so renters can see which ranges are taken.
func (h *BookingHandler) PlotCalendar(c *gin.Context) {
	plotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plot ID")
		return
	}

	result, err := h.service.GetPlotCalendar(c.Request.Context(), plotID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

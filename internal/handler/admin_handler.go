package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growshare/service-booking/internal/application"
	"github.com/growshare/service-booking/pkg/auth"
	"github.com/growshare/service-booking/pkg/middleware"
	"github.com/growshare/service-booking/pkg/response"
)

// AdminHandler handles admin HTTP requests for booking and dispute management.
type AdminHandler struct {
	bookings *application.BookingService
	disputes *application.DisputeService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, disputes *application.DisputeService) *AdminHandler {
	return &AdminHandler{bookings: bookings, disputes: disputes}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/disputes", h.ListOpenDisputes)
		admin.POST("/disputes/:id/review", h.StartReview)
		admin.POST("/disputes/:id/resolve", h.ResolveDispute)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ListOpenDisputes handles GET /api/v1/admin/disputes.
func (h *AdminHandler) ListOpenDisputes(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	disputes, total, err := h.disputes.ListOpenDisputes(c.Request.Context(), actor, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, disputes, total, page, limit)
}

// StartReview handles POST /api/v1/admin/disputes/:id/review.
func (h *AdminHandler) StartReview(c *gin.Context) {
	disputeID, actor, ok := disputeRequest(c)
	if !ok {
		return
	}

	result, err := h.disputes.StartReview(c.Request.Context(), disputeID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ResolveDispute handles POST /api/v1/admin/disputes/:id/resolve.
func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	disputeID, actor, ok := disputeRequest(c)
	if !ok {
		return
	}

	var req application.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.disputes.ResolveDispute(c.Request.Context(), disputeID, actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

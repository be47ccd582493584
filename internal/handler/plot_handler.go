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

// PlotHandler handles HTTP requests for plot listings.
type PlotHandler struct {
	service *application.PlotService
}

// NewPlotHandler creates a new PlotHandler.
func NewPlotHandler(service *application.PlotService) *PlotHandler {
	return &PlotHandler{service: service}
}

// RegisterRoutes registers all plot routes on the given router group.
func (h *PlotHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	plots := r.Group("/api/v1/plots")
	plots.Use(authMW)
	{
		plots.POST("", middleware.RequireRole(auth.RoleOwner), h.CreatePlot)
		plots.GET("", h.ListPlots)
		plots.GET("/mine", middleware.RequireRole(auth.RoleOwner), h.MyPlots)
		plots.GET("/:id", h.GetPlot)
		plots.PATCH("/:id", h.UpdatePlot)
		plots.POST("/:id/unlist", h.UnlistPlot)
		plots.POST("/:id/relist", h.RelistPlot)
	}
}

// CreatePlot handles POST /api/v1/plots.
func (h *PlotHandler) CreatePlot(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreatePlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreatePlot(c.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPlots handles GET /api/v1/plots.
func (h *PlotHandler) ListPlots(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListPlots(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// MyPlots handles GET /api/v1/plots/mine.
func (h *PlotHandler) MyPlots(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetMyPlots(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetPlot handles GET /api/v1/plots/:id.
func (h *PlotHandler) GetPlot(c *gin.Context) {
	plotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plot ID")
		return
	}

	result, err := h.service.GetPlot(c.Request.Context(), plotID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdatePlot handles PATCH /api/v1/plots/:id.
func (h *PlotHandler) UpdatePlot(c *gin.Context) {
	plotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plot ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdatePlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdatePlot(c.Request.Context(), plotID, actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UnlistPlot handles POST /api/v1/plots/:id/unlist.
func (h *PlotHandler) UnlistPlot(c *gin.Context) {
	h.setListed(c, false)
}

// RelistPlot handles POST /api/v1/plots/:id/relist.
func (h *PlotHandler) RelistPlot(c *gin.Context) {
	h.setListed(c, true)
}

func (h *PlotHandler) setListed(c *gin.Context, listed bool) {
	plotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plot ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var result *application.PlotDTO
	if listed {
		result, err = h.service.RelistPlot(c.Request.Context(), plotID, actor)
	} else {
		result, err = h.service.UnlistPlot(c.Request.Context(), plotID, actor)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

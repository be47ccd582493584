package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	plotDomain "github.com/growshare/service-booking/internal/domain/plot"
	"github.com/growshare/service-booking/pkg/auth"
	"github.com/growshare/service-booking/pkg/domain"
)

// CreatePlotRequest holds the data needed to list a plot.
type CreatePlotRequest struct {
	Title                string  `json:"title" binding:"required"`
	Description          string  `json:"description"`
	Acreage              float64 `json:"acreage" binding:"required"`
	SoilType             string  `json:"soil_type"`
	MonthlyRateCents     int64   `json:"monthly_rate_cents" binding:"required"`
	MinimumLeaseMonths   *int    `json:"minimum_lease_months"`
	SecurityDepositCents *int64  `json:"security_deposit_cents"`
	InstantBook          bool    `json:"instant_book"`
}

// UpdatePlotRequest holds partial updates to a listing. Zero values leave the
// field unchanged; pointer fields distinguish "not sent" from an explicit
// value.
type UpdatePlotRequest struct {
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Acreage              float64 `json:"acreage"`
	SoilType             string  `json:"soil_type"`
	MonthlyRateCents     int64   `json:"monthly_rate_cents"`
	MinimumLeaseMonths   *int    `json:"minimum_lease_months"`
	SecurityDepositCents *int64  `json:"security_deposit_cents"`
	InstantBook          *bool   `json:"instant_book"`
}

// PlotDTO is the response representation of a plot listing.
type PlotDTO struct {
	ID                   uuid.UUID `json:"id"`
	OwnerID              uuid.UUID `json:"owner_id"`
	Title                string    `json:"title"`
	Description          string    `json:"description,omitempty"`
	Acreage              float64   `json:"acreage"`
	SoilType             string    `json:"soil_type,omitempty"`
	MonthlyRateCents     int64     `json:"monthly_rate_cents"`
	MinimumLeaseMonths   *int      `json:"minimum_lease_months,omitempty"`
	SecurityDepositCents *int64    `json:"security_deposit_cents,omitempty"`
	InstantBook          bool      `json:"instant_book"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// PlotService manages plot listings.
type PlotService struct {
	plots    plotDomain.PlotRepository
	activity ActivityRecorder
	logger   *zap.Logger
}

// NewPlotService creates a new PlotService.
func NewPlotService(plots plotDomain.PlotRepository, activity ActivityRecorder, logger *zap.Logger) *PlotService {
	return &PlotService{plots: plots, activity: activity, logger: logger}
}

// CreatePlot lists a new plot owned by the caller.
func (s *PlotService) CreatePlot(ctx context.Context, ownerID uuid.UUID, req CreatePlotRequest) (*PlotDTO, error) {
	p, err := plotDomain.NewPlot(
		ownerID,
		req.Title,
		req.Description,
		req.Acreage,
		req.SoilType,
		req.MonthlyRateCents,
		req.MinimumLeaseMonths,
		req.SecurityDepositCents,
		req.InstantBook,
	)
	if err != nil {
		return nil, err
	}

	if err := s.plots.Save(ctx, p); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, ownerID, "plot_listed", "plot", p.ID())

	result := toPlotDTO(p)
	return &result, nil
}

// GetPlot retrieves a single plot.
func (s *PlotService) GetPlot(ctx context.Context, plotID uuid.UUID) (*PlotDTO, error) {
	p, err := s.plots.FindByID(ctx, plotID)
	if err != nil {
		return nil, err
	}
	result := toPlotDTO(p)
	return &result, nil
}

// GetMyPlots retrieves all plots owned by the caller, listed or not.
func (s *PlotService) GetMyPlots(ctx context.Context, ownerID uuid.UUID) ([]PlotDTO, error) {
	plots, err := s.plots.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return toPlotDTOs(plots), nil
}

// ListPlots retrieves paginated active listings for the marketplace.
func (s *PlotService) ListPlots(ctx context.Context, page, limit int) (*domain.PaginatedResult[PlotDTO], error) {
	plots, total, err := s.plots.ListActive(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toPlotDTOs(plots), total, page, limit)
	return &result, nil
}

// UpdatePlot applies partial updates to a listing. Only the owner (or an
// admin) may update; pricing changes never touch existing bookings.
func (s *PlotService) UpdatePlot(ctx context.Context, plotID uuid.UUID, actor auth.Actor, req UpdatePlotRequest) (*PlotDTO, error) {
	p, err := s.plots.FindByID(ctx, plotID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(actor.ID) && !actor.Roles.Has(auth.RoleAdmin) {
		return nil, domain.NewForbiddenError("only the plot owner can update this listing")
	}

	if err := p.Update(
		req.Title,
		req.Description,
		req.Acreage,
		req.SoilType,
		req.MonthlyRateCents,
		req.MinimumLeaseMonths,
		req.SecurityDepositCents,
		req.InstantBook,
	); err != nil {
		return nil, err
	}

	if err := s.plots.Update(ctx, p); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor.ID, "plot_updated", "plot", p.ID())

	result := toPlotDTO(p)
	return &result, nil
}

// UnlistPlot removes a plot from the marketplace. Existing bookings are left
// untouched; the plot just stops accepting new requests.
func (s *PlotService) UnlistPlot(ctx context.Context, plotID uuid.UUID, actor auth.Actor) (*PlotDTO, error) {
	return s.setListed(ctx, plotID, actor, false)
}

// RelistPlot makes an unlisted plot bookable again.
func (s *PlotService) RelistPlot(ctx context.Context, plotID uuid.UUID, actor auth.Actor) (*PlotDTO, error) {
	return s.setListed(ctx, plotID, actor, true)
}

func (s *PlotService) setListed(ctx context.Context, plotID uuid.UUID, actor auth.Actor, listed bool) (*PlotDTO, error) {
	p, err := s.plots.FindByID(ctx, plotID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(actor.ID) && !actor.Roles.Has(auth.RoleAdmin) {
		return nil, domain.NewForbiddenError("only the plot owner can change this listing")
	}

	action := "plot_unlisted"
	if listed {
		p.Relist()
		action = "plot_relisted"
	} else {
		p.Unlist()
	}

	if err := s.plots.Update(ctx, p); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor.ID, action, "plot", p.ID())

	result := toPlotDTO(p)
	return &result, nil
}

func (s *PlotService) recordActivity(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID) {
	if err := s.activity.Record(ctx, userID, action, entityType, entityID); err != nil {
		s.logger.Error("failed to record activity",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func toPlotDTO(p *plotDomain.Plot) PlotDTO {
	return PlotDTO{
		ID:                   p.ID(),
		OwnerID:              p.OwnerID(),
		Title:                p.Title(),
		Description:          p.Description(),
		Acreage:              p.Acreage(),
		SoilType:             p.SoilType(),
		MonthlyRateCents:     p.MonthlyRateCents(),
		MinimumLeaseMonths:   p.MinimumLeaseMonths(),
		SecurityDepositCents: p.SecurityDepositCents(),
		InstantBook:          p.InstantBook(),
		Status:               string(p.Status()),
		CreatedAt:            p.CreatedAt(),
		UpdatedAt:            p.UpdatedAt(),
	}
}

func toPlotDTOs(plots []*plotDomain.Plot) []PlotDTO {
	dtos := make([]PlotDTO, len(plots))
	for i, p := range plots {
		dtos[i] = toPlotDTO(p)
	}
	return dtos
}

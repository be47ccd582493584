package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	plotDomain "github.com/growshare/service-booking/internal/domain/plot"
	"github.com/growshare/service-booking/pkg/domain"
)

// PlotModel is the GORM model for the plots table.
type PlotModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID              uuid.UUID `gorm:"type:uuid;index;not null"`
	Title                string    `gorm:"not null;size:200"`
	Description          string    `gorm:"size:2000"`
	Acreage              float64   `gorm:"not null"`
	SoilType             string    `gorm:"size:50"`
	MonthlyRateCents     int64     `gorm:"not null"`
	MinimumLeaseMonths   *int      `gorm:""`
	SecurityDepositCents *int64    `gorm:""`
	InstantBook          bool      `gorm:"not null;default:false"`
	Status               string    `gorm:"not null;size:20;index"`
	Version              int64     `gorm:"not null;default:1"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PlotModel) TableName() string {
	return "plots"
}

// GormPlotRepository is the GORM-based implementation of PlotRepository.
type GormPlotRepository struct {
	db *gorm.DB
}

// NewGormPlotRepository creates a new GormPlotRepository.
func NewGormPlotRepository(db *gorm.DB) *GormPlotRepository {
	return &GormPlotRepository{db: db}
}

// FindByID retrieves a plot by its unique identifier.
func (r *GormPlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*plotDomain.Plot, error) {
	var model PlotModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Plot", id.String())
		}
		return nil, fmt.Errorf("failed to find plot by ID: %w", err)
	}
	return toDomainPlot(&model), nil
}

// FindByOwnerID retrieves all plots belonging to an owner.
func (r *GormPlotRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*plotDomain.Plot, error) {
	var models []PlotModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find plots by owner: %w", err)
	}

	plots := make([]*plotDomain.Plot, len(models))
	for i, m := range models {
		plots[i] = toDomainPlot(&m)
	}
	return plots, nil
}

// ListActive retrieves active plot listings with pagination.
func (r *GormPlotRepository) ListActive(ctx context.Context, page, limit int) ([]*plotDomain.Plot, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&PlotModel{}).
		Where("status = ?", string(plotDomain.PlotStatusActive)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count active plots: %w", err)
	}

	var models []PlotModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(plotDomain.PlotStatusActive)).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list active plots: %w", err)
	}

	plots := make([]*plotDomain.Plot, len(models))
	for i, m := range models {
		plots[i] = toDomainPlot(&m)
	}
	return plots, total, nil
}

// Save persists a new plot.
func (r *GormPlotRepository) Save(ctx context.Context, p *plotDomain.Plot) error {
	model := toPlotModel(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// Update persists changes to an existing plot with optimistic locking.
func (r *GormPlotRepository) Update(ctx context.Context, p *plotDomain.Plot) error {
	model := toPlotModel(p)

	expectedVersion := p.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&PlotModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"title":                  model.Title,
			"description":            model.Description,
			"acreage":                model.Acreage,
			"soil_type":              model.SoilType,
			"monthly_rate_cents":     model.MonthlyRateCents,
			"minimum_lease_months":   model.MinimumLeaseMonths,
			"security_deposit_cents": model.SecurityDepositCents,
			"instant_book":           model.InstantBook,
			"status":                 model.Status,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update plot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("plot was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toPlotModel(p *plotDomain.Plot) *PlotModel {
	return &PlotModel{
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
		Version:              p.Version(),
		CreatedAt:            p.CreatedAt(),
		UpdatedAt:            p.UpdatedAt(),
	}
}

func toDomainPlot(m *PlotModel) *plotDomain.Plot {
	return plotDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Title,
		m.Description,
		m.Acreage,
		m.SoilType,
		m.MonthlyRateCents,
		m.MinimumLeaseMonths,
		m.SecurityDepositCents,
		m.InstantBook,
		plotDomain.PlotStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

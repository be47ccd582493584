package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/growshare/service-booking/internal/domain/booking"
	"github.com/growshare/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PlotID               uuid.UUID  `gorm:"type:uuid;index;not null"`
	RenterID             uuid.UUID  `gorm:"type:uuid;index;not null"`
	OwnerID              uuid.UUID  `gorm:"type:uuid;index;not null"`
	StartDate            time.Time  `gorm:"type:date;not null"`
	EndDate              time.Time  `gorm:"type:date;not null"`
	Status               string     `gorm:"not null;size:20;index"`
	MonthlyRateCents     int64      `gorm:"not null"`
	DurationMonths       int        `gorm:"not null"`
	TotalAmountCents     int64      `gorm:"not null"`
	SecurityDepositCents *int64     `gorm:""`
	CancelNote           string     `gorm:"size:500"`
	CancelledAt          *time.Time `gorm:""`
	ActivatedAt          *time.Time `gorm:""`
	CompletedAt          *time.Time `gorm:""`
	Version              int64      `gorm:"not null;default:1"`
	CreatedAt            time.Time  `gorm:"not null"`
	UpdatedAt            time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByRenterID retrieves bookings made by a renter with pagination.
func (r *GormBookingRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "renter_id = ?", renterID, page, limit)
}

// FindByOwnerID retrieves bookings on an owner's plots with pagination.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "owner_id = ?", ownerID, page, limit)
}

// FindByPlotID retrieves all calendar-blocking bookings for a plot.
func (r *GormBookingRepository) FindByPlotID(ctx context.Context, plotID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("plot_id = ? AND status IN ?", plotID, activeStatusStrings()).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings by plot: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "", nil, page, limit)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// SaveIfAvailable inserts the booking after verifying its lease period is
// free. The plot row is locked FOR UPDATE for the duration of the
// transaction, serializing concurrent check-and-insert attempts per plot.
func (r *GormBookingRepository) SaveIfAvailable(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plotRow PlotModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bk.PlotID()).
			First(&plotRow).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Plot", bk.PlotID().String())
			}
			return fmt.Errorf("failed to lock plot row: %w", err)
		}

		// Inclusive-boundary overlap: an existing booking ending on the new
		// start date still conflicts.
		var overlapping int64
		if err := tx.Model(&BookingModel{}).
			Where("plot_id = ? AND status IN ?", bk.PlotID(), activeStatusStrings()).
			Where("start_date <= ? AND end_date >= ?", model.EndDate, model.StartDate).
			Count(&overlapping).Error; err != nil {
			return fmt.Errorf("failed to check for overlapping bookings: %w", err)
		}
		if overlapping > 0 {
			return domain.NewConflictError("requested dates overlap an existing booking for this plot")
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before persisting).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"cancel_note":  model.CancelNote,
			"cancelled_at": model.CancelledAt,
			"activated_at": model.ActivatedAt,
			"completed_at": model.CompletedAt,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Helpers ---

func (r *GormBookingRepository) findPaged(ctx context.Context, cond string, arg interface{}, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if cond != "" {
		query = query.Where(cond, arg)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

func activeStatusStrings() []string {
	statuses := make([]string, len(bookingDomain.ActiveStatuses))
	for i, s := range bookingDomain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                   bk.ID(),
		PlotID:               bk.PlotID(),
		RenterID:             bk.RenterID(),
		OwnerID:              bk.OwnerID(),
		StartDate:            bk.Period().Start(),
		EndDate:              bk.Period().End(),
		Status:               string(bk.Status()),
		MonthlyRateCents:     bk.MonthlyRateCents(),
		DurationMonths:       bk.DurationMonths(),
		TotalAmountCents:     bk.TotalAmountCents(),
		SecurityDepositCents: bk.SecurityDepositCents(),
		CancelNote:           bk.CancelNote(),
		CancelledAt:          bk.CancelledAt(),
		ActivatedAt:          bk.ActivatedAt(),
		CompletedAt:          bk.CompletedAt(),
		Version:              bk.Version(),
		CreatedAt:            bk.CreatedAt(),
		UpdatedAt:            bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.PlotID,
		m.RenterID,
		m.OwnerID,
		bookingDomain.ReconstructLeasePeriod(m.StartDate, m.EndDate),
		status,
		m.MonthlyRateCents,
		m.DurationMonths,
		m.TotalAmountCents,
		m.SecurityDepositCents,
		m.CancelNote,
		m.CancelledAt,
		m.ActivatedAt,
		m.CompletedAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

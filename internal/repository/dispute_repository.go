package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	disputeDomain "github.com/growshare/service-booking/internal/domain/dispute"
	"github.com/growshare/service-booking/pkg/domain"
)

// DisputeModel is the GORM model for the disputes table. The unique index on
// BookingID backs the one-dispute-per-booking invariant at the schema level.
type DisputeModel struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingID            uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	FilerID              uuid.UUID       `gorm:"type:uuid;index;not null"`
	Reason               string          `gorm:"not null;size:30"`
	Description          string          `gorm:"not null;size:2000"`
	RequestedAmountCents *int64          `gorm:""`
	Status               string          `gorm:"not null;size:20;index"`
	Outcome              string          `gorm:"size:30"`
	ResolutionNotes      string          `gorm:"size:2000"`
	ResolvedAmountCents  *int64          `gorm:""`
	ResolvedBy           *uuid.UUID      `gorm:"type:uuid"`
	ResolvedAt           *time.Time      `gorm:""`
	CreatedAt            time.Time       `gorm:"not null"`
	UpdatedAt            time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DisputeModel) TableName() string {
	return "disputes"
}

// DisputeMessageModel is the GORM model for the dispute_messages table.
type DisputeMessageModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DisputeID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	SenderID       uuid.UUID       `gorm:"type:uuid;not null"`
	Content        string          `gorm:"not null;size:4000"`
	AttachmentURLs json.RawMessage `gorm:"type:jsonb"`
	IsInternal     bool            `gorm:"not null;default:false"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DisputeMessageModel) TableName() string {
	return "dispute_messages"
}

// GormDisputeRepository is the GORM-based implementation of DisputeRepository.
type GormDisputeRepository struct {
	db *gorm.DB
}

// NewGormDisputeRepository creates a new GormDisputeRepository.
func NewGormDisputeRepository(db *gorm.DB) *GormDisputeRepository {
	return &GormDisputeRepository{db: db}
}

// FindByID retrieves a dispute by its unique identifier.
func (r *GormDisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*disputeDomain.Dispute, error) {
	var model DisputeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Dispute", id.String())
		}
		return nil, fmt.Errorf("failed to find dispute by ID: %w", err)
	}
	return toDomainDispute(&model), nil
}

// FindByBookingID retrieves the dispute attached to a booking, if any.
func (r *GormDisputeRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*disputeDomain.Dispute, bool, error) {
	var model DisputeModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find dispute by booking: %w", err)
	}
	return toDomainDispute(&model), true, nil
}

// ListOpen retrieves unresolved disputes with pagination (admin).
func (r *GormDisputeRepository) ListOpen(ctx context.Context, page, limit int) ([]*disputeDomain.Dispute, int64, error) {
	query := r.db.WithContext(ctx).Model(&DisputeModel{}).
		Where("status <> ?", string(disputeDomain.StatusResolved))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count open disputes: %w", err)
	}

	var models []DisputeModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list open disputes: %w", err)
	}

	disputes := make([]*disputeDomain.Dispute, len(models))
	for i, m := range models {
		disputes[i] = toDomainDispute(&m)
	}
	return disputes, total, nil
}

// Save persists a new dispute. A duplicate booking reference surfaces as a
// Conflict domain error via the unique index.
func (r *GormDisputeRepository) Save(ctx context.Context, d *disputeDomain.Dispute) error {
	model := toDisputeModel(d)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("a dispute already exists for this booking")
		}
		return fmt.Errorf("failed to save dispute: %w", err)
	}
	return nil
}

// Update persists changes to an existing dispute.
func (r *GormDisputeRepository) Update(ctx context.Context, d *disputeDomain.Dispute) error {
	model := toDisputeModel(d)
	result := r.db.WithContext(ctx).
		Model(&DisputeModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":                model.Status,
			"outcome":               model.Outcome,
			"resolution_notes":      model.ResolutionNotes,
			"resolved_amount_cents": model.ResolvedAmountCents,
			"resolved_by":           model.ResolvedBy,
			"resolved_at":           model.ResolvedAt,
			"updated_at":            model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update dispute: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Dispute", model.ID.String())
	}
	return nil
}

// AppendMessage persists a new message on a dispute's log.
func (r *GormDisputeRepository) AppendMessage(ctx context.Context, msg *disputeDomain.Message) error {
	model, err := toDisputeMessageModel(msg)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append dispute message: %w", err)
	}
	return nil
}

// FindMessages retrieves a dispute's messages in append order.
func (r *GormDisputeRepository) FindMessages(ctx context.Context, disputeID uuid.UUID, includeInternal bool) ([]*disputeDomain.Message, error) {
	query := r.db.WithContext(ctx).Where("dispute_id = ?", disputeID)
	if !includeInternal {
		query = query.Where("is_internal = ?", false)
	}

	var models []DisputeMessageModel
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find dispute messages: %w", err)
	}

	messages := make([]*disputeDomain.Message, len(models))
	for i, m := range models {
		msg, err := toDomainDisputeMessage(&m)
		if err != nil {
			return nil, err
		}
		messages[i] = msg
	}
	return messages, nil
}

// --- Conversion Helpers ---

func toDisputeModel(d *disputeDomain.Dispute) *DisputeModel {
	return &DisputeModel{
		ID:                   d.ID(),
		BookingID:            d.BookingID(),
		FilerID:              d.FilerID(),
		Reason:               string(d.Reason()),
		Description:          d.Description(),
		RequestedAmountCents: d.RequestedAmountCents(),
		Status:               string(d.Status()),
		Outcome:              string(d.Outcome()),
		ResolutionNotes:      d.ResolutionNotes(),
		ResolvedAmountCents:  d.ResolvedAmountCents(),
		ResolvedBy:           d.ResolvedBy(),
		ResolvedAt:           d.ResolvedAt(),
		CreatedAt:            d.CreatedAt(),
		UpdatedAt:            d.UpdatedAt(),
	}
}

func toDomainDispute(m *DisputeModel) *disputeDomain.Dispute {
	return disputeDomain.Reconstruct(
		m.ID,
		m.BookingID,
		m.FilerID,
		disputeDomain.Reason(m.Reason),
		m.Description,
		m.RequestedAmountCents,
		disputeDomain.DisputeStatus(m.Status),
		disputeDomain.Outcome(m.Outcome),
		m.ResolutionNotes,
		m.ResolvedAmountCents,
		m.ResolvedBy,
		m.ResolvedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDisputeMessageModel(msg *disputeDomain.Message) (*DisputeMessageModel, error) {
	var attachments json.RawMessage
	if len(msg.AttachmentURLs()) > 0 {
		data, err := json.Marshal(msg.AttachmentURLs())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attachment URLs: %w", err)
		}
		attachments = data
	}

	return &DisputeMessageModel{
		ID:             msg.ID(),
		DisputeID:      msg.DisputeID(),
		SenderID:       msg.SenderID(),
		Content:        msg.Content(),
		AttachmentURLs: attachments,
		IsInternal:     msg.IsInternal(),
		CreatedAt:      msg.CreatedAt(),
	}, nil
}

func toDomainDisputeMessage(m *DisputeMessageModel) (*disputeDomain.Message, error) {
	var attachments []string
	if len(m.AttachmentURLs) > 0 {
		if err := json.Unmarshal(m.AttachmentURLs, &attachments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachment URLs: %w", err)
		}
	}

	return disputeDomain.ReconstructMessage(
		m.ID,
		m.DisputeID,
		m.SenderID,
		m.Content,
		attachments,
		m.IsInternal,
		m.CreatedAt,
	), nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLogModel is the GORM model for the activity_log table. Rows are
// append-only audit entries; nothing in the service reads them back except
// the admin listing.
type ActivityLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Action     string    `gorm:"not null;size:50"`
	EntityType string    `gorm:"not null;size:30"`
	EntityID   uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ActivityLogModel) TableName() string {
	return "activity_log"
}

// GormActivityLogRepository records audit entries for user actions.
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository.
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Record appends one activity entry.
func (r *GormActivityLogRepository) Record(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID) error {
	model := &ActivityLogModel{
		ID:         uuid.New(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// FindByUser retrieves a user's recent activity, newest first (admin).
func (r *GormActivityLogRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityLogModel, error) {
	var models []ActivityLogModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}
	return models, nil
}

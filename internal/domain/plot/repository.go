package plot

import (
	"context"

	"github.com/google/uuid"
)

// PlotRepository defines persistence operations for plot listings.
type PlotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Plot, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Plot, error)
	ListActive(ctx context.Context, page, limit int) ([]*Plot, int64, error)
	Save(ctx context.Context, plot *Plot) error
	Update(ctx context.Context, plot *Plot) error
}

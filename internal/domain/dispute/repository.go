package dispute

import (
	"context"

	"github.com/google/uuid"
)

// DisputeRepository defines persistence operations for disputes and their
// message log.
type DisputeRepository interface {
	// FindByID retrieves a dispute by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Dispute, error)

	// FindByBookingID retrieves the dispute attached to a booking, if any.
	// The boolean is false when no dispute exists.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Dispute, bool, error)

	// ListOpen retrieves unresolved disputes with pagination (admin).
	ListOpen(ctx context.Context, page, limit int) ([]*Dispute, int64, error)

	// Save persists a new dispute. Returns a Conflict domain error when the
	// booking already has one; the one-dispute-per-booking invariant is
	// enforced here, not only in the service.
	Save(ctx context.Context, dispute *Dispute) error

	// Update persists changes to an existing dispute.
	Update(ctx context.Context, dispute *Dispute) error

	// AppendMessage persists a new message on a dispute's log.
	AppendMessage(ctx context.Context, message *Message) error

	// FindMessages retrieves a dispute's messages in append order. When
	// includeInternal is false, internal messages are filtered out.
	FindMessages(ctx context.Context, disputeID uuid.UUID, includeInternal bool) ([]*Message, error)
}

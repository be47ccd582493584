package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByRenterID retrieves bookings made by a renter with pagination.
	FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByOwnerID retrieves bookings on plots belonging to an owner with
	// pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByPlotID retrieves all calendar-blocking bookings for a plot.
	FindByPlotID(ctx context.Context, plotID uuid.UUID) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// SaveIfAvailable atomically verifies that the booking's lease period does
	// not overlap any calendar-blocking booking on the same plot and inserts
	// it. The check and the insert are serialized per plot; concurrent
	// overlapping requests cannot both succeed. Returns a Conflict domain
	// error when the period is taken.
	SaveIfAvailable(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}

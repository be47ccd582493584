package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/growshare/service-booking/pkg/auth"
	"github.com/growshare/service-booking/pkg/domain"
)

// Booking is the aggregate root for a plot reservation. Pricing fields are
// snapshots taken from the plot at creation time; later rate changes on the
// plot never affect an existing booking. Bookings are never deleted: every
// terminal outcome, including cancellation, is a status.
type Booking struct {
	id       uuid.UUID
	plotID   uuid.UUID
	renterID uuid.UUID
	ownerID  uuid.UUID
	period   LeasePeriod
	status   BookingStatus

	monthlyRateCents     int64
	durationMonths       int
	totalAmountCents     int64
	securityDepositCents *int64

	cancelNote  string
	cancelledAt *time.Time
	activatedAt *time.Time
	completedAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a booking for a validated lease period, snapshotting the
// plot's pricing. The initial status is approved when the plot allows instant
// booking, otherwise pending.
func NewBooking(
	plotID, renterID, ownerID uuid.UUID,
	period LeasePeriod,
	monthlyRateCents, totalAmountCents int64,
	securityDepositCents *int64,
	instantBook bool,
) (*Booking, error) {
	if plotID == uuid.Nil {
		return nil, domain.NewValidationError("plot ID is required")
	}
	if renterID == uuid.Nil {
		return nil, domain.NewValidationError("renter ID is required")
	}
	if renterID == ownerID {
		return nil, domain.NewInvalidOperationError("cannot book own plot")
	}
	if monthlyRateCents <= 0 {
		return nil, domain.NewValidationError("monthly rate must be positive")
	}
	if totalAmountCents <= 0 {
		return nil, domain.NewValidationError("total amount must be positive")
	}

	months := period.Months()
	status := StatusPending
	if instantBook {
		status = StatusApproved
	}

	now := time.Now().UTC()
	return &Booking{
		id:                   uuid.New(),
		plotID:               plotID,
		renterID:             renterID,
		ownerID:              ownerID,
		period:               period,
		status:               status,
		monthlyRateCents:     monthlyRateCents,
		durationMonths:       months,
		totalAmountCents:     totalAmountCents,
		securityDepositCents: securityDepositCents,
		version:              1,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id, plotID, renterID, ownerID uuid.UUID,
	period LeasePeriod,
	status BookingStatus,
	monthlyRateCents int64,
	durationMonths int,
	totalAmountCents int64,
	securityDepositCents *int64,
	cancelNote string,
	cancelledAt, activatedAt, completedAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                   id,
		plotID:               plotID,
		renterID:             renterID,
		ownerID:              ownerID,
		period:               period,
		status:               status,
		monthlyRateCents:     monthlyRateCents,
		durationMonths:       durationMonths,
		totalAmountCents:     totalAmountCents,
		securityDepositCents: securityDepositCents,
		cancelNote:           cancelNote,
		cancelledAt:          cancelledAt,
		activatedAt:          activatedAt,
		completedAt:          completedAt,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) PlotID() uuid.UUID            { return b.plotID }
func (b *Booking) RenterID() uuid.UUID          { return b.renterID }
func (b *Booking) OwnerID() uuid.UUID           { return b.ownerID }
func (b *Booking) Period() LeasePeriod          { return b.period }
func (b *Booking) Status() BookingStatus        { return b.status }
func (b *Booking) MonthlyRateCents() int64      { return b.monthlyRateCents }
func (b *Booking) DurationMonths() int          { return b.durationMonths }
func (b *Booking) TotalAmountCents() int64      { return b.totalAmountCents }
func (b *Booking) SecurityDepositCents() *int64 { return b.securityDepositCents }
func (b *Booking) CancelNote() string           { return b.cancelNote }
func (b *Booking) CancelledAt() *time.Time      { return b.cancelledAt }
func (b *Booking) ActivatedAt() *time.Time      { return b.activatedAt }
func (b *Booking) CompletedAt() *time.Time      { return b.completedAt }
func (b *Booking) Version() int64               { return b.version }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }

// IsParty reports whether the given user is the renter or the plot owner.
func (b *Booking) IsParty(userID uuid.UUID) bool {
	return userID == b.renterID || userID == b.ownerID
}

// OtherParty returns the counterparty of the given user on this booking.
func (b *Booking) OtherParty(userID uuid.UUID) uuid.UUID {
	if userID == b.renterID {
		return b.ownerID
	}
	return b.renterID
}

// --- Behavior ---

// guard applies the shared transition preconditions: the actor must be
// related to the booking, the edge must exist in the state machine, and the
// actor must hold the role that drives the edge.
func (b *Booking) guard(actor auth.Actor, target BookingStatus, permitted bool, edgeMsg string) error {
	if !b.IsParty(actor.ID) && !actor.Roles.HasAny(auth.RoleAdmin, auth.RoleSystem) {
		return domain.NewForbiddenError("actor is not a party to this booking")
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	if !permitted {
		return domain.NewInvalidOperationError(edgeMsg)
	}
	return nil
}

// Approve transitions the booking from pending to approved. Only the plot
// owner may approve.
func (b *Booking) Approve(actor auth.Actor) error {
	permitted := actor.ID == b.ownerID
	if err := b.guard(actor, StatusApproved, permitted, "only the plot owner may approve a booking"); err != nil {
		return err
	}
	b.status = StatusApproved
	b.updatedAt = time.Now().UTC()
	return nil
}

// Reject transitions the booking from pending to rejected. Only the plot
// owner may reject.
func (b *Booking) Reject(actor auth.Actor) error {
	permitted := actor.ID == b.ownerID
	if err := b.guard(actor, StatusRejected, permitted, "only the plot owner may reject a booking"); err != nil {
		return err
	}
	b.status = StatusRejected
	b.updatedAt = time.Now().UTC()
	return nil
}

// Activate transitions the booking from approved to active once payment and
// start conditions are met. Driven by the plot owner or the system (payment
// event consumer).
func (b *Booking) Activate(actor auth.Actor) error {
	permitted := actor.ID == b.ownerID || actor.Roles.Has(auth.RoleSystem)
	if err := b.guard(actor, StatusActive, permitted, "only the plot owner or system may activate a booking"); err != nil {
		return err
	}
	now := time.Now().UTC()
	b.status = StatusActive
	b.activatedAt = &now
	b.updatedAt = now
	return nil
}

// Complete transitions the booking from active to completed at lease end.
// Driven by the plot owner or the system.
func (b *Booking) Complete(actor auth.Actor) error {
	permitted := actor.ID == b.ownerID || actor.Roles.Has(auth.RoleSystem)
	if err := b.guard(actor, StatusCompleted, permitted, "only the plot owner or system may complete a booking"); err != nil {
		return err
	}
	now := time.Now().UTC()
	b.status = StatusCompleted
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled. The renter may cancel from
// pending or approved; an administrator may cancel from any non-terminal
// state.
func (b *Booking) Cancel(actor auth.Actor, reason string) error {
	isAdmin := actor.Roles.Has(auth.RoleAdmin)
	isRenter := actor.ID == b.renterID
	permitted := isAdmin || (isRenter && (b.status == StatusPending || b.status == StatusApproved))
	if err := b.guard(actor, StatusCancelled, permitted, "only the renter or an administrator may cancel this booking"); err != nil {
		return err
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// TransitionTo dispatches a requested target status to the matching guarded
// transition.
func (b *Booking) TransitionTo(actor auth.Actor, target BookingStatus, reason string) error {
	switch target {
	case StatusApproved:
		return b.Approve(actor)
	case StatusRejected:
		return b.Reject(actor)
	case StatusActive:
		return b.Activate(actor)
	case StatusCompleted:
		return b.Complete(actor)
	case StatusCancelled:
		return b.Cancel(actor, reason)
	default:
		return domain.NewInvalidOperationError("unknown target status: " + string(target))
	}
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

package dispute

import (
	"time"

	"github.com/google/uuid"

	"github.com/growshare/service-booking/pkg/domain"
)

// DisputeStatus represents the lifecycle state of a dispute.
type DisputeStatus string

const (
	StatusOpen        DisputeStatus = "open"
	StatusUnderReview DisputeStatus = "under_review"
	StatusResolved    DisputeStatus = "resolved"
)

// IsValid returns true if the status is recognized.
func (s DisputeStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusUnderReview, StatusResolved:
		return true
	}
	return false
}

// Reason enumerates why a dispute was filed.
type Reason string

const (
	ReasonBilling           Reason = "billing"
	ReasonAccess            Reason = "access"
	ReasonDamage            Reason = "damage"
	ReasonMisrepresentation Reason = "misrepresentation"
	ReasonOther             Reason = "other"
)

// IsValid returns true if the reason is recognized.
func (r Reason) IsValid() bool {
	switch r {
	case ReasonBilling, ReasonAccess, ReasonDamage, ReasonMisrepresentation, ReasonOther:
		return true
	}
	return false
}

// Outcome enumerates how an administrator resolved a dispute.
type Outcome string

const (
	OutcomeRefundIssued  Outcome = "refund_issued"
	OutcomePartialRefund Outcome = "partial_refund"
	OutcomeNoAction      Outcome = "no_action"
)

// IsValid returns true if the outcome is recognized.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeRefundIssued, OutcomePartialRefund, OutcomeNoAction:
		return true
	}
	return false
}

// Dispute is a formal disagreement raised against a booking. At most one
// dispute exists per booking; opening a dispute never changes the booking's
// own status. Resolution is terminal.
type Dispute struct {
	id                   uuid.UUID
	bookingID            uuid.UUID
	filerID              uuid.UUID
	reason               Reason
	description          string
	requestedAmountCents *int64
	status               DisputeStatus

	outcome             Outcome
	resolutionNotes     string
	resolvedAmountCents *int64
	resolvedBy          *uuid.UUID
	resolvedAt          *time.Time

	createdAt time.Time
	updatedAt time.Time
}

// NewDispute files a dispute against a booking. bookingTotalCents caps the
// requested refund. Party and uniqueness checks are the caller's concern.
func NewDispute(
	bookingID, filerID uuid.UUID,
	reason Reason,
	description string,
	requestedAmountCents *int64,
	bookingTotalCents int64,
) (*Dispute, error) {
	if !reason.IsValid() {
		return nil, domain.NewValidationError("invalid dispute reason: " + string(reason))
	}
	if description == "" {
		return nil, domain.NewValidationError("dispute description is required")
	}
	if requestedAmountCents != nil {
		if *requestedAmountCents <= 0 {
			return nil, domain.NewValidationError("requested refund must be positive")
		}
		if *requestedAmountCents > bookingTotalCents {
			return nil, domain.NewValidationError("requested refund cannot exceed the booking total")
		}
	}

	now := time.Now().UTC()
	return &Dispute{
		id:                   uuid.New(),
		bookingID:            bookingID,
		filerID:              filerID,
		reason:               reason,
		description:          description,
		requestedAmountCents: requestedAmountCents,
		status:               StatusOpen,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// Reconstruct rebuilds a Dispute from persistence data (no validation).
func Reconstruct(
	id, bookingID, filerID uuid.UUID,
	reason Reason,
	description string,
	requestedAmountCents *int64,
	status DisputeStatus,
	outcome Outcome,
	resolutionNotes string,
	resolvedAmountCents *int64,
	resolvedBy *uuid.UUID,
	resolvedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Dispute {
	return &Dispute{
		id:                   id,
		bookingID:            bookingID,
		filerID:              filerID,
		reason:               reason,
		description:          description,
		requestedAmountCents: requestedAmountCents,
		status:               status,
		outcome:              outcome,
		resolutionNotes:      resolutionNotes,
		resolvedAmountCents:  resolvedAmountCents,
		resolvedBy:           resolvedBy,
		resolvedAt:           resolvedAt,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// --- Getters ---

func (d *Dispute) ID() uuid.UUID                { return d.id }
func (d *Dispute) BookingID() uuid.UUID         { return d.bookingID }
func (d *Dispute) FilerID() uuid.UUID           { return d.filerID }
func (d *Dispute) Reason() Reason               { return d.reason }
func (d *Dispute) Description() string          { return d.description }
func (d *Dispute) RequestedAmountCents() *int64 { return d.requestedAmountCents }
func (d *Dispute) Status() DisputeStatus        { return d.status }
func (d *Dispute) Outcome() Outcome             { return d.outcome }
func (d *Dispute) ResolutionNotes() string      { return d.resolutionNotes }
func (d *Dispute) ResolvedAmountCents() *int64  { return d.resolvedAmountCents }
func (d *Dispute) ResolvedBy() *uuid.UUID       { return d.resolvedBy }
func (d *Dispute) ResolvedAt() *time.Time       { return d.resolvedAt }
func (d *Dispute) CreatedAt() time.Time         { return d.createdAt }
func (d *Dispute) UpdatedAt() time.Time         { return d.updatedAt }

// --- Behavior ---

// StartReview moves an open dispute to under_review.
func (d *Dispute) StartReview() error {
	if d.status != StatusOpen {
		return domain.NewInvalidStateError(string(d.status), string(StatusUnderReview))
	}
	d.status = StatusUnderReview
	d.updatedAt = time.Now().UTC()
	return nil
}

// Resolve closes the dispute with an outcome. A dispute can be resolved from
// open or under_review but never twice.
func (d *Dispute) Resolve(resolvedBy uuid.UUID, outcome Outcome, notes string, resolvedAmountCents *int64) error {
	if d.status == StatusResolved {
		return domain.NewInvalidOperationError("dispute is already resolved")
	}
	if !outcome.IsValid() {
		return domain.NewValidationError("invalid dispute outcome: " + string(outcome))
	}
	if resolvedAmountCents != nil && *resolvedAmountCents < 0 {
		return domain.NewValidationError("resolved amount cannot be negative")
	}

	now := time.Now().UTC()
	d.status = StatusResolved
	d.outcome = outcome
	d.resolutionNotes = notes
	d.resolvedAmountCents = resolvedAmountCents
	d.resolvedBy = &resolvedBy
	d.resolvedAt = &now
	d.updatedAt = now
	return nil
}

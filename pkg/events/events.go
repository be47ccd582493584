package events

import (
	"time"

	"github.com/google/uuid"
)

// Topic names shared across GrowShare services.
const (
	TopicBookingEvents      = "booking.events"
	TopicPaymentEvents      = "payment.events"
	TopicNotificationEvents = "notification.events"
)

// Event types published on booking.events.
const (
	BookingRequested = "growshare.booking.requested"
	BookingApproved  = "growshare.booking.approved"
	BookingRejected  = "growshare.booking.rejected"
	BookingActivated = "growshare.booking.activated"
	BookingCompleted = "growshare.booking.completed"
	BookingCancelled = "growshare.booking.cancelled"
	PointsAwarded    = "growshare.rewards.points_awarded"
	DisputeOpened    = "growshare.dispute.opened"
	DisputeResolved  = "growshare.dispute.resolved"
)

// Event types on payment.events. PaymentConfirmed is consumed by this
// service; RefundRequested is published for the payment service to settle.
const (
	PaymentConfirmed = "growshare.payment.confirmed"
	RefundRequested  = "growshare.payment.refund_requested"
)

// Event type on notification.events, consumed by the notification service.
const (
	NotificationRequested = "growshare.notification.requested"
)

// BookingRequestedEvent is published when a booking is created.
type BookingRequestedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	PlotID           uuid.UUID `json:"plot_id"`
	RenterID         uuid.UUID `json:"renter_id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Status           string    `json:"status"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published for every lifecycle transition.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	PlotID     uuid.UUID `json:"plot_id"`
	RenterID   uuid.UUID `json:"renter_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    uuid.UUID `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PointsAwardedEvent credits reward points to a user.
type PointsAwardedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Points     int       `json:"points"`
	Reason     string    `json:"reason"`
	BookingID  uuid.UUID `json:"booking_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DisputeOpenedEvent is published when a dispute is filed against a booking.
type DisputeOpenedEvent struct {
	DisputeID  uuid.UUID `json:"dispute_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	FilerID    uuid.UUID `json:"filer_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DisputeResolvedEvent is published when an administrator resolves a dispute.
type DisputeResolvedEvent struct {
	DisputeID           uuid.UUID  `json:"dispute_id"`
	BookingID           uuid.UUID  `json:"booking_id"`
	Outcome             string     `json:"outcome"`
	ResolvedAmountCents *int64     `json:"resolved_amount_cents,omitempty"`
	ResolvedBy          uuid.UUID  `json:"resolved_by"`
	OccurredAt          time.Time  `json:"occurred_at"`
}

// PaymentConfirmedEvent arrives from the payment service once the renter's
// first payment for an approved booking clears.
type PaymentConfirmedEvent struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// RefundRequestedEvent asks the payment service to refund a cancelled
// booking according to the computed tier.
type RefundRequestedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	RenterID      uuid.UUID `json:"renter_id"`
	RefundPercent int       `json:"refund_percent"`
	AmountCents   int64     `json:"amount_cents"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NotificationRequestedEvent asks the notification service to deliver a
// templated message to a user. Delivery is best effort.
type NotificationRequestedEvent struct {
	RecipientID uuid.UUID              `json:"recipient_id"`
	Template    string                 `json:"template"`
	Payload     map[string]interface{} `json:"payload"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// Notification templates used by this service.
const (
	TemplateBookingRequested = "booking_requested"
	TemplateBookingApproved  = "booking_approved"
	TemplateBookingRejected  = "booking_rejected"
	TemplateBookingCancelled = "booking_cancelled"
	TemplateDisputeOpened    = "dispute_opened"
	TemplateDisputeResolved  = "dispute_resolved"
)

package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/growshare/service-booking/internal/domain/booking"
	disputeDomain "github.com/growshare/service-booking/internal/domain/dispute"
	"github.com/growshare/service-booking/pkg/auth"
	"github.com/growshare/service-booking/pkg/domain"
	"github.com/growshare/service-booking/pkg/events"
	"github.com/growshare/service-booking/pkg/kafka"
)

// OpenDisputeRequest holds the data needed to file a dispute.
type OpenDisputeRequest struct {
	BookingID            uuid.UUID `json:"booking_id" binding:"required"`
	Reason               string    `json:"reason" binding:"required"`
	Description          string    `json:"description" binding:"required"`
	RequestedAmountCents *int64    `json:"requested_amount_cents"`
}

// ResolveDisputeRequest holds an administrator's resolution.
type ResolveDisputeRequest struct {
	Outcome             string `json:"outcome" binding:"required"`
	ResolutionNotes     string `json:"resolution_notes"`
	ResolvedAmountCents *int64 `json:"resolved_amount_cents"`
}

// PostMessageRequest appends a message to a dispute's log.
type PostMessageRequest struct {
	Content        string   `json:"content" binding:"required"`
	AttachmentURLs []string `json:"attachment_urls"`
	IsInternal     bool     `json:"is_internal"`
}

// DisputeDTO is the response representation of a dispute.
type DisputeDTO struct {
	ID                   uuid.UUID  `json:"id"`
	BookingID            uuid.UUID  `json:"booking_id"`
	FilerID              uuid.UUID  `json:"filer_id"`
	Reason               string     `json:"reason"`
	Description          string     `json:"description"`
	RequestedAmountCents *int64     `json:"requested_amount_cents,omitempty"`
	Status               string     `json:"status"`
	Outcome              string     `json:"outcome,omitempty"`
	ResolutionNotes      string     `json:"resolution_notes,omitempty"`
	ResolvedAmountCents  *int64     `json:"resolved_amount_cents,omitempty"`
	ResolvedBy           *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt           *time.Time `json:"resolved_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// DisputeMessageDTO is the response representation of a dispute message.
type DisputeMessageDTO struct {
	ID             uuid.UUID `json:"id"`
	DisputeID      uuid.UUID `json:"dispute_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	AttachmentURLs []string  `json:"attachment_urls,omitempty"`
	IsInternal     bool      `json:"is_internal"`
	CreatedAt      time.Time `json:"created_at"`
}

// DisputeService manages disputes and their message logs. Disputes never
// change the underlying booking's status; refunds granted at resolution flow
// through the payment service.
type DisputeService struct {
	disputes disputeDomain.DisputeRepository
	bookings bookingDomain.BookingRepository
	activity ActivityRecorder
	producer EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewDisputeService creates a new DisputeService.
func NewDisputeService(
	disputes disputeDomain.DisputeRepository,
	bookings bookingDomain.BookingRepository,
	activity ActivityRecorder,
	producer EventPublisher,
	logger *zap.Logger,
) *DisputeService {
	return &DisputeService{
		disputes: disputes,
		bookings: bookings,
		activity: activity,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *DisputeService) WithClock(now func() time.Time) *DisputeService {
	s.now = now
	return s
}

// OpenDispute files a dispute against a booking on behalf of one of its
// parties. At most one dispute exists per booking regardless of status.
func (s *DisputeService) OpenDispute(ctx context.Context, filerID uuid.UUID, req OpenDisputeRequest) (*DisputeDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsParty(filerID) {
		return nil, domain.NewForbiddenError("only a party to the booking can open a dispute")
	}

	if _, found, err := s.disputes.FindByBookingID(ctx, req.BookingID); err != nil {
		return nil, err
	} else if found {
		return nil, domain.NewConflictError("booking already has a dispute")
	}

	d, err := disputeDomain.NewDispute(
		bk.ID(),
		filerID,
		disputeDomain.Reason(req.Reason),
		req.Description,
		req.RequestedAmountCents,
		bk.TotalAmountCents(),
	)
	if err != nil {
		return nil, err
	}

	// The repository races the existence check above against concurrent
	// filers via a unique index and reports Conflict.
	if err := s.disputes.Save(ctx, d); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, filerID, "dispute_opened", "dispute", d.ID())
	s.publishDisputeOpened(ctx, d)
	s.notify(ctx, bk.OtherParty(filerID), events.TemplateDisputeOpened, map[string]interface{}{
		"dispute_id": d.ID().String(),
		"booking_id": bk.ID().String(),
		"reason":     string(d.Reason()),
	})

	result := toDisputeDTO(d)
	return &result, nil
}

// GetDispute retrieves a dispute visible to the actor.
func (s *DisputeService) GetDispute(ctx context.Context, disputeID uuid.UUID, actor auth.Actor) (*DisputeDTO, error) {
	d, _, err := s.loadVisible(ctx, disputeID, actor)
	if err != nil {
		return nil, err
	}
	result := toDisputeDTO(d)
	return &result, nil
}

// GetBookingDispute retrieves the dispute attached to a booking, if any.
func (s *DisputeService) GetBookingDispute(ctx context.Context, bookingID uuid.UUID, actor auth.Actor) (*DisputeDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsParty(actor.ID) && !actor.Roles.Has(auth.RoleAdmin) {
		return nil, domain.NewForbiddenError("booking is not visible to this user")
	}

	d, found, err := s.disputes.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NewNotFoundError("dispute", bookingID.String())
	}
	result := toDisputeDTO(d)
	return &result, nil
}

// StartReview moves an open dispute to under_review. Either party to the
// underlying booking may start a review, as may an administrator.
func (s *DisputeService) StartReview(ctx context.Context, disputeID uuid.UUID, actor auth.Actor) (*DisputeDTO, error) {
	d, _, err := s.loadVisible(ctx, disputeID, actor)
	if err != nil {
		return nil, err
	}
	if err := d.StartReview(); err != nil {
		return nil, err
	}
	if err := s.disputes.Update(ctx, d); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor.ID, "dispute_review_started", "dispute", d.ID())

	result := toDisputeDTO(d)
	return &result, nil
}

// ResolveDispute closes a dispute with an outcome (admin). Refund outcomes
// publish a refund request for the payment service; the booking itself is
// never transitioned here.
func (s *DisputeService) ResolveDispute(ctx context.Context, disputeID uuid.UUID, actor auth.Actor, req ResolveDisputeRequest) (*DisputeDTO, error) {
	if !actor.Roles.Has(auth.RoleAdmin) {
		return nil, domain.NewForbiddenError("only an administrator can resolve disputes")
	}

	d, err := s.disputes.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	bk, err := s.bookings.FindByID(ctx, d.BookingID())
	if err != nil {
		return nil, err
	}
	if err := d.Resolve(actor.ID, disputeDomain.Outcome(req.Outcome), req.ResolutionNotes, req.ResolvedAmountCents); err != nil {
		return nil, err
	}
	if err := s.disputes.Update(ctx, d); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor.ID, "dispute_resolved", "dispute", d.ID())
	s.publishDisputeResolved(ctx, d)
	if d.Outcome() != disputeDomain.OutcomeNoAction {
		s.requestDisputeRefund(ctx, d, bk)
	}

	payload := map[string]interface{}{
		"dispute_id": d.ID().String(),
		"booking_id": d.BookingID().String(),
		"outcome":    string(d.Outcome()),
	}
	s.notify(ctx, bk.RenterID(), events.TemplateDisputeResolved, payload)
	s.notify(ctx, bk.OwnerID(), events.TemplateDisputeResolved, payload)

	result := toDisputeDTO(d)
	return &result, nil
}

// ListOpenDisputes returns paginated unresolved disputes (admin).
func (s *DisputeService) ListOpenDisputes(ctx context.Context, actor auth.Actor, page, limit int) ([]DisputeDTO, int64, error) {
	if !actor.Roles.Has(auth.RoleAdmin) {
		return nil, 0, domain.NewForbiddenError("only an administrator can list disputes")
	}
	disputes, total, err := s.disputes.ListOpen(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]DisputeDTO, len(disputes))
	for i, d := range disputes {
		dtos[i] = toDisputeDTO(d)
	}
	return dtos, total, nil
}

// PostMessage appends a message to a dispute's log. Messages can be posted
// at any dispute status, including after resolution. The internal flag is
// honored only for administrators; for everyone else it is silently dropped.
func (s *DisputeService) PostMessage(ctx context.Context, disputeID uuid.UUID, actor auth.Actor, req PostMessageRequest) (*DisputeMessageDTO, error) {
	d, isAdmin, err := s.loadVisible(ctx, disputeID, actor)
	if err != nil {
		return nil, err
	}

	internal := req.IsInternal && isAdmin
	m, err := disputeDomain.NewMessage(d.ID(), actor.ID, req.Content, req.AttachmentURLs, internal)
	if err != nil {
		return nil, err
	}
	if err := s.disputes.AppendMessage(ctx, m); err != nil {
		return nil, err
	}

	result := toDisputeMessageDTO(m)
	return &result, nil
}

// GetMessages retrieves a dispute's messages in append order. Internal
// messages are included only for administrators.
func (s *DisputeService) GetMessages(ctx context.Context, disputeID uuid.UUID, actor auth.Actor) ([]DisputeMessageDTO, error) {
	d, isAdmin, err := s.loadVisible(ctx, disputeID, actor)
	if err != nil {
		return nil, err
	}

	messages, err := s.disputes.FindMessages(ctx, d.ID(), isAdmin)
	if err != nil {
		return nil, err
	}
	dtos := make([]DisputeMessageDTO, len(messages))
	for i, m := range messages {
		dtos[i] = toDisputeMessageDTO(m)
	}
	return dtos, nil
}

// loadVisible fetches a dispute and checks the actor can see it: either a
// party to the disputed booking or an administrator.
func (s *DisputeService) loadVisible(ctx context.Context, disputeID uuid.UUID, actor auth.Actor) (*disputeDomain.Dispute, bool, error) {
	d, err := s.disputes.FindByID(ctx, disputeID)
	if err != nil {
		return nil, false, err
	}

	isAdmin := actor.Roles.Has(auth.RoleAdmin)
	if isAdmin {
		return d, true, nil
	}

	bk, err := s.bookings.FindByID(ctx, d.BookingID())
	if err != nil {
		return nil, false, err
	}
	if !bk.IsParty(actor.ID) {
		return nil, false, domain.NewForbiddenError("dispute is not visible to this user")
	}
	return d, false, nil
}

func (s *DisputeService) recordActivity(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID) {
	if err := s.activity.Record(ctx, userID, action, entityType, entityID); err != nil {
		s.logger.Error("failed to record activity",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (s *DisputeService) publishDisputeOpened(ctx context.Context, d *disputeDomain.Dispute) {
	evt := events.DisputeOpenedEvent{
		DisputeID:  d.ID(),
		BookingID:  d.BookingID(),
		FilerID:    d.FilerID(),
		Reason:     string(d.Reason()),
		OccurredAt: s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.DisputeOpened, d.BookingID().String(), evt)
}

func (s *DisputeService) publishDisputeResolved(ctx context.Context, d *disputeDomain.Dispute) {
	resolvedBy := uuid.Nil
	if d.ResolvedBy() != nil {
		resolvedBy = *d.ResolvedBy()
	}
	evt := events.DisputeResolvedEvent{
		DisputeID:           d.ID(),
		BookingID:           d.BookingID(),
		Outcome:             string(d.Outcome()),
		ResolvedAmountCents: d.ResolvedAmountCents(),
		ResolvedBy:          resolvedBy,
		OccurredAt:          s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.DisputeResolved, d.BookingID().String(), evt)
}

// requestDisputeRefund publishes a refund request for a refund outcome. A
// full refund covers the booking total; a partial refund uses the resolved
// amount and publishes nothing when it is absent or zero.
func (s *DisputeService) requestDisputeRefund(ctx context.Context, d *disputeDomain.Dispute, bk *bookingDomain.Booking) {
	var amount int64
	percent := 100
	switch d.Outcome() {
	case disputeDomain.OutcomeRefundIssued:
		amount = bk.TotalAmountCents()
	case disputeDomain.OutcomePartialRefund:
		if d.ResolvedAmountCents() == nil || *d.ResolvedAmountCents() <= 0 {
			return
		}
		amount = *d.ResolvedAmountCents()
		percent = int(amount * 100 / bk.TotalAmountCents())
	default:
		return
	}

	evt := events.RefundRequestedEvent{
		BookingID:     bk.ID(),
		RenterID:      bk.RenterID(),
		RefundPercent: percent,
		AmountCents:   amount,
		OccurredAt:    s.now(),
	}
	s.publishEvent(ctx, events.TopicPaymentEvents, events.RefundRequested, bk.ID().String(), evt)
}

func (s *DisputeService) notify(ctx context.Context, recipientID uuid.UUID, template string, payload map[string]interface{}) {
	evt := events.NotificationRequestedEvent{
		RecipientID: recipientID,
		Template:    template,
		Payload:     payload,
		OccurredAt:  s.now(),
	}
	s.publishEvent(ctx, events.TopicNotificationEvents, events.NotificationRequested, recipientID.String(), evt)
}

func (s *DisputeService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEventWithKey(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toDisputeDTO(d *disputeDomain.Dispute) DisputeDTO {
	return DisputeDTO{
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

func toDisputeMessageDTO(m *disputeDomain.Message) DisputeMessageDTO {
	return DisputeMessageDTO{
		ID:             m.ID(),
		DisputeID:      m.DisputeID(),
		SenderID:       m.SenderID(),
		Content:        m.Content(),
		AttachmentURLs: m.AttachmentURLs(),
		IsInternal:     m.IsInternal(),
		CreatedAt:      m.CreatedAt(),
	}
}

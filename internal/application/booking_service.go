package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/growshare/service-booking/internal/domain/booking"
	plotDomain "github.com/growshare/service-booking/internal/domain/plot"
	"github.com/growshare/service-booking/pkg/auth"
	"github.com/growshare/service-booking/pkg/domain"
	"github.com/growshare/service-booking/pkg/events"
	"github.com/growshare/service-booking/pkg/kafka"
)

// pointsPerBooking is the fixed reward credit a renter earns for each booking
// request that is accepted onto a plot's calendar.
const pointsPerBooking = 50

const leaseDateLayout = "2006-01-02"

// ActivityRecorder appends audit entries for user actions. Recording is best
// effort; failures are logged and must not fail the primary operation.
type ActivityRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID) error
}

// EventPublisher dispatches CloudEvents to the message bus. Satisfied by
// kafka.Producer; substituted with a fake in tests. Publishing is best effort
// relative to the primary state change.
type EventPublisher interface {
	PublishEventWithKey(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to request a booking.
type CreateBookingRequest struct {
	PlotID    uuid.UUID `json:"plot_id" binding:"required"`
	StartDate string    `json:"start_date" binding:"required"`
	EndDate   string    `json:"end_date" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                   uuid.UUID  `json:"id"`
	PlotID               uuid.UUID  `json:"plot_id"`
	RenterID             uuid.UUID  `json:"renter_id"`
	OwnerID              uuid.UUID  `json:"owner_id"`
	StartDate            string     `json:"start_date"`
	EndDate              string     `json:"end_date"`
	Status               string     `json:"status"`
	MonthlyRateCents     int64      `json:"monthly_rate_cents"`
	DurationMonths       int        `json:"duration_months"`
	TotalAmountCents     int64      `json:"total_amount_cents"`
	SecurityDepositCents *int64     `json:"security_deposit_cents,omitempty"`
	CancelNote           string     `json:"cancel_note,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	ActivatedAt          *time.Time `json:"activated_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	Version              int64      `json:"version"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// BookingService is the application service orchestrating the availability
// checker and the booking lifecycle.
type BookingService struct {
	plots    plotDomain.PlotRepository
	bookings bookingDomain.BookingRepository
	pricing  bookingDomain.PricingStrategy
	activity ActivityRecorder
	producer EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	plots plotDomain.PlotRepository,
	bookings bookingDomain.BookingRepository,
	pricing bookingDomain.PricingStrategy,
	activity ActivityRecorder,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		plots:    plots,
		bookings: bookings,
		pricing:  pricing,
		activity: activity,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// CreateBooking runs the availability checks in order and, if every check
// passes, creates the booking with pricing snapshotted from the plot.
// Validation short-circuits on the first failure; nothing is written before
// all checks pass.
func (s *BookingService) CreateBooking(ctx context.Context, renterID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	p, err := s.plots.FindByID(ctx, req.PlotID)
	if err != nil {
		return nil, err
	}

	if p.IsOwnedBy(renterID) {
		return nil, domain.NewInvalidOperationError("cannot book own plot")
	}
	if !p.IsListed() {
		return nil, domain.NewInvalidOperationError("plot is not currently listed")
	}

	start, end, err := bookingDomain.ParseLeaseDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	period, err := bookingDomain.NewLeasePeriod(start, end, s.now())
	if err != nil {
		return nil, err
	}

	months := period.Months()
	if min := p.MinimumLeaseMonths(); min != nil && months < *min {
		return nil, domain.NewPolicyViolationError(
			fmt.Sprintf("lease of %d months is below the plot minimum of %d months", months, *min))
	}

	total, err := s.pricing.Quote(p.MonthlyRateCents(), months)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	bk, err := bookingDomain.NewBooking(
		p.ID(),
		renterID,
		p.OwnerID(),
		period,
		p.MonthlyRateCents(),
		total,
		p.SecurityDepositCents(),
		p.InstantBook(),
	)
	if err != nil {
		return nil, err
	}

	// The overlap check and insert are serialized per plot inside the
	// repository; a Conflict here means the calendar is taken.
	if err := s.bookings.SaveIfAvailable(ctx, bk); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, renterID, "booking_requested", "booking", bk.ID())
	s.awardPoints(ctx, bk)
	s.publishBookingRequested(ctx, bk)
	if bk.Status() == bookingDomain.StatusPending {
		s.notify(ctx, bk.OwnerID(), events.TemplateBookingRequested, map[string]interface{}{
			"booking_id": bk.ID().String(),
			"plot_id":    bk.PlotID().String(),
			"start_date": bk.Period().Start().Format(leaseDateLayout),
			"end_date":   bk.Period().End().Format(leaseDateLayout),
		})
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// TransitionBooking applies a guarded lifecycle transition on behalf of the
// actor. Side effects fire only after the state change is persisted.
func (s *BookingService) TransitionBooking(ctx context.Context, bookingID uuid.UUID, actor auth.Actor, target bookingDomain.BookingStatus, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from := bk.Status()
	if err := bk.TransitionTo(actor, target, reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor.ID, "booking_"+string(target), "booking", bk.ID())
	s.publishStatusChanged(ctx, bk, from, actor)
	s.notifyTransition(ctx, bk, from, actor)
	if from == bookingDomain.StatusApproved && target == bookingDomain.StatusCancelled {
		s.requestRefund(ctx, bk)
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking visible to the actor.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID, actor auth.Actor) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsParty(actor.ID) && !actor.Roles.Has(auth.RoleAdmin) {
		return nil, domain.NewForbiddenError("booking is not visible to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetRenterBookings retrieves paginated bookings made by a renter.
func (s *BookingService) GetRenterBookings(ctx context.Context, renterID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByRenterID(ctx, renterID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetOwnerBookings retrieves paginated bookings on an owner's plots.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetPlotCalendar retrieves the calendar-blocking bookings for a plot so
// renters can see which ranges are taken.
func (s *BookingService) GetPlotCalendar(ctx context.Context, plotID uuid.UUID) ([]BookingDTO, error) {
	if _, err := s.plots.FindByID(ctx, plotID); err != nil {
		return nil, err
	}
	bookings, err := s.bookings.FindByPlotID(ctx, plotID)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                   bk.ID(),
		PlotID:               bk.PlotID(),
		RenterID:             bk.RenterID(),
		OwnerID:              bk.OwnerID(),
		StartDate:            bk.Period().Start().Format(leaseDateLayout),
		EndDate:              bk.Period().End().Format(leaseDateLayout),
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

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) recordActivity(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID) {
	if err := s.activity.Record(ctx, userID, action, entityType, entityID); err != nil {
		s.logger.Error("failed to record activity",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (s *BookingService) awardPoints(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.PointsAwardedEvent{
		UserID:     bk.RenterID(),
		Points:     pointsPerBooking,
		Reason:     "booking_requested",
		BookingID:  bk.ID(),
		OccurredAt: s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.PointsAwarded, bk.ID().String(), evt)
}

func (s *BookingService) publishBookingRequested(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingRequestedEvent{
		BookingID:        bk.ID(),
		PlotID:           bk.PlotID(),
		RenterID:         bk.RenterID(),
		OwnerID:          bk.OwnerID(),
		StartDate:        bk.Period().Start(),
		EndDate:          bk.Period().End(),
		Status:           string(bk.Status()),
		TotalAmountCents: bk.TotalAmountCents(),
		OccurredAt:       s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRequested, bk.ID().String(), evt)
}

func (s *BookingService) publishStatusChanged(ctx context.Context, bk *bookingDomain.Booking, from bookingDomain.BookingStatus, actor auth.Actor) {
	eventType := map[bookingDomain.BookingStatus]string{
		bookingDomain.StatusApproved:  events.BookingApproved,
		bookingDomain.StatusRejected:  events.BookingRejected,
		bookingDomain.StatusActive:    events.BookingActivated,
		bookingDomain.StatusCompleted: events.BookingCompleted,
		bookingDomain.StatusCancelled: events.BookingCancelled,
	}[bk.Status()]
	if eventType == "" {
		return
	}

	evt := events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		PlotID:     bk.PlotID(),
		RenterID:   bk.RenterID(),
		OwnerID:    bk.OwnerID(),
		FromStatus: string(from),
		ToStatus:   string(bk.Status()),
		ActorID:    actor.ID,
		OccurredAt: s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, eventType, bk.ID().String(), evt)
}

func (s *BookingService) notifyTransition(ctx context.Context, bk *bookingDomain.Booking, from bookingDomain.BookingStatus, actor auth.Actor) {
	payload := map[string]interface{}{
		"booking_id": bk.ID().String(),
		"plot_id":    bk.PlotID().String(),
	}

	switch bk.Status() {
	case bookingDomain.StatusApproved:
		s.notify(ctx, bk.RenterID(), events.TemplateBookingApproved, payload)
	case bookingDomain.StatusRejected:
		s.notify(ctx, bk.RenterID(), events.TemplateBookingRejected, payload)
	case bookingDomain.StatusCancelled:
		s.notify(ctx, bk.OtherParty(actor.ID), events.TemplateBookingCancelled, payload)
	}
}

// requestRefund publishes a refund request for an approved booking the renter
// cancelled. The tier depends on how far before the lease start the
// cancellation landed; a 0% tier publishes nothing.
func (s *BookingService) requestRefund(ctx context.Context, bk *bookingDomain.Booking) {
	percent := s.pricing.RefundPercent(bk.Period().DaysUntilStart(s.now()))
	if percent <= 0 {
		return
	}

	evt := events.RefundRequestedEvent{
		BookingID:     bk.ID(),
		RenterID:      bk.RenterID(),
		RefundPercent: percent,
		AmountCents:   bk.TotalAmountCents() * int64(percent) / 100,
		OccurredAt:    s.now(),
	}
	s.publishEvent(ctx, events.TopicPaymentEvents, events.RefundRequested, bk.ID().String(), evt)
}

func (s *BookingService) notify(ctx context.Context, recipientID uuid.UUID, template string, payload map[string]interface{}) {
	evt := events.NotificationRequestedEvent{
		RecipientID: recipientID,
		Template:    template,
		Payload:     payload,
		OccurredAt:  s.now(),
	}
	s.publishEvent(ctx, events.TopicNotificationEvents, events.NotificationRequested, recipientID.String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
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

package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/growshare/service-booking/internal/domain/booking"
	"github.com/growshare/service-booking/pkg/auth"
	"github.com/growshare/service-booking/pkg/domain"
	"github.com/growshare/service-booking/pkg/events"
)

type disputeFixture struct {
	service  *DisputeService
	disputes *memDisputeRepo
	bookings *memBookingRepo
	producer *memPublisher

	bookingID uuid.UUID
	renterID  uuid.UUID
	ownerID   uuid.UUID
}

func newDisputeFixture(t *testing.T) *disputeFixture {
	t.Helper()
	f := &disputeFixture{
		disputes: newMemDisputeRepo(),
		bookings: newMemBookingRepo(),
		producer: &memPublisher{},
		renterID: uuid.New(),
		ownerID:  uuid.New(),
	}
	f.service = NewDisputeService(f.disputes, f.bookings, &memActivityLog{}, f.producer, zap.NewNop())

	start, err := time.ParseInLocation("2006-01-02", "2026-04-01", time.UTC)
	require.NoError(t, err)
	end, err := time.ParseInLocation("2006-01-02", "2026-06-30", time.UTC)
	require.NoError(t, err)
	period := bookingDomain.ReconstructLeasePeriod(start, end)

	bk, err := bookingDomain.NewBooking(uuid.New(), f.renterID, f.ownerID, period, 45000, 135000, nil, false)
	require.NoError(t, err)
	require.NoError(t, f.bookings.SaveIfAvailable(context.Background(), bk))
	f.bookingID = bk.ID()
	return f
}

func (f *disputeFixture) renter() auth.Actor {
	return auth.Actor{ID: f.renterID, Roles: auth.NewRoleSet(auth.RoleRenter)}
}

func (f *disputeFixture) owner() auth.Actor {
	return auth.Actor{ID: f.ownerID, Roles: auth.NewRoleSet(auth.RoleOwner)}
}

func (f *disputeFixture) admin() auth.Actor {
	return auth.Actor{ID: uuid.New(), Roles: auth.NewRoleSet(auth.RoleAdmin)}
}

func (f *disputeFixture) open(t *testing.T) *DisputeDTO {
	t.Helper()
	dto, err := f.service.OpenDispute(context.Background(), f.renterID, OpenDisputeRequest{
		BookingID:   f.bookingID,
		Reason:      "billing",
		Description: "charged for an extra month",
	})
	require.NoError(t, err)
	return dto
}

func TestOpenDispute(t *testing.T) {
	f := newDisputeFixture(t)

	dto := f.open(t)
	assert.Equal(t, "open", dto.Status)
	assert.Equal(t, f.bookingID, dto.BookingID)
	assert.Equal(t, f.renterID, dto.FilerID)

	assert.Contains(t, f.producer.typesOn(events.TopicBookingEvents), events.DisputeOpened)
	// The counterparty gets notified.
	ce, found := f.producer.find(events.NotificationRequested)
	require.True(t, found)
	var notif events.NotificationRequestedEvent
	require.NoError(t, ce.ParseData(&notif))
	assert.Equal(t, f.ownerID, notif.RecipientID)
}

func TestOpenDisputeGuards(t *testing.T) {
	f := newDisputeFixture(t)

	// Unknown booking.
	_, err := f.service.OpenDispute(context.Background(), f.renterID, OpenDisputeRequest{
		BookingID:   uuid.New(),
		Reason:      "billing",
		Description: "text",
	})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	// Only a party may file.
	_, err = f.service.OpenDispute(context.Background(), uuid.New(), OpenDisputeRequest{
		BookingID:   f.bookingID,
		Reason:      "billing",
		Description: "text",
	})
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	// Invalid reason.
	_, err = f.service.OpenDispute(context.Background(), f.renterID, OpenDisputeRequest{
		BookingID:   f.bookingID,
		Reason:      "vibes",
		Description: "text",
	})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	// One dispute per booking; the owner cannot file a second one either.
	f.open(t)
	_, err = f.service.OpenDispute(context.Background(), f.ownerID, OpenDisputeRequest{
		BookingID:   f.bookingID,
		Reason:      "damage",
		Description: "fence broken",
	})
	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestStartReviewService(t *testing.T) {
	f := newDisputeFixture(t)
	dto := f.open(t)

	stranger := auth.Actor{ID: uuid.New(), Roles: auth.NewRoleSet(auth.RoleRenter)}
	_, err := f.service.StartReview(context.Background(), dto.ID, stranger)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	// Either party to the booking may start a review, not just an admin.
	reviewed, err := f.service.StartReview(context.Background(), dto.ID, f.owner())
	require.NoError(t, err)
	assert.Equal(t, "under_review", reviewed.Status)

	_, err = f.service.StartReview(context.Background(), dto.ID, f.admin())
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))
}

func TestResolveDispute(t *testing.T) {
	f := newDisputeFixture(t)
	dto := f.open(t)

	// Only an administrator resolves; even the parties cannot.
	for _, actor := range []auth.Actor{f.renter(), f.owner()} {
		_, err := f.service.ResolveDispute(context.Background(), dto.ID, actor, ResolveDisputeRequest{Outcome: "no_action"})
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	}

	amount := int64(45000)
	resolved, err := f.service.ResolveDispute(context.Background(), dto.ID, f.admin(), ResolveDisputeRequest{
		Outcome:             "partial_refund",
		ResolutionNotes:     "one month refunded",
		ResolvedAmountCents: &amount,
	})
	require.NoError(t, err)
	assert.Equal(t, "resolved", resolved.Status)
	assert.Equal(t, "partial_refund", resolved.Outcome)

	assert.Contains(t, f.producer.typesOn(events.TopicBookingEvents), events.DisputeResolved)

	// A partial refund asks the payment service to settle the resolved amount.
	ce, found := f.producer.find(events.RefundRequested)
	require.True(t, found)
	var refund events.RefundRequestedEvent
	require.NoError(t, ce.ParseData(&refund))
	assert.Equal(t, amount, refund.AmountCents)

	// Resolving the underlying booking is not this service's job: the booking
	// keeps its status.
	bk, err := f.bookings.FindByID(context.Background(), f.bookingID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusPending, bk.Status())

	// Resolution is terminal.
	_, err = f.service.ResolveDispute(context.Background(), dto.ID, f.admin(), ResolveDisputeRequest{Outcome: "no_action"})
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))
}

func TestResolveDisputeMissingBookingLeavesDisputeOpen(t *testing.T) {
	f := newDisputeFixture(t)
	dto := f.open(t)

	delete(f.bookings.bookings, f.bookingID)

	_, err := f.service.ResolveDispute(context.Background(), dto.ID, f.admin(), ResolveDisputeRequest{Outcome: "no_action"})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	current, err := f.service.GetDispute(context.Background(), dto.ID, f.admin())
	require.NoError(t, err)
	assert.Equal(t, "open", current.Status)
	assert.Empty(t, current.Outcome)
}

func TestResolveNoActionSkipsRefund(t *testing.T) {
	f := newDisputeFixture(t)
	dto := f.open(t)

	_, err := f.service.ResolveDispute(context.Background(), dto.ID, f.admin(), ResolveDisputeRequest{
		Outcome:         "no_action",
		ResolutionNotes: "no evidence of overcharge",
	})
	require.NoError(t, err)

	_, found := f.producer.find(events.RefundRequested)
	assert.False(t, found)
}

func TestDisputeMessages(t *testing.T) {
	f := newDisputeFixture(t)
	dto := f.open(t)
	admin := f.admin()

	_, err := f.service.PostMessage(context.Background(), dto.ID, f.renter(), PostMessageRequest{
		Content: "here are the bank statements",
	})
	require.NoError(t, err)

	// The internal flag is dropped for non-admins rather than rejected.
	msg, err := f.service.PostMessage(context.Background(), dto.ID, f.owner(), PostMessageRequest{
		Content:    "renter never paid the deposit",
		IsInternal: true,
	})
	require.NoError(t, err)
	assert.False(t, msg.IsInternal)

	internal, err := f.service.PostMessage(context.Background(), dto.ID, admin, PostMessageRequest{
		Content:    "filer has two prior disputes",
		IsInternal: true,
	})
	require.NoError(t, err)
	assert.True(t, internal.IsInternal)

	// Parties see only non-internal messages, in append order.
	visible, err := f.service.GetMessages(context.Background(), dto.ID, f.renter())
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "here are the bank statements", visible[0].Content)

	// Admins see everything.
	all, err := f.service.GetMessages(context.Background(), dto.ID, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Strangers see nothing.
	stranger := auth.Actor{ID: uuid.New(), Roles: auth.NewRoleSet(auth.RoleRenter)}
	_, err = f.service.GetMessages(context.Background(), dto.ID, stranger)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	// Messages can still be posted after resolution.
	_, err = f.service.ResolveDispute(context.Background(), dto.ID, admin, ResolveDisputeRequest{Outcome: "no_action"})
	require.NoError(t, err)
	_, err = f.service.PostMessage(context.Background(), dto.ID, f.renter(), PostMessageRequest{Content: "thanks for reviewing"})
	assert.NoError(t, err)
}

func TestGetBookingDispute(t *testing.T) {
	f := newDisputeFixture(t)

	_, err := f.service.GetBookingDispute(context.Background(), f.bookingID, f.renter())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	dto := f.open(t)
	got, err := f.service.GetBookingDispute(context.Background(), f.bookingID, f.owner())
	require.NoError(t, err)
	assert.Equal(t, dto.ID, got.ID)

	stranger := auth.Actor{ID: uuid.New(), Roles: auth.NewRoleSet(auth.RoleOwner)}
	_, err = f.service.GetBookingDispute(context.Background(), f.bookingID, stranger)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

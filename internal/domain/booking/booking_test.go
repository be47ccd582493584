package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growshare/service-booking/pkg/auth"
	"github.com/growshare/service-booking/pkg/domain"
)

func newTestBooking(t *testing.T, renterID, ownerID uuid.UUID, status BookingStatus) *Booking {
	t.Helper()
	period := mustPeriod(t, "2026-04-01", "2026-06-30")
	bk, err := NewBooking(uuid.New(), renterID, ownerID, period, 45000, 135000, nil, false)
	require.NoError(t, err)
	bk.status = status
	return bk
}

func renterActor(id uuid.UUID) auth.Actor {
	return auth.Actor{ID: id, Roles: auth.NewRoleSet(auth.RoleRenter)}
}

func ownerActor(id uuid.UUID) auth.Actor {
	return auth.Actor{ID: id, Roles: auth.NewRoleSet(auth.RoleOwner)}
}

func adminActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Roles: auth.NewRoleSet(auth.RoleAdmin)}
}

func TestNewBooking(t *testing.T) {
	renterID := uuid.New()
	ownerID := uuid.New()
	period := mustPeriod(t, "2026-04-01", "2026-06-30")

	bk, err := NewBooking(uuid.New(), renterID, ownerID, period, 45000, 135000, nil, false)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, 3, bk.DurationMonths())
	assert.Equal(t, int64(135000), bk.TotalAmountCents())
	assert.Nil(t, bk.SecurityDepositCents())
	assert.Equal(t, int64(1), bk.Version())

	deposit := int64(20000)
	instant, err := NewBooking(uuid.New(), renterID, ownerID, period, 45000, 135000, &deposit, true)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, instant.Status())
	require.NotNil(t, instant.SecurityDepositCents())
	assert.Equal(t, deposit, *instant.SecurityDepositCents())
}

func TestNewBookingValidation(t *testing.T) {
	renterID := uuid.New()
	period := mustPeriod(t, "2026-04-01", "2026-06-30")

	_, err := NewBooking(uuid.Nil, renterID, uuid.New(), period, 45000, 135000, nil, false)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewBooking(uuid.New(), renterID, renterID, period, 45000, 135000, nil, false)
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))

	_, err = NewBooking(uuid.New(), renterID, uuid.New(), period, 0, 135000, nil, false)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusActive, false},
		{StatusPending, StatusCompleted, false},
		{StatusApproved, StatusActive, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusCompleted, false},
		{StatusApproved, StatusRejected, false},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusApproved, false},
		{StatusRejected, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusTerminalAndCalendar(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())

	assert.True(t, StatusPending.BlocksCalendar())
	assert.True(t, StatusApproved.BlocksCalendar())
	assert.True(t, StatusActive.BlocksCalendar())
	assert.False(t, StatusRejected.BlocksCalendar())
	assert.False(t, StatusCompleted.BlocksCalendar())
	assert.False(t, StatusCancelled.BlocksCalendar())
}

func TestApproveAndReject(t *testing.T) {
	renterID := uuid.New()
	ownerID := uuid.New()

	bk := newTestBooking(t, renterID, ownerID, StatusPending)
	require.NoError(t, bk.Approve(ownerActor(ownerID)))
	assert.Equal(t, StatusApproved, bk.Status())

	// The renter is a party but may not approve.
	bk = newTestBooking(t, renterID, ownerID, StatusPending)
	err := bk.Approve(renterActor(renterID))
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))

	// A stranger gets forbidden before any edge check.
	err = bk.Approve(ownerActor(uuid.New()))
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	bk = newTestBooking(t, renterID, ownerID, StatusPending)
	require.NoError(t, bk.Reject(ownerActor(ownerID)))
	assert.Equal(t, StatusRejected, bk.Status())

	// Rejected is terminal.
	err = bk.Approve(ownerActor(ownerID))
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))
}

func TestActivateAndComplete(t *testing.T) {
	renterID := uuid.New()
	ownerID := uuid.New()

	bk := newTestBooking(t, renterID, ownerID, StatusApproved)
	require.NoError(t, bk.Activate(auth.SystemActor()))
	assert.Equal(t, StatusActive, bk.Status())
	assert.NotNil(t, bk.ActivatedAt())

	require.NoError(t, bk.Complete(ownerActor(ownerID)))
	assert.Equal(t, StatusCompleted, bk.Status())
	assert.NotNil(t, bk.CompletedAt())

	// Skipping approved -> completed is not an edge.
	bk = newTestBooking(t, renterID, ownerID, StatusApproved)
	err := bk.Complete(ownerActor(ownerID))
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))

	// The renter cannot activate.
	err = bk.Activate(renterActor(renterID))
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))
}

func TestCancel(t *testing.T) {
	renterID := uuid.New()
	ownerID := uuid.New()

	// Renter can cancel while pending or approved.
	for _, from := range []BookingStatus{StatusPending, StatusApproved} {
		bk := newTestBooking(t, renterID, ownerID, from)
		require.NoError(t, bk.Cancel(renterActor(renterID), "changed plans"))
		assert.Equal(t, StatusCancelled, bk.Status())
		assert.Equal(t, "changed plans", bk.CancelNote())
		assert.NotNil(t, bk.CancelledAt())
	}

	// Renter cannot cancel an active lease; an admin can.
	bk := newTestBooking(t, renterID, ownerID, StatusActive)
	err := bk.Cancel(renterActor(renterID), "")
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))
	require.NoError(t, bk.Cancel(adminActor(), "policy breach"))
	assert.Equal(t, StatusCancelled, bk.Status())

	// Nobody cancels a completed booking, not even an admin.
	bk = newTestBooking(t, renterID, ownerID, StatusCompleted)
	err = bk.Cancel(adminActor(), "")
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))
}

func TestPartyHelpers(t *testing.T) {
	renterID := uuid.New()
	ownerID := uuid.New()
	bk := newTestBooking(t, renterID, ownerID, StatusPending)

	assert.True(t, bk.IsParty(renterID))
	assert.True(t, bk.IsParty(ownerID))
	assert.False(t, bk.IsParty(uuid.New()))
	assert.Equal(t, ownerID, bk.OtherParty(renterID))
	assert.Equal(t, renterID, bk.OtherParty(ownerID))
}

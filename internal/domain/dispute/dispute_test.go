package dispute

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growshare/service-booking/pkg/domain"
)

func TestNewDispute(t *testing.T) {
	bookingID := uuid.New()
	filerID := uuid.New()

	d, err := NewDispute(bookingID, filerID, ReasonBilling, "charged twice", nil, 135000)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, d.Status())
	assert.Equal(t, bookingID, d.BookingID())
	assert.Equal(t, filerID, d.FilerID())
	assert.Nil(t, d.RequestedAmountCents())

	requested := int64(50000)
	d, err = NewDispute(bookingID, filerID, ReasonDamage, "fence broken", &requested, 135000)
	require.NoError(t, err)
	require.NotNil(t, d.RequestedAmountCents())
	assert.Equal(t, requested, *d.RequestedAmountCents())
}

func TestNewDisputeValidation(t *testing.T) {
	bookingID := uuid.New()
	filerID := uuid.New()

	_, err := NewDispute(bookingID, filerID, Reason("bogus"), "text", nil, 135000)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewDispute(bookingID, filerID, ReasonOther, "", nil, 135000)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	zero := int64(0)
	_, err = NewDispute(bookingID, filerID, ReasonBilling, "text", &zero, 135000)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	tooMuch := int64(200000)
	_, err = NewDispute(bookingID, filerID, ReasonBilling, "text", &tooMuch, 135000)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestStartReview(t *testing.T) {
	d, err := NewDispute(uuid.New(), uuid.New(), ReasonAccess, "gate locked", nil, 45000)
	require.NoError(t, err)

	require.NoError(t, d.StartReview())
	assert.Equal(t, StatusUnderReview, d.Status())

	// Review can only start once.
	err = d.StartReview()
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))
}

func TestResolve(t *testing.T) {
	adminID := uuid.New()

	// Resolvable straight from open.
	d, err := NewDispute(uuid.New(), uuid.New(), ReasonBilling, "charged twice", nil, 135000)
	require.NoError(t, err)
	amount := int64(45000)
	require.NoError(t, d.Resolve(adminID, OutcomePartialRefund, "one month refunded", &amount))
	assert.Equal(t, StatusResolved, d.Status())
	assert.Equal(t, OutcomePartialRefund, d.Outcome())
	assert.Equal(t, "one month refunded", d.ResolutionNotes())
	require.NotNil(t, d.ResolvedAmountCents())
	assert.Equal(t, amount, *d.ResolvedAmountCents())
	require.NotNil(t, d.ResolvedBy())
	assert.Equal(t, adminID, *d.ResolvedBy())
	assert.NotNil(t, d.ResolvedAt())

	// And from under_review.
	d, err = NewDispute(uuid.New(), uuid.New(), ReasonDamage, "fence broken", nil, 135000)
	require.NoError(t, err)
	require.NoError(t, d.StartReview())
	require.NoError(t, d.Resolve(adminID, OutcomeNoAction, "no evidence", nil))
	assert.Equal(t, StatusResolved, d.Status())

	// Never twice.
	err = d.Resolve(adminID, OutcomeRefundIssued, "", nil)
	assert.True(t, domain.IsKind(err, domain.KindInvalidOperation))
}

func TestResolveValidation(t *testing.T) {
	d, err := NewDispute(uuid.New(), uuid.New(), ReasonBilling, "charged twice", nil, 135000)
	require.NoError(t, err)

	err = d.Resolve(uuid.New(), Outcome("bogus"), "", nil)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Equal(t, StatusOpen, d.Status(), "failed resolution must not change status")

	negative := int64(-1)
	err = d.Resolve(uuid.New(), OutcomePartialRefund, "", &negative)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestNewMessage(t *testing.T) {
	disputeID := uuid.New()
	senderID := uuid.New()

	m, err := NewMessage(disputeID, senderID, "please check the meter photos", []string{"https://cdn.growshare.example/m1.jpg"}, false)
	require.NoError(t, err)
	assert.Equal(t, disputeID, m.DisputeID())
	assert.Equal(t, senderID, m.SenderID())
	assert.False(t, m.IsInternal())
	assert.Len(t, m.AttachmentURLs(), 1)

	_, err = NewMessage(disputeID, senderID, "", nil, false)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	internal, err := NewMessage(disputeID, senderID, "renter has two prior disputes", nil, true)
	require.NoError(t, err)
	assert.True(t, internal.IsInternal())
}

package booking

import "fmt"

// PricingStrategy defines the interface for lease pricing and cancellation
// refunds.
type PricingStrategy interface {
	// Quote returns the total lease price in cents for the given monthly rate
	// and duration.
	Quote(monthlyRateCents int64, months int) (int64, error)

	// RefundPercent returns the percentage of the total refunded when an
	// approved booking is cancelled the given number of days before the lease
	// starts.
	RefundPercent(daysBeforeStart int) int
}

// StandardLeasePricing implements the default GrowShare pricing policy.
type StandardLeasePricing struct{}

// NewStandardLeasePricing creates a new StandardLeasePricing.
func NewStandardLeasePricing() *StandardLeasePricing {
	return &StandardLeasePricing{}
}

// Quote computes the total as monthly rate times whole months. The rate is
// whatever snapshot the booking carries, so the quote is stable over the
// booking's life.
func (s *StandardLeasePricing) Quote(monthlyRateCents int64, months int) (int64, error) {
	if monthlyRateCents <= 0 {
		return 0, fmt.Errorf("monthly rate must be positive")
	}
	if months <= 0 {
		return 0, fmt.Errorf("duration must be at least one month")
	}
	return monthlyRateCents * int64(months), nil
}

// RefundPercent applies the tiered cancellation policy:
//   - 7 or more days before start: 100%
//   - 3 to 6 days before start: 50%
//   - under 3 days: 0%
//
// Settlement itself is handled by the payment service; this only computes the
// tier.
func (s *StandardLeasePricing) RefundPercent(daysBeforeStart int) int {
	switch {
	case daysBeforeStart >= 7:
		return 100
	case daysBeforeStart >= 3:
		return 50
	default:
		return 0
	}
}

package booking

import (
	"fmt"
	"time"

	"github.com/growshare/service-booking/pkg/domain"
)

// leaseDateLayout is the wire format for lease dates (calendar dates, no
// time-of-day component).
const leaseDateLayout = "2006-01-02"

// maxLeaseHorizonYears caps how far into the future a lease may be booked.
const maxLeaseHorizonYears = 10

// LeasePeriod is an immutable value object for a booking's date range.
// Boundaries are calendar dates; start < end always holds.
type LeasePeriod struct {
	start time.Time
	end   time.Time
}

// ParseLeaseDates parses the wire representation of a date pair. It does not
// apply range rules; that is NewLeasePeriod's job.
func ParseLeaseDates(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(leaseDateLayout, startStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid start date: %s", startStr))
	}
	end, err := time.ParseInLocation(leaseDateLayout, endStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid end date: %s", endStr))
	}
	return start, end, nil
}

// NewLeasePeriod validates a date pair against the booking rules relative to
// now: the start may not be in the past (same-day starts are allowed), the
// end must be strictly after the start, and neither date may be more than ten
// years out.
func NewLeasePeriod(start, end, now time.Time) (LeasePeriod, error) {
	start = truncateToDate(start)
	end = truncateToDate(end)
	today := truncateToDate(now)

	if start.Before(today) {
		return LeasePeriod{}, domain.NewValidationError("start date cannot be in the past")
	}
	if !end.After(start) {
		return LeasePeriod{}, domain.NewValidationError("end date must be after start date")
	}
	horizon := today.AddDate(maxLeaseHorizonYears, 0, 0)
	if start.After(horizon) || end.After(horizon) {
		return LeasePeriod{}, domain.NewValidationError("lease dates cannot be more than 10 years in the future")
	}

	return LeasePeriod{start: start, end: end}, nil
}

// ReconstructLeasePeriod rebuilds a LeasePeriod from persistence (no
// validation against today).
func ReconstructLeasePeriod(start, end time.Time) LeasePeriod {
	return LeasePeriod{start: truncateToDate(start), end: truncateToDate(end)}
}

// Start returns the first day of the lease.
func (p LeasePeriod) Start() time.Time { return p.start }

// End returns the day the lease ends.
func (p LeasePeriod) End() time.Time { return p.end }

// Days returns the lease length in whole days.
func (p LeasePeriod) Days() int {
	return int(p.end.Sub(p.start).Hours() / 24)
}

// Months returns the lease length in whole months, where a month is 30 days
// and partial months round up.
func (p LeasePeriod) Months() int {
	days := p.Days()
	months := days / 30
	if days%30 != 0 {
		months++
	}
	return months
}

// DaysUntilStart returns how many whole days remain before the lease begins.
func (p LeasePeriod) DaysUntilStart(now time.Time) int {
	return int(p.start.Sub(truncateToDate(now)).Hours() / 24)
}

// Overlaps reports whether two lease periods share at least one day.
// Boundary touching counts as overlap: a lease ending on the day another
// starts conflicts with it.
func (p LeasePeriod) Overlaps(other LeasePeriod) bool {
	return !p.start.After(other.end) && !other.start.After(p.end)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package plot

import (
	"time"

	"github.com/google/uuid"

	"github.com/growshare/service-booking/pkg/domain"
)

// PlotStatus represents the listing state of a plot.
type PlotStatus string

const (
	PlotStatusActive   PlotStatus = "active"
	PlotStatusUnlisted PlotStatus = "unlisted"
)

// Plot is the aggregate root for a land listing available for lease.
type Plot struct {
	id                   uuid.UUID
	ownerID              uuid.UUID
	title                string
	description          string
	acreage              float64
	soilType             string
	monthlyRateCents     int64
	minimumLeaseMonths   *int
	securityDepositCents *int64
	instantBook          bool
	status               PlotStatus
	version              int64
	createdAt            time.Time
	updatedAt            time.Time
}

// NewPlot creates a new active plot listing with validated fields.
// minimumLeaseMonths and securityDepositCents are optional; nil means the
// plot has no such policy, which is distinct from an explicit zero.
func NewPlot(
	ownerID uuid.UUID,
	title, description string,
	acreage float64,
	soilType string,
	monthlyRateCents int64,
	minimumLeaseMonths *int,
	securityDepositCents *int64,
	instantBook bool,
) (*Plot, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if title == "" {
		return nil, domain.NewValidationError("plot title is required")
	}
	if acreage <= 0 {
		return nil, domain.NewValidationError("acreage must be positive")
	}
	if monthlyRateCents <= 0 {
		return nil, domain.NewValidationError("monthly rate must be positive")
	}
	if minimumLeaseMonths != nil && *minimumLeaseMonths < 1 {
		return nil, domain.NewValidationError("minimum lease must be at least one month")
	}
	if securityDepositCents != nil && *securityDepositCents < 0 {
		return nil, domain.NewValidationError("security deposit cannot be negative")
	}

	now := time.Now().UTC()
	return &Plot{
		id:                   uuid.New(),
		ownerID:              ownerID,
		title:                title,
		description:          description,
		acreage:              acreage,
		soilType:             soilType,
		monthlyRateCents:     monthlyRateCents,
		minimumLeaseMonths:   minimumLeaseMonths,
		securityDepositCents: securityDepositCents,
		instantBook:          instantBook,
		status:               PlotStatusActive,
		version:              1,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// Reconstruct rebuilds a Plot from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	title, description string,
	acreage float64,
	soilType string,
	monthlyRateCents int64,
	minimumLeaseMonths *int,
	securityDepositCents *int64,
	instantBook bool,
	status PlotStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Plot {
	return &Plot{
		id:                   id,
		ownerID:              ownerID,
		title:                title,
		description:          description,
		acreage:              acreage,
		soilType:             soilType,
		monthlyRateCents:     monthlyRateCents,
		minimumLeaseMonths:   minimumLeaseMonths,
		securityDepositCents: securityDepositCents,
		instantBook:          instantBook,
		status:               status,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// --- Getters ---

func (p *Plot) ID() uuid.UUID                { return p.id }
func (p *Plot) OwnerID() uuid.UUID           { return p.ownerID }
func (p *Plot) Title() string                { return p.title }
func (p *Plot) Description() string          { return p.description }
func (p *Plot) Acreage() float64             { return p.acreage }
func (p *Plot) SoilType() string             { return p.soilType }
func (p *Plot) MonthlyRateCents() int64      { return p.monthlyRateCents }
func (p *Plot) MinimumLeaseMonths() *int     { return p.minimumLeaseMonths }
func (p *Plot) SecurityDepositCents() *int64 { return p.securityDepositCents }
func (p *Plot) InstantBook() bool            { return p.instantBook }
func (p *Plot) Status() PlotStatus           { return p.status }
func (p *Plot) Version() int64               { return p.version }
func (p *Plot) CreatedAt() time.Time         { return p.createdAt }
func (p *Plot) UpdatedAt() time.Time         { return p.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the plot belongs to the given owner.
func (p *Plot) IsOwnedBy(ownerID uuid.UUID) bool {
	return p.ownerID == ownerID
}

// IsListed returns true if the plot accepts new booking requests.
func (p *Plot) IsListed() bool {
	return p.status == PlotStatusActive
}

// Update applies partial updates to the listing. Rate and policy changes only
// affect future bookings; existing bookings keep their snapshots.
func (p *Plot) Update(
	title, description string,
	acreage float64,
	soilType string,
	monthlyRateCents int64,
	minimumLeaseMonths *int,
	securityDepositCents *int64,
	instantBook *bool,
) error {
	if title != "" {
		p.title = title
	}
	if description != "" {
		p.description = description
	}
	if acreage > 0 {
		p.acreage = acreage
	}
	if soilType != "" {
		p.soilType = soilType
	}
	if monthlyRateCents > 0 {
		p.monthlyRateCents = monthlyRateCents
	}
	if minimumLeaseMonths != nil {
		if *minimumLeaseMonths < 1 {
			return domain.NewValidationError("minimum lease must be at least one month")
		}
		p.minimumLeaseMonths = minimumLeaseMonths
	}
	if securityDepositCents != nil {
		if *securityDepositCents < 0 {
			return domain.NewValidationError("security deposit cannot be negative")
		}
		p.securityDepositCents = securityDepositCents
	}
	if instantBook != nil {
		p.instantBook = *instantBook
	}
	p.version++
	p.updatedAt = time.Now().UTC()
	return nil
}

// Unlist removes the plot from the marketplace without touching its bookings.
func (p *Plot) Unlist() {
	p.status = PlotStatusUnlisted
	p.version++
	p.updatedAt = time.Now().UTC()
}

// Relist makes an unlisted plot bookable again.
func (p *Plot) Relist() {
	p.status = PlotStatusActive
	p.version++
	p.updatedAt = time.Now().UTC()
}

package application

import (
	"context"
	"sort"

	"github.com/google/uuid"

	bookingDomain "github.com/growshare/service-booking/internal/domain/booking"
	disputeDomain "github.com/growshare/service-booking/internal/domain/dispute"
	plotDomain "github.com/growshare/service-booking/internal/domain/plot"
	"github.com/growshare/service-booking/pkg/domain"
	"github.com/growshare/service-booking/pkg/kafka"
)

// memPlotRepo is an in-memory PlotRepository for service tests.
type memPlotRepo struct {
	plots map[uuid.UUID]*plotDomain.Plot
}

func newMemPlotRepo() *memPlotRepo {
	return &memPlotRepo{plots: make(map[uuid.UUID]*plotDomain.Plot)}
}

func (r *memPlotRepo) FindByID(_ context.Context, id uuid.UUID) (*plotDomain.Plot, error) {
	p, ok := r.plots[id]
	if !ok {
		return nil, domain.NewNotFoundError("plot", id.String())
	}
	return p, nil
}

func (r *memPlotRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*plotDomain.Plot, error) {
	var out []*plotDomain.Plot
	for _, p := range r.plots {
		if p.OwnerID() == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPlotRepo) ListActive(_ context.Context, page, limit int) ([]*plotDomain.Plot, int64, error) {
	var out []*plotDomain.Plot
	for _, p := range r.plots {
		if p.IsListed() {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memPlotRepo) Save(_ context.Context, p *plotDomain.Plot) error {
	r.plots[p.ID()] = p
	return nil
}

func (r *memPlotRepo) Update(_ context.Context, p *plotDomain.Plot) error {
	if _, ok := r.plots[p.ID()]; !ok {
		return domain.NewNotFoundError("plot", p.ID().String())
	}
	r.plots[p.ID()] = p
	return nil
}

// memBookingRepo is an in-memory BookingRepository. SaveIfAvailable applies
// the same calendar rule as the real repository: any booking in a
// calendar-blocking status with an overlapping period conflicts.
type memBookingRepo struct {
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return bk, nil
}

func (r *memBookingRepo) FindByRenterID(_ context.Context, renterID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.filter(func(bk *bookingDomain.Booking) bool { return bk.RenterID() == renterID })
}

func (r *memBookingRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.filter(func(bk *bookingDomain.Booking) bool { return bk.OwnerID() == ownerID })
}

func (r *memBookingRepo) FindByPlotID(_ context.Context, plotID uuid.UUID) ([]*bookingDomain.Booking, error) {
	out, _, _ := r.filter(func(bk *bookingDomain.Booking) bool {
		return bk.PlotID() == plotID && bk.Status().BlocksCalendar()
	})
	return out, nil
}

func (r *memBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.filter(func(*bookingDomain.Booking) bool { return true })
}

func (r *memBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *memBookingRepo) SaveIfAvailable(_ context.Context, bk *bookingDomain.Booking) error {
	for _, existing := range r.bookings {
		if existing.PlotID() == bk.PlotID() &&
			existing.Status().BlocksCalendar() &&
			existing.Period().Overlaps(bk.Period()) {
			return domain.NewConflictError("plot is already booked for the requested dates")
		}
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *memBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *memBookingRepo) filter(keep func(*bookingDomain.Booking) bool) ([]*bookingDomain.Booking, int64, error) {
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if keep(bk) {
			out = append(out, bk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, int64(len(out)), nil
}

// memDisputeRepo is an in-memory DisputeRepository enforcing the
// one-dispute-per-booking rule the way the unique index does.
type memDisputeRepo struct {
	disputes map[uuid.UUID]*disputeDomain.Dispute
	messages []*disputeDomain.Message
}

func newMemDisputeRepo() *memDisputeRepo {
	return &memDisputeRepo{disputes: make(map[uuid.UUID]*disputeDomain.Dispute)}
}

func (r *memDisputeRepo) FindByID(_ context.Context, id uuid.UUID) (*disputeDomain.Dispute, error) {
	d, ok := r.disputes[id]
	if !ok {
		return nil, domain.NewNotFoundError("dispute", id.String())
	}
	return d, nil
}

func (r *memDisputeRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*disputeDomain.Dispute, bool, error) {
	for _, d := range r.disputes {
		if d.BookingID() == bookingID {
			return d, true, nil
		}
	}
	return nil, false, nil
}

func (r *memDisputeRepo) ListOpen(_ context.Context, page, limit int) ([]*disputeDomain.Dispute, int64, error) {
	var out []*disputeDomain.Dispute
	for _, d := range r.disputes {
		if d.Status() != disputeDomain.StatusResolved {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memDisputeRepo) Save(_ context.Context, d *disputeDomain.Dispute) error {
	for _, existing := range r.disputes {
		if existing.BookingID() == d.BookingID() {
			return domain.NewConflictError("booking already has a dispute")
		}
	}
	r.disputes[d.ID()] = d
	return nil
}

func (r *memDisputeRepo) Update(_ context.Context, d *disputeDomain.Dispute) error {
	if _, ok := r.disputes[d.ID()]; !ok {
		return domain.NewNotFoundError("dispute", d.ID().String())
	}
	r.disputes[d.ID()] = d
	return nil
}

func (r *memDisputeRepo) AppendMessage(_ context.Context, msg *disputeDomain.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func (r *memDisputeRepo) FindMessages(_ context.Context, disputeID uuid.UUID, includeInternal bool) ([]*disputeDomain.Message, error) {
	var out []*disputeDomain.Message
	for _, m := range r.messages {
		if m.DisputeID() != disputeID {
			continue
		}
		if m.IsInternal() && !includeInternal {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// memActivityLog records audit calls for assertions.
type memActivityLog struct {
	actions []string
}

func (l *memActivityLog) Record(_ context.Context, _ uuid.UUID, action, _ string, _ uuid.UUID) error {
	l.actions = append(l.actions, action)
	return nil
}

// memPublisher captures published CloudEvents by type.
type memPublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	topic string
	key   string
	event kafka.CloudEvent
}

func (p *memPublisher) PublishEventWithKey(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *memPublisher) typesOn(topic string) []string {
	var out []string
	for _, e := range p.events {
		if e.topic == topic {
			out = append(out, e.event.Type)
		}
	}
	return out
}

func (p *memPublisher) find(eventType string) (kafka.CloudEvent, bool) {
	for _, e := range p.events {
		if e.event.Type == eventType {
			return e.event, true
		}
	}
	return kafka.CloudEvent{}, false
}

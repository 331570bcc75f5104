package availability

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrInvalidRequest is returned for requests rejected before any slot is computed.
var ErrInvalidRequest = errors.New("invalid slot request")

// MaxOpenDaysLookahead bounds OpenDays.
const MaxOpenDaysLookahead = 62

// Engine answers availability questions for one configured location. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	resolver  *Resolver
	generator *Generator
	clock     func() time.Time
}

type Option func(*Engine)

// WithClock overrides the clock used when a request carries no Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

func NewEngine(loc *time.Location, logger *slog.Logger, opts ...Option) *Engine {
	if loc == nil {
		loc = DefaultLocation
	}
	e := &Engine{
		resolver:  NewResolver(loc, logger),
		generator: NewGenerator(loc),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Location() *time.Location {
	return e.resolver.Location()
}

// Validate checks the request boundary conditions.
func (e *Engine) Validate(req SlotRequest) error {
	switch {
	case req.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidRequest)
	case strings.TrimSpace(req.BarberID) == "":
		return fmt.Errorf("%w: barber id is required", ErrInvalidRequest)
	case req.ServiceDurationMinutes <= 0:
		return fmt.Errorf("%w: service duration must be positive (got %d)", ErrInvalidRequest, req.ServiceDurationMinutes)
	case req.ServiceDurationMinutes > minutesPerDay:
		return fmt.Errorf("%w: service duration exceeds one day (got %d)", ErrInvalidRequest, req.ServiceDurationMinutes)
	}
	return nil
}

// Slots returns the bookable start times for req. The only error is ErrInvalidRequest;
// closed or fully booked days yield an empty result.
func (e *Engine) Slots(req SlotRequest, schedule WeeklySchedule, existing []AppointmentRecord) (SlotResult, error) {
	if err := e.Validate(req); err != nil {
		return SlotResult{}, err
	}
	if req.Now.IsZero() {
		req.Now = e.clock()
	}
	window := e.resolver.Resolve(req.Date, schedule)
	return e.generator.Generate(req, window, existing), nil
}

// HasAnyOpenWindow is the cheap day-level check used to disable calendar dates.
func (e *Engine) HasAnyOpenWindow(date Date, schedule WeeklySchedule) bool {
	return e.resolver.HasAnyOpenWindow(date, schedule)
}

// OpenDays lists the dates in [from, from+days) that have an open window.
func (e *Engine) OpenDays(from Date, days int, schedule WeeklySchedule) []Date {
	if days > MaxOpenDaysLookahead {
		days = MaxOpenDaysLookahead
	}
	out := []Date{}
	for i := 0; i < days; i++ {
		d := from.AddDays(i)
		if e.HasAnyOpenWindow(d, schedule) {
			out = append(out, d)
		}
	}
	return out
}

// Today returns the current calendar date in the engine location.
func (e *Engine) Today() Date {
	return DateOf(e.clock().In(e.resolver.Location()))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ScheduleSource interface {
	WeeklySchedule(ctx context.Context, branchID string) (availability.WeeklySchedule, error)
}

type AppointmentSource interface {
	ListForBarberDay(ctx context.Context, branchID, barberID string, date availability.Date) ([]availability.AppointmentRecord, error)
}

// ServiceCatalog resolves a service id to its duration. Missing services are reported as
// ErrServiceNotFound or as an error recognised by the WithNotFound option.
type ServiceCatalog interface {
	ServiceDuration(ctx context.Context, branchID, serviceID string) (int, error)
}

var ErrServiceNotFound = errors.New("service not found")

// DefaultOpenDays is the look-ahead transports use when the caller gives none.
const DefaultOpenDays = 31

// Query is one transport-independent availability lookup.
type Query struct {
	BranchID               string
	BarberID               string
	Date                   availability.Date
	ServiceDurationMinutes int
	ServiceID              string
	ExcludeAppointmentID   string
	// Now overrides the wall clock; zero means the engine clock.
	Now time.Time
}

type Result struct {
	Date                   availability.Date
	BarberID               string
	ServiceDurationMinutes int
	Slots                  []string
}

// AvailabilityService loads the collaborator snapshot for a query and hands it to the engine.
type AvailabilityService struct {
	engine       *availability.Engine
	schedules    ScheduleSource
	appointments AppointmentSource
	catalog      ServiceCatalog
	isNotFound   func(error) bool
	logger       *slog.Logger
	tracer       trace.Tracer
}

type Option func(*AvailabilityService)

// WithNotFound teaches the service which catalog errors mean "no such service".
func WithNotFound(fn func(error) bool) Option {
	return func(s *AvailabilityService) {
		if fn != nil {
			s.isNotFound = fn
		}
	}
}

func NewAvailabilityService(engine *availability.Engine, schedules ScheduleSource, appointments AppointmentSource, catalog ServiceCatalog, logger *slog.Logger, opts ...Option) *AvailabilityService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &AvailabilityService{
		engine:       engine,
		schedules:    schedules,
		appointments: appointments,
		catalog:      catalog,
		isNotFound:   func(err error) bool { return errors.Is(err, ErrServiceNotFound) },
		logger:       logger,
		tracer:       otel.Tracer("availability-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AvailabilityService) Engine() *availability.Engine {
	return s.engine
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", availability.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func validUUID(field, v string) error {
	if _, err := uuid.Parse(v); err != nil {
		return invalid("%s must be a uuid", field)
	}
	return nil
}

func (q *Query) normalize() error {
	q.BranchID = strings.TrimSpace(q.BranchID)
	q.BarberID = strings.TrimSpace(q.BarberID)
	q.ServiceID = strings.TrimSpace(q.ServiceID)
	q.ExcludeAppointmentID = strings.TrimSpace(q.ExcludeAppointmentID)

	if q.BranchID == "" {
		return invalid("branch_id is required")
	}
	if q.BarberID == "" {
		return invalid("barber_id is required")
	}
	if err := validUUID("branch_id", q.BranchID); err != nil {
		return err
	}
	if err := validUUID("barber_id", q.BarberID); err != nil {
		return err
	}
	if q.ExcludeAppointmentID != "" {
		if err := validUUID("exclude_appointment_id", q.ExcludeAppointmentID); err != nil {
			return err
		}
	}
	if q.ServiceDurationMinutes == 0 && q.ServiceID == "" {
		return invalid("service_duration_minutes or service_id is required")
	}
	if q.ServiceDurationMinutes == 0 {
		if err := validUUID("service_id", q.ServiceID); err != nil {
			return err
		}
	}
	return nil
}

// Slots answers one availability query. Validation failures wrap
// availability.ErrInvalidRequest; everything else is a collaborator failure.
func (s *AvailabilityService) Slots(ctx context.Context, q Query) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "availability.slots")
	defer span.End()

	res, err := s.slots(ctx, q)
	if err != nil && !errors.Is(err, availability.ErrInvalidRequest) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collaborator failure")
	}
	span.SetAttributes(attribute.Int("availability.slot_count", len(res.Slots)))
	return res, err
}

func (s *AvailabilityService) slots(ctx context.Context, q Query) (Result, error) {
	if err := q.normalize(); err != nil {
		return Result{}, err
	}

	duration := q.ServiceDurationMinutes
	if duration == 0 {
		d, err := s.serviceDuration(ctx, q.BranchID, q.ServiceID)
		if err != nil {
			return Result{}, err
		}
		duration = d
	}

	req := availability.SlotRequest{
		Date:                   q.Date,
		BarberID:               q.BarberID,
		ServiceDurationMinutes: duration,
		ExcludeAppointmentID:   q.ExcludeAppointmentID,
		Now:                    q.Now,
	}
	if err := s.engine.Validate(req); err != nil {
		return Result{}, err
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("availability.branch_id", q.BranchID),
		attribute.String("availability.barber_id", q.BarberID),
		attribute.String("availability.date", q.Date.String()),
		attribute.Int("availability.duration_minutes", duration),
	)

	schedule, err := s.schedules.WeeklySchedule(ctx, q.BranchID)
	if err != nil {
		return Result{}, fmt.Errorf("load schedule: %w", err)
	}

	res := Result{Date: q.Date, BarberID: q.BarberID, ServiceDurationMinutes: duration, Slots: []string{}}
	if !s.engine.HasAnyOpenWindow(q.Date, schedule) {
		return res, nil
	}

	existing, err := s.appointments.ListForBarberDay(ctx, q.BranchID, q.BarberID, q.Date)
	if err != nil {
		return Result{}, fmt.Errorf("load appointments: %w", err)
	}

	out, err := s.engine.Slots(req, schedule, existing)
	if err != nil {
		return Result{}, err
	}
	res.Slots = out.Slots
	return res, nil
}

func (s *AvailabilityService) serviceDuration(ctx context.Context, branchID, serviceID string) (int, error) {
	if s.catalog == nil {
		return availability.DefaultAppointmentDurationMinutes, nil
	}
	d, err := s.catalog.ServiceDuration(ctx, branchID, serviceID)
	if err != nil {
		if s.isNotFound(err) {
			s.logger.WarnContext(ctx, "service duration unresolved, using default",
				"branch_id", branchID,
				"service_id", serviceID,
				"default_minutes", availability.DefaultAppointmentDurationMinutes,
			)
			return availability.DefaultAppointmentDurationMinutes, nil
		}
		return 0, fmt.Errorf("load service duration: %w", err)
	}
	return d, nil
}

// OpenDays lists the dates from `from` (inclusive) with at least one open window.
// A zero from means today in the engine location.
func (s *AvailabilityService) OpenDays(ctx context.Context, branchID string, from availability.Date, days int) ([]availability.Date, error) {
	ctx, span := s.tracer.Start(ctx, "availability.open_days")
	defer span.End()

	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return nil, invalid("branch_id is required")
	}
	if err := validUUID("branch_id", branchID); err != nil {
		return nil, err
	}
	if days <= 0 || days > availability.MaxOpenDaysLookahead {
		return nil, invalid("days must be between 1 and %d", availability.MaxOpenDaysLookahead)
	}
	if from.IsZero() {
		from = s.engine.Today()
	}

	schedule, err := s.schedules.WeeklySchedule(ctx, branchID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collaborator failure")
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	return s.engine.OpenDays(from, days, schedule), nil
}

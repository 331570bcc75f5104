package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
)

const (
	branchID  = "6f1c2b8e-7a51-4d3e-9c0a-1b2c3d4e5f60"
	barberID  = "0a9b8c7d-6e5f-4a3b-8c1d-2e3f4a5b6c7d"
	serviceID = "d4c3b2a1-0f9e-4d8c-9b7a-6f5e4d3c2b1a"
	apptID    = "11111111-2222-4333-8444-555555555555"
)

var thursday = availability.Date{Year: 2026, Month: time.October, Day: 15}

type fakeSchedules struct {
	schedule availability.WeeklySchedule
	err      error
}

func (f fakeSchedules) WeeklySchedule(ctx context.Context, branchID string) (availability.WeeklySchedule, error) {
	return f.schedule, f.err
}

type fakeAppointments struct {
	records []availability.AppointmentRecord
	err     error
	calls   int
}

func (f *fakeAppointments) ListForBarberDay(ctx context.Context, branchID, barberID string, date availability.Date) ([]availability.AppointmentRecord, error) {
	f.calls++
	return f.records, f.err
}

type fakeCatalog map[string]int

func (f fakeCatalog) ServiceDuration(ctx context.Context, branchID, serviceID string) (int, error) {
	d, ok := f[serviceID]
	if !ok {
		return 0, ErrServiceNotFound
	}
	return d, nil
}

func weekdays(open, close, lunchStart, lunchEnd string) availability.WeeklySchedule {
	var s availability.WeeklySchedule
	for wd := time.Monday; wd <= time.Saturday; wd++ {
		s = append(s, availability.DaySchedule{Weekday: wd, IsOpen: true, OpenTime: open, CloseTime: close, LunchStart: lunchStart, LunchEnd: lunchEnd})
	}
	return s
}

func newService(appts *fakeAppointments, schedule availability.WeeklySchedule) *AvailabilityService {
	engine := availability.NewEngine(nil, nil)
	return NewAvailabilityService(engine, fakeSchedules{schedule: schedule}, appts, fakeCatalog{serviceID: 60}, nil)
}

// Wednesday evening so Thursday is a future date.
var wednesdayEvening = time.Date(2026, time.October, 14, 20, 0, 0, 0, availability.DefaultLocation)

func TestSlotsWithExplicitDuration(t *testing.T) {
	appts := &fakeAppointments{records: []availability.AppointmentRecord{
		{AppointmentID: apptID, BarberID: barberID, Date: thursday, StartTime: "10:00", DurationMinutes: 30, Status: availability.StatusConfirmed},
	}}
	svc := newService(appts, weekdays("09:00", "12:00", "", ""))

	res, err := svc.Slots(context.Background(), Query{
		BranchID: branchID, BarberID: barberID, Date: thursday,
		ServiceDurationMinutes: 30, Now: wednesdayEvening,
	})
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	want := []string{"09:00", "09:30", "10:30", "11:00", "11:30"}
	if !reflect.DeepEqual(res.Slots, want) {
		t.Fatalf("expected %v, got %v", want, res.Slots)
	}
	if res.ServiceDurationMinutes != 30 {
		t.Fatalf("unexpected duration %d", res.ServiceDurationMinutes)
	}
}

func TestSlotsResolvesServiceDuration(t *testing.T) {
	svc := newService(&fakeAppointments{}, weekdays("09:00", "11:00", "", ""))
	res, err := svc.Slots(context.Background(), Query{
		BranchID: branchID, BarberID: barberID, Date: thursday,
		ServiceID: serviceID, Now: wednesdayEvening,
	})
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if res.ServiceDurationMinutes != 60 {
		t.Fatalf("expected catalog duration, got %d", res.ServiceDurationMinutes)
	}
	want := []string{"09:00", "09:30", "10:00"}
	if !reflect.DeepEqual(res.Slots, want) {
		t.Fatalf("expected %v, got %v", want, res.Slots)
	}
}

func TestUnknownServiceFallsBackToDefault(t *testing.T) {
	svc := newService(&fakeAppointments{}, weekdays("09:00", "10:00", "", ""))
	res, err := svc.Slots(context.Background(), Query{
		BranchID: branchID, BarberID: barberID, Date: thursday,
		ServiceID: apptID, Now: wednesdayEvening,
	})
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if res.ServiceDurationMinutes != availability.DefaultAppointmentDurationMinutes {
		t.Fatalf("expected default duration, got %d", res.ServiceDurationMinutes)
	}
}

func TestClosedDaySkipsAppointmentLoad(t *testing.T) {
	appts := &fakeAppointments{}
	svc := newService(appts, weekdays("09:00", "18:00", "", ""))
	sunday := thursday.AddDays(3)

	res, err := svc.Slots(context.Background(), Query{
		BranchID: branchID, BarberID: barberID, Date: sunday,
		ServiceDurationMinutes: 30, Now: wednesdayEvening,
	})
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if res.Slots == nil || len(res.Slots) != 0 {
		t.Fatalf("expected empty non-nil slots, got %#v", res.Slots)
	}
	if appts.calls != 0 {
		t.Fatalf("expected no appointment load on a closed day")
	}
}

func TestSlotsValidation(t *testing.T) {
	svc := newService(&fakeAppointments{}, weekdays("09:00", "18:00", "", ""))
	cases := []struct {
		name string
		q    Query
	}{
		{"missing branch", Query{BarberID: barberID, Date: thursday, ServiceDurationMinutes: 30}},
		{"missing barber", Query{BranchID: branchID, Date: thursday, ServiceDurationMinutes: 30}},
		{"branch not uuid", Query{BranchID: "b1", BarberID: barberID, Date: thursday, ServiceDurationMinutes: 30}},
		{"missing date", Query{BranchID: branchID, BarberID: barberID, ServiceDurationMinutes: 30}},
		{"negative duration", Query{BranchID: branchID, BarberID: barberID, Date: thursday, ServiceDurationMinutes: -5}},
		{"no duration source", Query{BranchID: branchID, BarberID: barberID, Date: thursday}},
		{"bad exclude id", Query{BranchID: branchID, BarberID: barberID, Date: thursday, ServiceDurationMinutes: 30, ExcludeAppointmentID: "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Slots(context.Background(), tc.q)
			if !errors.Is(err, availability.ErrInvalidRequest) {
				t.Fatalf("expected invalid request, got %v", err)
			}
		})
	}
}

func TestCollaboratorErrorsAreNotValidationErrors(t *testing.T) {
	engine := availability.NewEngine(nil, nil)
	svc := NewAvailabilityService(engine, fakeSchedules{err: errors.New("db down")}, &fakeAppointments{}, nil, nil)
	_, err := svc.Slots(context.Background(), Query{
		BranchID: branchID, BarberID: barberID, Date: thursday, ServiceDurationMinutes: 30,
	})
	if err == nil || errors.Is(err, availability.ErrInvalidRequest) {
		t.Fatalf("expected collaborator error, got %v", err)
	}

	appts := &fakeAppointments{err: errors.New("timeout")}
	svc = newService(appts, weekdays("09:00", "18:00", "", ""))
	_, err = svc.Slots(context.Background(), Query{
		BranchID: branchID, BarberID: barberID, Date: thursday, ServiceDurationMinutes: 30,
	})
	if err == nil || errors.Is(err, availability.ErrInvalidRequest) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
}

func TestOpenDays(t *testing.T) {
	svc := newService(&fakeAppointments{}, weekdays("09:00", "18:00", "", ""))
	days, err := svc.OpenDays(context.Background(), branchID, thursday, 4)
	if err != nil {
		t.Fatalf("open days: %v", err)
	}
	want := []availability.Date{thursday, thursday.AddDays(1), thursday.AddDays(2)}
	if !reflect.DeepEqual(days, want) {
		t.Fatalf("expected %v, got %v", want, days)
	}

	for _, n := range []int{0, -1, availability.MaxOpenDaysLookahead + 1} {
		if _, err := svc.OpenDays(context.Background(), branchID, thursday, n); !errors.Is(err, availability.ErrInvalidRequest) {
			t.Fatalf("days=%d: expected invalid request, got %v", n, err)
		}
	}
	if _, err := svc.OpenDays(context.Background(), "", thursday, 3); !errors.Is(err, availability.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for missing branch, got %v", err)
	}
}

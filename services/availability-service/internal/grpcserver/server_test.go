package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/barberdesk/barberdesk/libs/grpcx"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/service"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const (
	branchID = "6f1c2b8e-7a51-4d3e-9c0a-1b2c3d4e5f60"
	barberID = "0a9b8c7d-6e5f-4a3b-8c1d-2e3f4a5b6c7d"
)

type stubSchedules struct{}

func (stubSchedules) WeeklySchedule(ctx context.Context, branchID string) (availability.WeeklySchedule, error) {
	return availability.WeeklySchedule{
		{Weekday: time.Thursday, IsOpen: true, OpenTime: "09:00", CloseTime: "11:00"},
		{Weekday: time.Friday, IsOpen: true, OpenTime: "09:00", CloseTime: "11:00"},
	}, nil
}

type stubAppointments struct{}

func (stubAppointments) ListForBarberDay(ctx context.Context, branchID, barberID string, date availability.Date) ([]availability.AppointmentRecord, error) {
	return []availability.AppointmentRecord{
		{AppointmentID: "a1", BarberID: barberID, Date: date, StartTime: "09:30", DurationMinutes: 30, Status: availability.StatusPending},
	}, nil
}

func startServer(t *testing.T) *Client {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	now := time.Date(2026, time.October, 14, 8, 0, 0, 0, availability.DefaultLocation)
	engine := availability.NewEngine(nil, logger, availability.WithClock(func() time.Time { return now }))
	svc := service.NewAvailabilityService(engine, stubSchedules{}, stubAppointments{}, nil, logger)

	srv, _ := New(NewServer(svc, logger), logger)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = Serve(srv, lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpcx.Dial(lis.Addr().String(), grpcx.DialOptions{})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hc, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if hc.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", hc.GetStatus())
	}
	return NewClient(conn)
}

func TestGetSlotsRoundTrip(t *testing.T) {
	client := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.GetSlots(ctx, &GetSlotsRequest{
		BranchID: branchID, BarberID: barberID, Date: "2026-10-15", ServiceDurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("get slots: %v", err)
	}
	want := []string{"09:00", "10:00", "10:30"}
	if !reflect.DeepEqual(resp.Slots, want) {
		t.Fatalf("expected %v, got %v", want, resp.Slots)
	}
}

func TestGetSlotsInvalidArgument(t *testing.T) {
	client := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, req := range []*GetSlotsRequest{
		{BranchID: branchID, BarberID: barberID, Date: "not-a-date", ServiceDurationMinutes: 30},
		{BranchID: branchID, BarberID: barberID, Date: "2026-10-15", ServiceDurationMinutes: -1},
		{BranchID: branchID, Date: "2026-10-15", ServiceDurationMinutes: 30},
	} {
		_, err := client.GetSlots(ctx, req)
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("expected InvalidArgument for %+v, got %v", req, err)
		}
	}
}

func TestGetOpenDaysRoundTrip(t *testing.T) {
	client := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.GetOpenDays(ctx, &GetOpenDaysRequest{BranchID: branchID, Days: 7})
	if err != nil {
		t.Fatalf("get open days: %v", err)
	}
	want := []string{"2026-10-15", "2026-10-16"}
	if !reflect.DeepEqual(resp.OpenDays, want) {
		t.Fatalf("expected %v, got %v", want, resp.OpenDays)
	}
}

func TestGetOpenDaysDefaultsLookahead(t *testing.T) {
	client := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.GetOpenDays(ctx, &GetOpenDaysRequest{BranchID: branchID, From: "2026-10-14"})
	if err != nil {
		t.Fatalf("get open days without days: %v", err)
	}
	// Thursdays and Fridays within 31 days of Wednesday 2026-10-14.
	if len(resp.OpenDays) != 10 || resp.OpenDays[0] != "2026-10-15" || resp.OpenDays[9] != "2026-11-13" {
		t.Fatalf("unexpected open days %v", resp.OpenDays)
	}

	_, err = client.GetOpenDays(ctx, &GetOpenDaysRequest{BranchID: branchID, Days: -1})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for negative days, got %v", err)
	}
}

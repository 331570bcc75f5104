package grpcserver

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/barberdesk/barberdesk/libs/grpcx"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/service"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const ServiceName = "barberdesk.availability.v1.AvailabilityService"

type GetSlotsRequest struct {
	BranchID               string `json:"branch_id"`
	BarberID               string `json:"barber_id"`
	Date                   string `json:"date"`
	ServiceDurationMinutes int    `json:"service_duration_minutes,omitempty"`
	ServiceID              string `json:"service_id,omitempty"`
	ExcludeAppointmentID   string `json:"exclude_appointment_id,omitempty"`
}

type GetSlotsResponse struct {
	Date                   string   `json:"date"`
	BarberID               string   `json:"barber_id"`
	ServiceDurationMinutes int      `json:"service_duration_minutes"`
	Slots                  []string `json:"slots"`
}

type GetOpenDaysRequest struct {
	BranchID string `json:"branch_id"`
	From     string `json:"from,omitempty"`
	Days     int    `json:"days,omitempty"`
}

type GetOpenDaysResponse struct {
	OpenDays []string `json:"open_days"`
}

// AvailabilityServer is the server API of ServiceName.
type AvailabilityServer interface {
	GetSlots(ctx context.Context, req *GetSlotsRequest) (*GetSlotsResponse, error)
	GetOpenDays(ctx context.Context, req *GetOpenDaysRequest) (*GetOpenDaysResponse, error)
}

type Server struct {
	svc    *service.AvailabilityService
	logger *slog.Logger
}

func NewServer(svc *service.AvailabilityService, logger *slog.Logger) *Server {
	return &Server{svc: svc, logger: logger}
}

func (s *Server) GetSlots(ctx context.Context, req *GetSlotsRequest) (*GetSlotsResponse, error) {
	date, err := availability.ParseDate(req.Date)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid date, expected YYYY-MM-DD")
	}
	res, err := s.svc.Slots(ctx, service.Query{
		BranchID:               req.BranchID,
		BarberID:               req.BarberID,
		Date:                   date,
		ServiceDurationMinutes: req.ServiceDurationMinutes,
		ServiceID:              req.ServiceID,
		ExcludeAppointmentID:   req.ExcludeAppointmentID,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &GetSlotsResponse{
		Date:                   res.Date.String(),
		BarberID:               res.BarberID,
		ServiceDurationMinutes: res.ServiceDurationMinutes,
		Slots:                  res.Slots,
	}, nil
}

func (s *Server) GetOpenDays(ctx context.Context, req *GetOpenDaysRequest) (*GetOpenDaysResponse, error) {
	var from availability.Date
	if req.From != "" {
		d, err := availability.ParseDate(req.From)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid from, expected YYYY-MM-DD")
		}
		from = d
	}
	n := req.Days
	if n == 0 {
		n = service.DefaultOpenDays
	}
	days, err := s.svc.OpenDays(ctx, req.BranchID, from, n)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.String())
	}
	return &GetOpenDaysResponse{OpenDays: out}, nil
}

func (s *Server) toStatus(ctx context.Context, err error) error {
	if errors.Is(err, availability.ErrInvalidRequest) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	s.logger.ErrorContext(ctx, "availability lookup failed", "request_id", grpcx.RequestIDFromContext(ctx), "err", err)
	return status.Error(codes.Unavailable, "failed to load availability")
}

func getSlotsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetSlotsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AvailabilityServer).GetSlots(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetSlots"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(AvailabilityServer).GetSlots(ctx, req.(*GetSlotsRequest))
	})
}

func getOpenDaysHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOpenDaysRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AvailabilityServer).GetOpenDays(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetOpenDays"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(AvailabilityServer).GetOpenDays(ctx, req.(*GetOpenDaysRequest))
	})
}

// ServiceDesc describes ServiceName for grpc.Server.RegisterService. Messages travel
// with the JSON codec (content-subtype "json").
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AvailabilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSlots", Handler: getSlotsHandler},
		{MethodName: "GetOpenDays", Handler: getOpenDaysHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "barberdesk/availability/v1/availability.json",
}

// New builds a grpc.Server exposing the availability API and the standard health service.
func New(impl AvailabilityServer, logger *slog.Logger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcx.UnaryServerRequestIDInterceptor(),
			grpcx.UnaryServerLoggingInterceptor(logger),
		),
	)
	srv.RegisterService(&ServiceDesc, impl)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// Serve blocks until the listener fails or the server is stopped.
func Serve(srv *grpc.Server, lis net.Listener) error {
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

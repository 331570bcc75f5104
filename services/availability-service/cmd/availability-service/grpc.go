package main

import (
	"context"
	"log/slog"
	"net"

	"github.com/barberdesk/barberdesk/services/availability-service/internal/grpcserver"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/service"
)

func startGrpcServer(ctx context.Context, logger *slog.Logger, port string, svc *service.AvailabilityService) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	srv, hs := grpcserver.New(grpcserver.NewServer(svc, logger), logger)

	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := grpcserver.Serve(srv, lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		hs.Shutdown()
		srv.GracefulStop()
	}()

	return nil
}

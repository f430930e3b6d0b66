// Package grpcapi поднимает служебный gRPC-листенер: health и reflection.
package grpcapi

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName: имя, под которым публикуется статус ядра бронирования.
const ServiceName = "temple.booking.v1.BookingEngine"

// Pinger: зависимость, от которой зависит готовность (БД).
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	GRPC   *grpc.Server
	Health *health.Server
}

func NewServer(opts ...grpc.ServerOption) *Server {
	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{GRPC: srv, Health: hs}
}

// Watch опрашивает pinger и выставляет статус, пока не отменён ctx.
func (s *Server) Watch(ctx context.Context, p Pinger, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	s.check(ctx, p, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx, p, logger)
		}
	}
}

func (s *Server) check(ctx context.Context, p Pinger, logger *slog.Logger) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := p.Ping(pingCtx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		if logger != nil {
			logger.Warn("health check failed", "error", err)
		}
	}
	s.Health.SetServingStatus("", status)
	s.Health.SetServingStatus(ServiceName, status)
}

// Stop переводит статус в NOT_SERVING и дожидается активных вызовов.
func (s *Server) Stop() {
	s.Health.Shutdown()
	s.GRPC.GracefulStop()
}

// Package grpcserver gRPC-сервер со стандартным health-сервисом,
// статус которого следует за доступностью хранилища.
package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName имя, под которым публикуется статус сервиса закладок.
const ServiceName = "bookmarks.v1.Bookmarks"

const defaultInterval = 10 * time.Second

// Pinger проверка доступности хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

type GRPCServer struct {
	server   *grpc.Server
	health   *health.Server
	pinger   Pinger
	logger   *zap.Logger
	interval time.Duration
}

// Option настраивает GRPCServer.
type Option func(*GRPCServer)

// WithInterval период проверки хранилища.
func WithInterval(d time.Duration) Option {
	return func(s *GRPCServer) {
		if d > 0 {
			s.interval = d
		}
	}
}

func NewGRPCServer(pinger Pinger, logger *zap.Logger, opts ...Option) *GRPCServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &GRPCServer{
		health:   health.NewServer(),
		pinger:   pinger,
		logger:   logger,
		interval: defaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = grpc.NewServer(grpc.UnaryInterceptor(UnaryLogger(logger)))
	healthpb.RegisterHealthServer(s.server, s.health)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Serve принимает соединения до Stop.
func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Check один раз пингует хранилище и обновляет статус.
func (s *GRPCServer) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn("Store ping failed", zap.Error(err))
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

// Watch проверяет хранилище с периодом interval до отмены ctx.
func (s *GRPCServer) Watch(ctx context.Context) {
	s.Check(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Stop переводит статус в NOT_SERVING и дожидается завершения запросов.
func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func (s *GRPCServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// UnaryLogger пишет в лог каждый унарный вызов.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("gRPC Request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

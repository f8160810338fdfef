// Package server composes the gRPC surface of the model server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	modelserverv1 "github.com/cozy-creator/model-server/api/modelserver/v1"
	"github.com/cozy-creator/model-server/internal/config"
	"github.com/cozy-creator/model-server/internal/dispatch"
	"github.com/cozy-creator/model-server/internal/registry"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-check name of the inference service.
var ServiceName = modelserverv1.Inferencer_ServiceDesc.ServiceName

type Server struct {
	listenAddr string
	listener   net.Listener
	registry   *registry.Cache
	grpc       *grpc.Server
	health     *health.Server
	logger     *zap.Logger
}

type Option func(*Server)

// WithListener serves on lis instead of binding the configured address.
func WithListener(lis net.Listener) Option {
	return func(s *Server) {
		s.listener = lis
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(cfg *config.Config, cache *registry.Cache, gateway *dispatch.Gateway, opts ...Option) *Server {
	s := &Server{
		listenAddr: cfg.Addr(),
		registry:   cache,
		health:     health.NewServer(),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.grpc = grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryTracing(s.logger)),
		grpc.ChainStreamInterceptor(StreamTracing(s.logger)),
	)

	modelserverv1.RegisterInferencerServer(s.grpc, NewInferencer(cache, gateway, s.logger))
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return s
}

// Start loads the registry, marks the server healthy and serves until Stop.
// A failed initial load is logged and the server starts with an empty
// registry.
func (s *Server) Start(ctx context.Context) error {
	if err := s.registry.Refresh(ctx); err != nil {
		s.logger.Error("initial registry load failed", zap.Error(err))
	}

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	lis := s.listener
	if lis == nil {
		var err error
		if lis, err = net.Listen("tcp", s.listenAddr); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
		}
	}

	s.logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}

// Stop marks the server unhealthy and drains in-flight calls. If ctx ends
// first, remaining calls are cut off.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping gRPC server")
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		<-done
		return ctx.Err()
	}
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ReadinessCheck reports whether the service's dependencies are reachable.
type ReadinessCheck func(ctx context.Context) error

// Server holds references to both a gRPC server and an HTTP server. The gRPC
// side only serves grpc.health.v1.Health.
type Server struct {
	grpcServer   *grpc.Server
	health       *health.Server
	httpServer   *http.Server
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string

	ready         ReadinessCheck
	readyInterval time.Duration
	done          chan struct{}
	stopOnce      sync.Once
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	grpcServer := grpc.NewServer(grpcOpts...)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		httpServer: &http.Server{
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:       logger.Named("server"),
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
		done:         make(chan struct{}),
	}
}

// SetReadinessCheck makes the health status follow check, evaluated when the
// gRPC server starts and then every interval until Stop. Without a check the
// service reports SERVING once it listens.
func (s *Server) SetReadinessCheck(check ReadinessCheck, interval time.Duration) {
	s.ready = check
	s.readyInterval = interval
}

// RegisterHTTPHandler installs the handler served on the HTTP endpoint.
func (s *Server) RegisterHTTPHandler(handler http.Handler) {
	s.httpServer.Handler = handler
	s.httpServer.Addr = s.httpEndpoint
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	if s.httpServer.Handler == nil {
		return errors.New("no HTTP handler registered")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen error: %w", err)
			return
		}
		s.updateHealth()
		go s.watchReadiness()
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop marks the service as not serving, then gracefully shuts down both servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")
	s.stopOnce.Do(func() { close(s.done) })
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Servers stopped")
}

// updateHealth sets the overall health status from the readiness check.
func (s *Server) updateHealth() {
	status := healthpb.HealthCheckResponse_SERVING
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.Warn("readiness check failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
}

func (s *Server) watchReadiness() {
	if s.ready == nil || s.readyInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.readyInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.updateHealth()
		}
	}
}

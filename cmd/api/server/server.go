package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	ginhandler "user-admin-service/internal/adapter/gin/handler"
	"user-admin-service/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
	GRPC   *grpc.Server
	Health *health.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, handler *ginhandler.UserHandler) *Server {
	grpcServer, healthServer := SetupGRPC(cfg.Logger.ServiceName, l)

	return &Server{
		Config: cfg,
		Logger: l,
		Gin:    SetupGinServer(cfg, handler, l),
		GRPC:   grpcServer,
		Health: healthServer,
	}
}

// Run serves the REST API and the gRPC health endpoint until ctx is cancelled,
// then shuts both down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := listen(ctx, s.httpAddress())
	if err != nil {
		return fmt.Errorf("failed to listen for HTTP: %w", err)
	}
	grpcLis, err := listen(ctx, s.grpcAddress())
	if err != nil {
		_ = httpLis.Close()
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Logger.Info("Gin REST API running", zap.String("address", httpLis.Addr().String()))
		if err := s.Gin.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gin server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("gRPC health server running", zap.String("address", grpcLis.Addr().String()))
		if err := s.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

// shutdown stops both servers; in-flight HTTP requests get the configured grace period
func (s *Server) shutdown() error {
	s.Logger.Info("starting graceful shutdown", zap.Duration("timeout", s.Config.App.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.App.ShutdownTimeout)
	defer cancel()

	s.Health.Shutdown()

	var errs []error
	if err := s.Gin.Shutdown(shutdownCtx); err != nil {
		s.Logger.Error("failed to shutdown Gin server", zap.Error(err))
		errs = append(errs, fmt.Errorf("gin shutdown: %w", err))
	}

	stopped := make(chan struct{})
	go func() {
		s.GRPC.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		s.GRPC.Stop()
	}

	return errors.Join(errs...)
}

func listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{}
	return lc.Listen(ctx, "tcp", addr)
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}

// httpAddress returns the HTTP server address
func (s *Server) httpAddress() string {
	return ":" + s.Config.App.HTTPPort
}

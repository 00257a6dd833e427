package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/astrobookings/config"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported by the gRPC health service.
const ServiceName = "astrobookings"

const defaultShutdownTimeout = 5 * time.Second

type Servers struct {
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
	cfg        *config.Config
}

func NewServers(cfg *config.Config, handler http.Handler, logger *slog.Logger) *Servers {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)

	return &Servers{
		httpServer: &http.Server{Addr: cfg.HTTP.Address, Handler: handler},
		grpcServer: grpcSrv,
		health:     healthSrv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run serves HTTP and gRPC until ctx is canceled or either server fails, then
// shuts both down.
func (s *Servers) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.cfg.HTTP.Address)
	if err != nil {
		return fmt.Errorf("listen HTTP %s: %w", s.cfg.HTTP.Address, err)
	}
	grpcLis, err := net.Listen("tcp", s.cfg.GRPC.Address)
	if err != nil {
		httpLis.Close()
		return fmt.Errorf("listen gRPC %s: %w", s.cfg.GRPC.Address, err)
	}
	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve is Run over listeners the caller already opened.
func (s *Servers) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", "address", httpLis.Addr().String())
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.logger.Info("grpc server listening", "address", grpcLis.Addr().String())
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
		if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down servers")
		s.health.Shutdown()

		timeout := s.cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"goflare.io/tax"
	"goflare.io/tax/config"
	"goflare.io/tax/handlers"
)

type Server struct {
	echo       *echo.Echo
	grpc       *grpc.Server
	health     *health.Server
	Addr       string
	HealthAddr string
	Tax        tax.Tax
	TaxRate    handlers.TaxRateHandler
	logger     *zap.Logger
}

func NewServer(
	appConfig *config.Config,
	Tax tax.Tax,
	TaxRate handlers.TaxRateHandler,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	s := &Server{
		echo:       e,
		health:     health.NewServer(),
		Addr:       appConfig.Server.Addr,
		HealthAddr: appConfig.Server.HealthAddr,
		Tax:        Tax,
		TaxRate:    TaxRate,
		logger:     logger,
	}
	s.registerMiddlewares()
	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts listening for connections on the provided address.
func (s *Server) Start(address string) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s.echo.Start(address)
}

// Run starts the HTTP server, and the gRPC health service when a health address
// is configured, then blocks until SIGINT or SIGTERM. Shutdown is given 5 seconds.
func (s *Server) Run(address string) error {
	if err := s.startHealth(); err != nil {
		return err
	}

	go func() {
		if err := s.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("HTTP server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.Shutdown(ctx)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}

	err := s.echo.Shutdown(ctx)
	s.Tax.Close()
	return err
}

func (s *Server) startHealth() error {
	if s.HealthAddr == "" {
		return nil
	}

	lis, err := net.Listen("tcp", s.HealthAddr)
	if err != nil {
		return err
	}

	s.grpc = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpc, s.health)

	go func() {
		if err := s.grpc.Serve(lis); err != nil {
			s.logger.Error("gRPC health server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("gRPC health server listening", zap.String("addr", s.HealthAddr))
	return nil
}

func (s *Server) registerMiddlewares() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				zap.String("method", v.Method),
				zap.String("path", v.URIPath),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
}

func (s *Server) registerRoutes() {
	s.echo.GET("/tax/rate", s.TaxRate.GetTaxRate)
	s.echo.POST("/tax/rate", s.TaxRate.CalculateTaxRate)
	s.echo.POST("/tax/rates", s.TaxRate.CalculateTaxRates)
	s.echo.GET("/tax/configure", s.TaxRate.GetConfiguration)
}

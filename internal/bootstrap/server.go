package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/airfare/api"
	"github.com/Domenick1991/airfare/config"
	"github.com/Domenick1991/airfare/internal/service/booking"
	"github.com/Domenick1991/airfare/internal/service/flights"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const swaggerDoc = "airline.swagger.json"

// HealthCheck checks one dependency. Name shows up in the /health body.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
	log        *zap.Logger
}

// Run starts the gRPC health server and the HTTP API and blocks until ctx is
// canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, checks ...HealthCheck) error {
	s := newServers(cfg, log, flightSvc, bookingSvc, checks)

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info("servers started", zap.String("http", cfg.HTTP.Address), zap.String("grpc", cfg.GRPC.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, log *zap.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, checks []HealthCheck) *Servers {
	if log == nil {
		log = zap.NewNop()
	}

	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcSrv)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg.HTTP, log, flightSvc, bookingSvc, checks...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: httpSrv,
		log:        log,
	}
}

// NewRouter wires every HTTP route onto a gin engine.
func NewRouter(cfg config.HTTPConfig, log *zap.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, checks ...HealthCheck) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/health", healthHandler(checks))

	flightHandler := api.NewFlightHandler(flightSvc)
	flightHandler.Register(router.Group("/flights"))
	flightHandler.RegisterSearch(router)
	flightHandler.RegisterProviderFeed(router)

	bookingHandler := api.NewBookingHandler(bookingSvc)
	bookingHandler.Register(router.Group("/bookings"))
	bookingHandler.RegisterLegacy(router.Group("/legacy"))

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/"+swaggerDoc))))
	}
	return router
}

func healthHandler(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ok"}
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[check.Name] = err.Error()
				continue
			}
			body[check.Name] = "ok"
		}
		c.JSON(status, body)
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			log.Error("request failed", fields...)
			return
		}
		log.Debug("request", fields...)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airfare/config"
	"github.com/Domenick1991/airfare/internal/bootstrap"
	"github.com/Domenick1991/airfare/internal/cache"
	"github.com/Domenick1991/airfare/internal/locator"
	"github.com/Domenick1991/airfare/internal/logger"
	"github.com/Domenick1991/airfare/internal/market"
	"github.com/Domenick1991/airfare/internal/payment"
	"github.com/Domenick1991/airfare/internal/service/booking"
	"github.com/Domenick1991/airfare/internal/service/flights"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	producer, closeProducer, err := bootstrap.OpenPublisher(cfg, zl)
	if err != nil {
		zl.Fatal("open event publisher", zap.Error(err))
	}
	defer closeProducer()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.CacheTTL())

	flightService := flights.NewFlightService(store.Flights, store.Fares, store.Tx,
		flights.WithCache(redisCache),
		flights.WithQuoteRecording(cfg.Pricing.QuotesRecorded()),
		flights.WithLogger(zl.Named("flights")),
	)
	bookingService := booking.NewBookingService(store.Tx, store.Bookings, store.Legacy,
		booking.WithCache(redisCache),
		booking.WithPublisher(producer, cfg.Kafka.BookingEventsTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithSettler(payment.NewWeightedSettler(cfg.Booking.PaymentSuccessWeight, cfg.Booking.PaymentFailureWeight)),
		booking.WithLocatorGenerator(locator.NewGenerator(locator.WithMaxAttempts(cfg.Booking.LocatorAttempts))),
		booking.WithLogger(zl.Named("booking")),
	)

	// In-memory state is invisible to the worker process, so the market runs here.
	if store.InProcess {
		sim := market.NewSimulator(store.Flights, flightService, zl.Named("market"), cfg.Worker.MarketInterval(), nil)
		go sim.Start(ctx)
	}

	checks := []bootstrap.HealthCheck{
		store.Health,
		{Name: "redis", Check: redisCache.Ping},
	}
	if err := bootstrap.Run(ctx, cfg, zl, flightService, bookingService, checks...); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}

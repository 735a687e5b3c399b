package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Domenick1991/airfare/config"
	"github.com/Domenick1991/airfare/internal/bootstrap"
	"github.com/Domenick1991/airfare/internal/cache"
	"github.com/Domenick1991/airfare/internal/email"
	"github.com/Domenick1991/airfare/internal/kafka"
	"github.com/Domenick1991/airfare/internal/logger"
	"github.com/Domenick1991/airfare/internal/market"
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

	var wg sync.WaitGroup

	if cfg.Database.Driver == config.DriverPostgres {
		store, closeStore, err := bootstrap.OpenStore(ctx, cfg, zl)
		if err != nil {
			zl.Fatal("open store", zap.Error(err))
		}
		defer closeStore()

		flightService := flights.NewFlightService(store.Flights, store.Fares, store.Tx,
			flights.WithCache(cache.NewRedisCache(cfg.Redis, cfg.Booking.CacheTTL())),
			flights.WithLogger(zl.Named("flights")),
		)
		sim := market.NewSimulator(store.Flights, flightService, zl.Named("market"), cfg.Worker.MarketInterval(), nil)

		wg.Add(1)
		go func() {
			defer wg.Done()
			sim.Start(ctx)
		}()
	} else {
		zl.Info("market simulator runs inside the app for the memory driver")
	}

	if cfg.Events.Driver == config.EventsKafka && cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zl.Named("consumer"))
		defer consumer.Close()
		sender := email.NewSender(zl.Named("email"))

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Consume(ctx, sender.Send); err != nil {
				zl.Error("consumer stopped", zap.Error(err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	zl.Info("shutting down worker")
	wg.Wait()
}

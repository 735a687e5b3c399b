package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airfare/config"
	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/Domenick1991/airfare/internal/events"
	"github.com/Domenick1991/airfare/internal/kafka"
	"github.com/Domenick1991/airfare/internal/rabbitmq"
	"github.com/Domenick1991/airfare/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store bundles the repositories of one backend.
type Store struct {
	Tx       repository.TxManager
	Flights  repository.FlightRepository
	Bookings repository.BookingRepository
	Legacy   repository.LegacyReservationRepository
	Fares    repository.FareHistoryRepository
	Health   HealthCheck
	// InProcess is true when state lives only in this process.
	InProcess bool
}

// OpenStore connects the configured backend. The returned func releases it.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, func(), error) {
	seeds := make([]domain.Flight, 0, len(cfg.SeedFlights))
	for _, s := range cfg.SeedFlights {
		seeds = append(seeds, s.Flight())
	}

	if cfg.Database.Driver == config.DriverMemory {
		mem := repository.NewMemoryStore()
		for _, f := range seeds {
			mem.AddFlight(f)
		}
		log.Info("using in-memory store", zap.Int("flights", len(seeds)))
		return &Store{
			Tx:        mem,
			Flights:   mem.Flights(),
			Bookings:  mem.Bookings(),
			Legacy:    mem.LegacyReservations(),
			Fares:     mem.FareHistory(),
			Health:    HealthCheck{Name: "store", Check: func(context.Context) error { return nil }},
			InProcess: true,
		}, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := repository.SeedFlights(ctx, pool, seeds); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("schema applied", zap.Int("seed_flights", len(seeds)))
	}

	return &Store{
		Tx:       repository.NewTxManager(pool),
		Flights:  repository.NewFlightRepository(pool),
		Bookings: repository.NewBookingRepository(pool),
		Legacy:   repository.NewLegacyReservationRepository(pool),
		Fares:    repository.NewFareHistoryRepository(pool),
		Health:   HealthCheck{Name: "postgres", Check: pool.Ping},
	}, pool.Close, nil
}

type nopCloser struct{ events.Nop }

func (nopCloser) Close() error { return nil }

type publisherCloser interface {
	events.Publisher
	Close() error
}

// OpenPublisher returns the booking event transport selected by
// events.driver.
func OpenPublisher(cfg *config.Config, log *zap.Logger) (events.Publisher, func(), error) {
	var p publisherCloser
	switch cfg.Events.Driver {
	case config.EventsKafka:
		p = kafka.NewProducer(cfg.Kafka.Brokers, log)
	case config.EventsRabbitMQ:
		rp, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, log)
		if err != nil {
			return nil, nil, err
		}
		p = rp
	default:
		p = nopCloser{}
	}

	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn("close event publisher", zap.Error(err))
		}
	}, nil
}

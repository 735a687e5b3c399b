package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/airfare/config"
	"github.com/Domenick1991/airfare/internal/events"
	"github.com/Domenick1991/airfare/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenStore_MemorySeeds(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		SeedFlights: []config.FlightSeed{
			{Code: "ai101", Origin: "DEL", Destination: "BOM", DepartureTime: time.Now().Add(time.Hour), Capacity: 3, BaseFareCents: 100},
		},
	}

	store, closeFn, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	assert.True(t, store.InProcess)
	f, err := store.Flights.GetByCode(context.Background(), "AI101")
	require.NoError(t, err)
	assert.Equal(t, 3, f.AvailableSeats)
	assert.NoError(t, store.Health.Check(context.Background()))
}

func TestOpenPublisher(t *testing.T) {
	none, closeNone, err := OpenPublisher(&config.Config{Events: config.EventsConfig{Driver: config.EventsNone}}, zap.NewNop())
	require.NoError(t, err)
	defer closeNone()
	assert.NoError(t, none.Publish(context.Background(), "t", "k", events.BookingEvent{}))

	k, closeKafka, err := OpenPublisher(&config.Config{
		Events: config.EventsConfig{Driver: config.EventsKafka},
		Kafka:  config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}},
	}, zap.NewNop())
	require.NoError(t, err)
	defer closeKafka()
	assert.IsType(t, &kafka.Producer{}, k)
}

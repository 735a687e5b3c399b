package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	EventsKafka    = "kafka"
	EventsRabbitMQ = "rabbitmq"
	EventsNone     = "none"
)

type Config struct {
	HTTP        HTTPConfig     `yaml:"http"`
	GRPC        GRPCConfig     `yaml:"grpc"`
	Database    DatabaseConfig `yaml:"database"`
	Redis       RedisConfig    `yaml:"redis"`
	Kafka       KafkaConfig    `yaml:"kafka"`
	RabbitMQ    RabbitMQConfig `yaml:"rabbitmq"`
	Events      EventsConfig   `yaml:"events"`
	Booking     BookingConfig  `yaml:"booking"`
	Pricing     PricingConfig  `yaml:"pricing"`
	Worker      WorkerConfig   `yaml:"worker"`
	Log         LogConfig      `yaml:"log"`
	SeedFlights []FlightSeed   `yaml:"seed_flights"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

// EventsConfig selects the transport booking events are published on.
type EventsConfig struct {
	Driver string `yaml:"driver"`
}

type BookingConfig struct {
	FlightsCacheTTL      int `yaml:"flights_cache_ttl_seconds"`
	PaymentSuccessWeight int `yaml:"payment_success_weight"`
	PaymentFailureWeight int `yaml:"payment_failure_weight"`
	LocatorAttempts      int `yaml:"locator_attempts"`
}

func (b BookingConfig) CacheTTL() time.Duration {
	return time.Duration(b.FlightsCacheTTL) * time.Second
}

type PricingConfig struct {
	RecordQuotes *bool `yaml:"record_quotes"`
}

// QuotesRecorded reports whether a price quote appends a fare history row.
// Unset means yes.
func (p PricingConfig) QuotesRecorded() bool {
	return p.RecordQuotes == nil || *p.RecordQuotes
}

type WorkerConfig struct {
	MarketIntervalSeconds int `yaml:"market_interval_seconds"`
}

func (w WorkerConfig) MarketInterval() time.Duration {
	return time.Duration(w.MarketIntervalSeconds) * time.Second
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FlightSeed describes a flight preloaded into the in-memory store.
type FlightSeed struct {
	Code           string    `yaml:"code"`
	Operator       string    `yaml:"operator"`
	Origin         string    `yaml:"origin"`
	Destination    string    `yaml:"destination"`
	DepartureTime  time.Time `yaml:"departure_time"`
	ArrivalTime    time.Time `yaml:"arrival_time"`
	Capacity       int       `yaml:"capacity"`
	AvailableSeats *int      `yaml:"available_seats"`
	BaseFareCents  int64     `yaml:"base_fare_cents"`
}

func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and fills defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DATABASE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_PORT %q: %w", v, err)
		}
		c.Database.Port = port
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := os.Getenv("EVENTS_DRIVER"); v != "" {
		c.Events.Driver = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Events.Driver == "" {
		c.Events.Driver = EventsKafka
	}
	if c.Booking.FlightsCacheTTL == 0 {
		c.Booking.FlightsCacheTTL = 30
	}
	if c.Booking.PaymentSuccessWeight == 0 && c.Booking.PaymentFailureWeight == 0 {
		c.Booking.PaymentSuccessWeight = 2
		c.Booking.PaymentFailureWeight = 1
	}
	if c.Booking.LocatorAttempts == 0 {
		c.Booking.LocatorAttempts = 10
	}
	if c.Worker.MarketIntervalSeconds == 0 {
		c.Worker.MarketIntervalSeconds = 300
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Events.Driver {
	case EventsKafka, EventsRabbitMQ, EventsNone:
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}
	if c.Booking.PaymentSuccessWeight < 0 || c.Booking.PaymentFailureWeight < 0 {
		return errors.New("payment weights must not be negative")
	}
	if c.Booking.FlightsCacheTTL < 1 {
		return fmt.Errorf("booking.flights_cache_ttl_seconds must be positive, got %d", c.Booking.FlightsCacheTTL)
	}
	if c.Booking.LocatorAttempts < 1 {
		return fmt.Errorf("booking.locator_attempts must be positive, got %d", c.Booking.LocatorAttempts)
	}
	if c.Worker.MarketIntervalSeconds < 1 {
		return fmt.Errorf("worker.market_interval_seconds must be positive, got %d", c.Worker.MarketIntervalSeconds)
	}
	for _, f := range c.SeedFlights {
		if f.Code == "" || f.Capacity <= 0 {
			return fmt.Errorf("seed flight %q: code and positive capacity are required", f.Code)
		}
		if f.AvailableSeats != nil && (*f.AvailableSeats < 0 || *f.AvailableSeats > f.Capacity) {
			return fmt.Errorf("seed flight %q: available_seats outside [0, capacity]", f.Code)
		}
	}
	return nil
}

// Flight converts the seed into a domain flight. Availability defaults to
// full capacity.
func (f FlightSeed) Flight() domain.Flight {
	available := f.Capacity
	if f.AvailableSeats != nil {
		available = *f.AvailableSeats
	}
	return domain.Flight{
		Code:           strings.ToUpper(f.Code),
		Operator:       f.Operator,
		Origin:         f.Origin,
		Destination:    f.Destination,
		DepartureTime:  f.DepartureTime,
		ArrivalTime:    f.ArrivalTime,
		Capacity:       f.Capacity,
		AvailableSeats: available,
		BaseFareCents:  f.BaseFareCents,
	}
}

package flights

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/Domenick1991/airfare/internal/pricing"
	"github.com/Domenick1991/airfare/internal/repository"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByCode(ctx context.Context, code string) (*domain.Flight, error)
	Search(ctx context.Context, q domain.FlightSearch) ([]domain.FlightOffer, error)
	Quote(ctx context.Context, code string) (*domain.Quote, error)
	FareHistory(ctx context.Context, code string, limit int) ([]domain.FareChange, error)
	ApplyMarketPerturbation(ctx context.Context, code string, delta int) (*domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type Pricer interface {
	Price(baseCents int64, seatsAvailable, capacity int, departure, now time.Time) int64
}

type FlightService struct {
	repo  repository.FlightRepository
	fares repository.FareHistoryRepository
	tx    repository.TxManager
	cache FlightCache

	pricer       Pricer
	recordQuotes bool
	log          *zap.Logger
	now          func() time.Time
}

type Option func(*FlightService)

func WithCache(c FlightCache) Option {
	return func(s *FlightService) { s.cache = c }
}

func WithPricer(p Pricer) Option {
	return func(s *FlightService) {
		if p != nil {
			s.pricer = p
		}
	}
}

// WithQuoteRecording controls whether Quote appends a fare history row.
func WithQuoteRecording(on bool) Option {
	return func(s *FlightService) { s.recordQuotes = on }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *FlightService) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *FlightService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewFlightService(repo repository.FlightRepository, fares repository.FareHistoryRepository, tx repository.TxManager, opts ...Option) *FlightService {
	s := &FlightService{
		repo:         repo,
		fares:        fares,
		tx:           tx,
		pricer:       pricing.NewModel(nil),
		recordQuotes: true,
		log:          zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("failed to cache flights", zap.Error(err))
		}
	}
	return flights, nil
}

func (s *FlightService) GetByCode(ctx context.Context, code string) (*domain.Flight, error) {
	return s.repo.GetByCode(ctx, normalizeCode(code))
}

// Search prices every matching flight at its current availability. Prices
// are advisory; CreateBooking reprices under the row lock.
func (s *FlightService) Search(ctx context.Context, q domain.FlightSearch) ([]domain.FlightOffer, error) {
	switch q.Sort {
	case domain.SortNone, domain.SortPrice, domain.SortDuration:
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidInput, q.Sort)
	}

	found, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	now := s.now()
	offers := make([]domain.FlightOffer, 0, len(found))
	for _, f := range found {
		offers = append(offers, domain.FlightOffer{
			Flight:            f,
			DynamicPriceCents: s.price(f, now),
			DurationMinutes:   f.DurationMinutes(),
		})
	}

	switch q.Sort {
	case domain.SortPrice:
		sort.SliceStable(offers, func(i, j int) bool { return offers[i].DynamicPriceCents < offers[j].DynamicPriceCents })
	case domain.SortDuration:
		sort.SliceStable(offers, func(i, j int) bool { return offers[i].DurationMinutes < offers[j].DurationMinutes })
	}
	return offers, nil
}

// Quote returns the current dynamic price and, unless disabled, records it
// in the fare history.
func (s *FlightService) Quote(ctx context.Context, code string) (*domain.Quote, error) {
	f, err := s.repo.GetByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		FlightCode:        f.Code,
		BaseFareCents:     f.BaseFareCents,
		DynamicPriceCents: s.price(*f, s.now()),
	}
	if s.recordQuotes {
		change := &domain.FareChange{FlightID: f.ID, OldPriceCents: f.BaseFareCents, NewPriceCents: quote.DynamicPriceCents}
		if err := s.fares.Append(ctx, change); err != nil {
			return nil, fmt.Errorf("record fare history: %w", err)
		}
	}
	return quote, nil
}

func (s *FlightService) FareHistory(ctx context.Context, code string, limit int) ([]domain.FareChange, error) {
	f, err := s.repo.GetByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.fares.ListByFlight(ctx, f.ID, limit)
}

// ApplyMarketPerturbation shifts the flight's availability by delta under
// the flight row lock. The result is clamped to [0, capacity - held] so
// seats held by bookings are never handed out twice. A fare history row is
// written when availability actually changes.
func (s *FlightService) ApplyMarketPerturbation(ctx context.Context, code string, delta int) (*domain.Flight, error) {
	var (
		result  *domain.Flight
		changed bool
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		f, err := tx.GetFlightForUpdate(ctx, normalizeCode(code))
		if err != nil {
			return err
		}
		held, err := tx.HeldSeats(ctx, f.ID)
		if err != nil {
			return err
		}

		ceiling := max(f.Capacity-len(held), 0)
		next := min(max(f.AvailableSeats+delta, 0), ceiling)
		result = f
		if next == f.AvailableSeats {
			return nil
		}

		if err := tx.SetAvailableSeats(ctx, f.ID, next); err != nil {
			return err
		}
		updated := *f
		updated.AvailableSeats = next
		change := &domain.FareChange{
			FlightID:      f.ID,
			OldPriceCents: f.BaseFareCents,
			NewPriceCents: s.price(updated, s.now()),
		}
		if err := tx.AppendFareChange(ctx, change); err != nil {
			return err
		}
		result = &updated
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Debug("market perturbation applied",
			zap.String("flight", result.Code),
			zap.Int("delta", delta),
			zap.Int("available_seats", result.AvailableSeats),
		)
		if s.cache != nil {
			if err := s.cache.InvalidateFlights(ctx); err != nil {
				s.log.Warn("failed to invalidate flights cache", zap.Error(err))
			}
		}
	}
	return result, nil
}

func (s *FlightService) price(f domain.Flight, now time.Time) int64 {
	if f.Capacity <= 0 {
		return f.BaseFareCents
	}
	return s.pricer.Price(f.BaseFareCents, f.AvailableSeats, f.Capacity, f.DepartureTime, now)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var _ FlightUseCase = (*FlightService)(nil)

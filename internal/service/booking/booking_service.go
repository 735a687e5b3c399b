package booking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/Domenick1991/airfare/internal/events"
	"github.com/Domenick1991/airfare/internal/locator"
	"github.com/Domenick1991/airfare/internal/payment"
	"github.com/Domenick1991/airfare/internal/pricing"
	"github.com/Domenick1991/airfare/internal/repository"
	"github.com/Domenick1991/airfare/internal/seats"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	PayBooking(ctx context.Context, locator string) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, locator string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, locator string) (*domain.Booking, error)
	GetBooking(ctx context.Context, ref string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	ListLegacyReservations(ctx context.Context, filter domain.BookingFilter) ([]domain.LegacyReservation, error)
}

// Cache is the part of the flight-list cache the ledger touches: any change
// of availability drops the cached list.
type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Pricer interface {
	Price(baseCents int64, seatsAvailable, capacity int, departure, now time.Time) int64
}

type BookingService struct {
	tx       repository.TxManager
	bookings repository.BookingRepository
	legacy   repository.LegacyReservationRepository

	pricer   Pricer
	locators *locator.Generator
	settler  payment.Settler

	cache              Cache
	producer           events.Publisher
	bookingTopic       string
	notificationsTopic string

	log *zap.Logger
	now func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithPublisher(p events.Publisher, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = p
		s.bookingTopic = topic
	}
}

func WithCache(c Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = c
	}
}

func WithSettler(settler payment.Settler) BookingServiceOption {
	return func(s *BookingService) {
		if settler != nil {
			s.settler = settler
		}
	}
}

func WithPricer(p Pricer) BookingServiceOption {
	return func(s *BookingService) {
		if p != nil {
			s.pricer = p
		}
	}
}

func WithLocatorGenerator(g *locator.Generator) BookingServiceOption {
	return func(s *BookingService) {
		if g != nil {
			s.locators = g
		}
	}
}

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBookingService(
	tx repository.TxManager,
	bookings repository.BookingRepository,
	legacy repository.LegacyReservationRepository,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		tx:       tx,
		bookings: bookings,
		legacy:   legacy,
		pricer:   pricing.NewModel(nil),
		locators: locator.NewGenerator(),
		settler:  payment.NewWeightedSettler(2, 1),
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking takes a seat on the flight, prices it and stores a PENDING
// booking. Seat choice, the availability decrement and the insert happen
// under the flight row lock.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	input.normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var booking *domain.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		flight, err := tx.GetFlightForUpdate(ctx, input.FlightCode)
		if err != nil {
			return err
		}
		if flight.AvailableSeats <= 0 {
			return domain.ErrNoSeatsAvailable
		}

		held, err := tx.HeldSeats(ctx, flight.ID)
		if err != nil {
			return err
		}
		seat, err := seats.Assign(flight.Capacity, input.SeatNumber, held)
		if err != nil {
			return err
		}

		code, err := s.locators.Next(ctx, tx.LocatorExists)
		if err != nil {
			return err
		}

		remaining := flight.AvailableSeats - 1
		booking = &domain.Booking{
			Locator:       code,
			FlightID:      flight.ID,
			FlightCode:    flight.Code,
			PassengerName: input.PassengerName,
			Contact:       input.Contact,
			SeatNumber:    seat,
			PriceCents:    s.pricer.Price(flight.BaseFareCents, remaining, flight.Capacity, flight.DepartureTime, s.now()),
			Status:        domain.BookingStatusPending,
		}
		if err := tx.InsertBooking(ctx, booking); err != nil {
			return err
		}
		return tx.SetAvailableSeats(ctx, flight.ID, remaining)
	})
	if err != nil {
		if errors.Is(err, domain.ErrLocatorSpaceExhausted) {
			s.log.Error("locator space exhausted", zap.String("flight", input.FlightCode), zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("locator", booking.Locator),
		zap.String("flight", booking.FlightCode),
		zap.Int("seat", booking.SeatNumber),
		zap.Int64("price_cents", booking.PriceCents),
	)
	s.afterCommit(ctx, events.BookingCreated, booking, true)
	return booking, nil
}

// PayBooking settles a PENDING or CONFIRMED booking. A failed settlement
// moves it to FAILED and gives the seat back. Bookings already PAID,
// CANCELLED or FAILED are returned unchanged.
func (s *BookingService) PayBooking(ctx context.Context, code string) (*domain.Booking, error) {
	var (
		result    *domain.Booking
		eventType string
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		current, err := tx.GetBookingForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if current.Status == domain.BookingStatusPaid || current.Status.Terminal() {
			result = current
			return nil
		}

		ok, err := s.settler.Settle(ctx, *current)
		if err != nil {
			return err
		}
		if ok {
			result, err = tx.UpdateBookingStatus(ctx, current.ID, domain.BookingStatusPaid)
			eventType = events.BookingPaid
			return err
		}

		result, err = s.release(ctx, tx, current, domain.BookingStatusFailed)
		eventType = events.BookingPaymentFailed
		return err
	})
	if err != nil {
		return nil, err
	}

	if eventType != "" {
		s.log.Info("booking payment settled", zap.String("locator", result.Locator), zap.String("status", string(result.Status)))
		s.afterCommit(ctx, eventType, result, eventType == events.BookingPaymentFailed)
	}
	return result, nil
}

// ConfirmBooking moves PENDING to CONFIRMED. CONFIRMED and PAID bookings are
// returned as they are; terminal ones are rejected.
func (s *BookingService) ConfirmBooking(ctx context.Context, code string) (*domain.Booking, error) {
	var (
		result  *domain.Booking
		changed bool
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		current, err := tx.GetBookingForUpdate(ctx, code)
		if err != nil {
			return err
		}
		switch current.Status {
		case domain.BookingStatusConfirmed, domain.BookingStatusPaid:
			result = current
			return nil
		case domain.BookingStatusPending:
			changed = true
			result, err = tx.UpdateBookingStatus(ctx, current.ID, domain.BookingStatusConfirmed)
			return err
		default:
			return invalidTransition(current.Status, domain.BookingStatusConfirmed)
		}
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.afterCommit(ctx, events.BookingConfirmed, result, false)
	}
	return result, nil
}

// CancelBooking cancels any non-terminal booking and returns its seat.
// Terminal bookings are returned unchanged.
func (s *BookingService) CancelBooking(ctx context.Context, code string) (*domain.Booking, error) {
	var (
		result  *domain.Booking
		changed bool
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		current, err := tx.GetBookingForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			result = current
			return nil
		}
		changed = true
		result, err = s.release(ctx, tx, current, domain.BookingStatusCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("booking cancelled", zap.String("locator", result.Locator))
		s.afterCommit(ctx, events.BookingCancelled, result, true)
	}
	return result, nil
}

// release moves a seat-holding booking to a terminal status and returns the
// seat to the flight. The booking row is already locked; the flight row is
// locked second. A failed payment may fail a CONFIRMED booking too.
func (s *BookingService) release(ctx context.Context, tx repository.Tx, b *domain.Booking, to domain.BookingStatus) (*domain.Booking, error) {
	if !b.Status.HoldsSeat() || !to.Terminal() {
		return nil, invalidTransition(b.Status, to)
	}
	flight, err := tx.GetFlightByIDForUpdate(ctx, b.FlightID)
	if err != nil {
		return nil, err
	}
	updated, err := tx.UpdateBookingStatus(ctx, b.ID, to)
	if err != nil {
		return nil, err
	}
	if err := tx.SetAvailableSeats(ctx, flight.ID, flight.ClampSeats(flight.AvailableSeats+1)); err != nil {
		return nil, err
	}
	return updated, nil
}

// GetBooking resolves ref as a locator first. A numeric ref then falls back
// to a booking id and finally to a legacy reservation id.
func (s *BookingService) GetBooking(ctx context.Context, ref string) (*domain.Booking, error) {
	b, err := s.bookings.GetByLocator(ctx, ref)
	if err == nil || !errors.Is(err, domain.ErrBookingNotFound) {
		return b, err
	}

	id, convErr := strconv.ParseInt(ref, 10, 64)
	if convErr != nil || id <= 0 {
		return nil, err
	}

	b, err = s.bookings.GetByID(ctx, id)
	if err == nil || !errors.Is(err, domain.ErrBookingNotFound) {
		return b, err
	}

	r, err := s.legacy.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	legacy := r.AsBooking()
	return &legacy, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	return s.bookings.List(ctx, normalizeFilter(filter))
}

func (s *BookingService) ListLegacyReservations(ctx context.Context, filter domain.BookingFilter) ([]domain.LegacyReservation, error) {
	return s.legacy.List(ctx, normalizeFilter(filter))
}

// Flight codes are stored upper-case.
func normalizeFilter(f domain.BookingFilter) domain.BookingFilter {
	f.FlightCode = strings.ToUpper(strings.TrimSpace(f.FlightCode))
	return f
}

// afterCommit runs the best-effort side effects of a committed change.
// Failures are logged and never reach the caller.
func (s *BookingService) afterCommit(ctx context.Context, eventType string, b *domain.Booking, inventoryChanged bool) {
	if inventoryChanged && s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.Warn("failed to invalidate flights cache", zap.Error(err))
		}
	}
	if err := s.publish(ctx, eventType, b); err != nil {
		s.log.Warn("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("locator", b.Locator),
			zap.Error(err),
		)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := events.NewBookingEvent(eventType, b)
	if err := s.producer.Publish(ctx, s.bookingTopic, b.Locator, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, b.Locator, event)
	}
	return nil
}

func invalidTransition(from, to domain.BookingStatus) error {
	return &TransitionError{From: from, To: to}
}

// TransitionError reports a rejected state change. It matches
// domain.ErrInvalidTransition under errors.Is.
type TransitionError struct {
	From, To domain.BookingStatus
}

func (e *TransitionError) Error() string {
	return "cannot move booking from " + string(e.From) + " to " + string(e.To)
}

func (e *TransitionError) Unwrap() error { return domain.ErrInvalidTransition }

var _ BookingUseCase = (*BookingService)(nil)

package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/Domenick1991/airfare/internal/events"
	"github.com/Domenick1991/airfare/internal/locator"
	"github.com/Domenick1991/airfare/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type zeroSource struct{}

func (zeroSource) IntN(int) int { return 0 }

func newMockService(tx *MockTx, opts ...BookingServiceOption) (*BookingService, *MockBookingRepository, *MockLegacyRepository) {
	bookings := &MockBookingRepository{}
	legacy := &MockLegacyRepository{}
	opts = append([]BookingServiceOption{WithPricer(fixedPricer(18000))}, opts...)
	return NewBookingService(&MockTxManager{tx: tx}, bookings, legacy, opts...), bookings, legacy
}

func testFlight() *domain.Flight {
	return &domain.Flight{
		ID:             1,
		Code:           "AI101",
		Capacity:       10,
		AvailableSeats: 5,
		BaseFareCents:  10000,
		DepartureTime:  time.Now().Add(48 * time.Hour),
	}
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	tx := &MockTx{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service, _, _ := newMockService(tx,
		WithCache(cache),
		WithPublisher(producer, "booking-events"),
		WithNotificationsTopic("notifications"),
	)
	ctx := context.Background()

	tx.On("GetFlightForUpdate", ctx, "AI101").Return(testFlight(), nil).Once()
	tx.On("HeldSeats", ctx, int64(1)).Return(map[int]struct{}{1: {}, 2: {}}, nil).Once()
	tx.On("LocatorExists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	tx.On("InsertBooking", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.SeatNumber == 3 && b.Status == domain.BookingStatusPending && b.PriceCents == 18000 && locator.Valid(b.Locator)
	})).Return(nil).Once()
	tx.On("SetAvailableSeats", ctx, int64(1), 4).Return(nil).Once()
	cache.On("InvalidateFlights", ctx).Return(nil).Once()
	producer.On("Publish", ctx, "booking-events", mock.Anything, mock.MatchedBy(func(e events.BookingEvent) bool {
		return e.Type == events.BookingCreated && e.SeatNumber == 3
	})).Return(nil).Once()
	producer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).Return(nil).Once()

	b, err := service.CreateBooking(ctx, CreateBookingInput{FlightCode: " ai101 ", PassengerName: "Ananya Patel", Contact: "a@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "AI101", b.FlightCode)
	assert.Equal(t, 3, b.SeatNumber)
	tx.AssertExpectations(t)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_NoSeatsChecksBeforeMutation(t *testing.T) {
	tx := &MockTx{}
	service, _, _ := newMockService(tx)
	ctx := context.Background()

	full := testFlight()
	full.AvailableSeats = 0
	tx.On("GetFlightForUpdate", ctx, "AI101").Return(full, nil).Once()

	_, err := service.CreateBooking(ctx, CreateBookingInput{FlightCode: "AI101", PassengerName: "X"})

	assert.ErrorIs(t, err, domain.ErrNoSeatsAvailable)
	tx.AssertNotCalled(t, "InsertBooking", mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "SetAvailableSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_FlightNotFound(t *testing.T) {
	tx := &MockTx{}
	service, _, _ := newMockService(tx)
	ctx := context.Background()

	tx.On("GetFlightForUpdate", ctx, "ZZ999").Return(nil, domain.ErrFlightNotFound).Once()

	_, err := service.CreateBooking(ctx, CreateBookingInput{FlightCode: "ZZ999", PassengerName: "X"})
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestBookingService_CreateBooking_LocatorExhaustionIsLogged(t *testing.T) {
	tx := &MockTx{}
	core, logs := observer.New(zap.ErrorLevel)
	gen := locator.NewGenerator(locator.WithSource(zeroSource{}), locator.WithMaxAttempts(3))
	service, _, _ := newMockService(tx, WithLogger(zap.New(core)), WithLocatorGenerator(gen))
	ctx := context.Background()

	tx.On("GetFlightForUpdate", ctx, "AI101").Return(testFlight(), nil).Once()
	tx.On("HeldSeats", ctx, int64(1)).Return(map[int]struct{}{}, nil).Once()
	tx.On("LocatorExists", ctx, "PNRAAAAAAAA").Return(true, nil).Times(3)

	_, err := service.CreateBooking(ctx, CreateBookingInput{FlightCode: "AI101", PassengerName: "X"})

	assert.ErrorIs(t, err, domain.ErrLocatorSpaceExhausted)
	assert.Equal(t, domain.KindResourceExhaustion, domain.KindOf(err))
	assert.Equal(t, 1, logs.FilterMessage("locator space exhausted").Len())
	tx.AssertNotCalled(t, "InsertBooking", mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateBookingInput
		want  string
	}{
		{"missing flight", CreateBookingInput{PassengerName: "X"}, "FlightCode is required"},
		{"blank passenger", CreateBookingInput{FlightCode: "AI101", PassengerName: "   "}, "PassengerName is required"},
		{"negative seat", CreateBookingInput{FlightCode: "AI101", PassengerName: "X", SeatNumber: -1}, "SeatNumber must be >= 0"},
		{"long flight code", CreateBookingInput{FlightCode: "AI1010101010", PassengerName: "X"}, "FlightCode must be at most 10 characters"},
		{"long passenger name", CreateBookingInput{FlightCode: "AI101", PassengerName: strings.Repeat("a", 101)}, "PassengerName must be at most 100 characters"},
		{"long contact", CreateBookingInput{FlightCode: "AI101", PassengerName: "X", Contact: strings.Repeat("9", 51)}, "Contact must be at most 50 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &MockTx{}
			service, _, _ := newMockService(tx)

			_, err := service.CreateBooking(context.Background(), tt.input)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.ErrorContains(t, err, tt.want)
			tx.AssertNotCalled(t, "GetFlightForUpdate", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateBookingInput_ValidateAcceptsColumnLimits(t *testing.T) {
	in := CreateBookingInput{
		FlightCode:    "AI10110101",
		PassengerName: strings.Repeat("a", 100),
		Contact:       strings.Repeat("9", 50),
	}
	assert.NoError(t, in.Validate())
}

func TestBookingService_PublishFailureDoesNotFailRequest(t *testing.T) {
	tx := &MockTx{}
	producer := &MockProducer{}
	core, logs := observer.New(zap.WarnLevel)
	service, _, _ := newMockService(tx, WithPublisher(producer, "booking-events"), WithLogger(zap.New(core)))
	ctx := context.Background()

	pending := &domain.Booking{ID: 9, Locator: "PNRAAAAAAAA", Status: domain.BookingStatusPending}
	confirmed := *pending
	confirmed.Status = domain.BookingStatusConfirmed
	tx.On("GetBookingForUpdate", ctx, "PNRAAAAAAAA").Return(pending, nil).Once()
	tx.On("UpdateBookingStatus", ctx, int64(9), domain.BookingStatusConfirmed).Return(&confirmed, nil).Once()
	producer.On("Publish", ctx, "booking-events", "PNRAAAAAAAA", mock.Anything).Return(errors.New("broker down")).Once()

	b, err := service.ConfirmBooking(ctx, "PNRAAAAAAAA")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	assert.Equal(t, 1, logs.FilterMessage("failed to publish booking event").Len())
}

func TestBookingService_PayBooking_SettlerError(t *testing.T) {
	tx := &MockTx{}
	boom := errors.New("gateway timeout")
	service, _, _ := newMockService(tx, WithSettler(payment.SettlerFunc(func(context.Context, domain.Booking) (bool, error) {
		return false, boom
	})))
	ctx := context.Background()

	tx.On("GetBookingForUpdate", ctx, "PNRAAAAAAAA").Return(&domain.Booking{ID: 1, Status: domain.BookingStatusPending}, nil).Once()

	_, err := service.PayBooking(ctx, "PNRAAAAAAAA")
	assert.ErrorIs(t, err, boom)
	tx.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_ConfirmTerminalIsInvalidTransition(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.BookingStatusCancelled, domain.BookingStatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			tx := &MockTx{}
			service, _, _ := newMockService(tx)
			ctx := context.Background()
			tx.On("GetBookingForUpdate", ctx, "PNRAAAAAAAA").Return(&domain.Booking{ID: 1, Status: status}, nil).Once()

			_, err := service.ConfirmBooking(ctx, "PNRAAAAAAAA")

			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			var te *TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, status, te.From)
		})
	}
}

func TestBookingService_GetBooking_Fallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("locator", func(t *testing.T) {
		service, bookings, _ := newMockService(&MockTx{})
		bookings.On("GetByLocator", ctx, "PNRAAAAAAAA").Return(&domain.Booking{ID: 1, Locator: "PNRAAAAAAAA"}, nil).Once()

		b, err := service.GetBooking(ctx, "PNRAAAAAAAA")
		require.NoError(t, err)
		assert.Equal(t, int64(1), b.ID)
		bookings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("booking id", func(t *testing.T) {
		service, bookings, _ := newMockService(&MockTx{})
		bookings.On("GetByLocator", ctx, "42").Return(nil, domain.ErrBookingNotFound).Once()
		bookings.On("GetByID", ctx, int64(42)).Return(&domain.Booking{ID: 42}, nil).Once()

		b, err := service.GetBooking(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, int64(42), b.ID)
	})

	t.Run("legacy reservation", func(t *testing.T) {
		service, bookings, legacy := newMockService(&MockTx{})
		bookings.On("GetByLocator", ctx, "7").Return(nil, domain.ErrBookingNotFound).Once()
		bookings.On("GetByID", ctx, int64(7)).Return(nil, domain.ErrBookingNotFound).Once()
		legacy.On("GetByID", ctx, int64(7)).Return(&domain.LegacyReservation{ID: 7, FlightCode: "AI101", SeatNumber: 3}, nil).Once()

		b, err := service.GetBooking(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
		assert.Equal(t, 3, b.SeatNumber)
	})

	t.Run("unknown non numeric", func(t *testing.T) {
		service, bookings, legacy := newMockService(&MockTx{})
		bookings.On("GetByLocator", ctx, "PNRZZZZZZZZ").Return(nil, domain.ErrBookingNotFound).Once()

		_, err := service.GetBooking(ctx, "PNRZZZZZZZZ")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
		legacy.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestBookingService_Lists(t *testing.T) {
	ctx := context.Background()
	service, bookings, legacy := newMockService(&MockTx{})
	filter := domain.BookingFilter{PassengerName: "patel"}

	bookings.On("List", ctx, filter).Return([]domain.Booking{{ID: 1}}, nil).Once()
	legacy.On("List", ctx, filter).Return([]domain.LegacyReservation{{ID: 2}}, nil).Once()

	got, err := service.ListBookings(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	old, err := service.ListLegacyReservations(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, old, 1)
}

func TestBookingService_ListsNormalizeFlightCode(t *testing.T) {
	ctx := context.Background()
	service, bookings, legacy := newMockService(&MockTx{})

	bookings.On("List", ctx, domain.BookingFilter{FlightCode: "AI101"}).Return([]domain.Booking{{ID: 1}}, nil).Once()
	legacy.On("List", ctx, domain.BookingFilter{FlightCode: "AI101"}).Return([]domain.LegacyReservation{{ID: 2}}, nil).Once()

	got, err := service.ListBookings(ctx, domain.BookingFilter{FlightCode: " ai101 "})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	old, err := service.ListLegacyReservations(ctx, domain.BookingFilter{FlightCode: "ai101"})
	require.NoError(t, err)
	assert.Len(t, old, 1)
	bookings.AssertExpectations(t)
	legacy.AssertExpectations(t)
}

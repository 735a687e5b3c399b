package api

import (
	"context"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/Domenick1991/airfare/internal/service/booking"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, input))
}

func (m *MockBookingUseCase) PayBooking(ctx context.Context, locator string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, locator))
}

func (m *MockBookingUseCase) ConfirmBooking(ctx context.Context, locator string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, locator))
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, locator string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, locator))
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, ref string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, ref))
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListLegacyReservations(ctx context.Context, filter domain.BookingFilter) ([]domain.LegacyReservation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.LegacyReservation), args.Error(1)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByCode(ctx context.Context, code string) (*domain.Flight, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, q domain.FlightSearch) ([]domain.FlightOffer, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.FlightOffer), args.Error(1)
}

func (m *MockFlightUseCase) Quote(ctx context.Context, code string) (*domain.Quote, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockFlightUseCase) FareHistory(ctx context.Context, code string, limit int) ([]domain.FareChange, error) {
	args := m.Called(ctx, code, limit)
	return args.Get(0).([]domain.FareChange), args.Error(1)
}

func (m *MockFlightUseCase) ApplyMarketPerturbation(ctx context.Context, code string, delta int) (*domain.Flight, error) {
	args := m.Called(ctx, code, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

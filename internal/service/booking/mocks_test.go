package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/Domenick1991/airfare/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockTxManager struct {
	tx repository.Tx
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, m.tx)
}

type MockTx struct {
	mock.Mock
}

func (m *MockTx) GetFlightForUpdate(ctx context.Context, code string) (*domain.Flight, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockTx) GetFlightByIDForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockTx) SetAvailableSeats(ctx context.Context, flightID int64, available int) error {
	return m.Called(ctx, flightID, available).Error(0)
}

func (m *MockTx) HeldSeats(ctx context.Context, flightID int64) (map[int]struct{}, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).(map[int]struct{}), args.Error(1)
}

func (m *MockTx) LocatorExists(ctx context.Context, locator string) (bool, error) {
	args := m.Called(ctx, locator)
	return args.Bool(0), args.Error(1)
}

func (m *MockTx) InsertBooking(ctx context.Context, booking *domain.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockTx) GetBookingForUpdate(ctx context.Context, locator string) (*domain.Booking, error) {
	args := m.Called(ctx, locator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockTx) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockTx) AppendFareChange(ctx context.Context, change *domain.FareChange) error {
	return m.Called(ctx, change).Error(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) GetByLocator(ctx context.Context, locator string) (*domain.Booking, error) {
	args := m.Called(ctx, locator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockLegacyRepository struct {
	mock.Mock
}

func (m *MockLegacyRepository) GetByID(ctx context.Context, id int64) (*domain.LegacyReservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LegacyReservation), args.Error(1)
}

func (m *MockLegacyRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.LegacyReservation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.LegacyReservation), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value any) error {
	return m.Called(ctx, topic, key, value).Error(0)
}

type fixedPricer int64

func (p fixedPricer) Price(int64, int, int, time.Time, time.Time) int64 { return int64(p) }

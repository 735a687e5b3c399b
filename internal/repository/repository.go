package repository

import (
	"context"

	"github.com/Domenick1991/airfare/internal/domain"
)

// FlightRepository serves snapshot reads. Availability may be stale; writes
// go through Tx.
type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByCode(ctx context.Context, code string) (*domain.Flight, error)
	Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error)
}

type BookingRepository interface {
	GetByLocator(ctx context.Context, locator string) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
}

// LegacyReservationRepository is the read-only view over the deprecated
// reservations table.
type LegacyReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.LegacyReservation, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.LegacyReservation, error)
}

type FareHistoryRepository interface {
	Append(ctx context.Context, change *domain.FareChange) error
	ListByFlight(ctx context.Context, flightID int64, limit int) ([]domain.FareChange, error)
}

// Tx is the set of operations available inside a transaction. Methods named
// ForUpdate take an exclusive row lock held until the transaction ends.
type Tx interface {
	GetFlightForUpdate(ctx context.Context, code string) (*domain.Flight, error)
	GetFlightByIDForUpdate(ctx context.Context, id int64) (*domain.Flight, error)
	SetAvailableSeats(ctx context.Context, flightID int64, available int) error
	// HeldSeats returns the seat numbers held by non-terminal bookings.
	HeldSeats(ctx context.Context, flightID int64) (map[int]struct{}, error)
	LocatorExists(ctx context.Context, locator string) (bool, error)
	InsertBooking(ctx context.Context, booking *domain.Booking) error
	GetBookingForUpdate(ctx context.Context, locator string) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
	AppendFareChange(ctx context.Context, change *domain.FareChange) error
}

// TxManager runs fn in a transaction. The transaction commits when fn
// returns nil and rolls back on error or panic; every lock taken inside is
// released before WithTx returns.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

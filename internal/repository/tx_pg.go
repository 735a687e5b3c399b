package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation = "23505"
	stringTooLong   = "22001"
)

type PGTxManager struct {
	db *pgxpool.Pool
}

func NewTxManager(db *pgxpool.Pool) TxManager {
	return &PGTxManager{db: db}
}

func (m *PGTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetFlightForUpdate(ctx context.Context, code string) (*domain.Flight, error) {
	return scanFlight(t.tx.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE code=$1 FOR UPDATE`, code))
}

func (t *pgTx) GetFlightByIDForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	return scanFlight(t.tx.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1 FOR UPDATE`, id))
}

func (t *pgTx) SetAvailableSeats(ctx context.Context, flightID int64, available int) error {
	res, err := t.tx.Exec(ctx, `UPDATE flights SET available_seats=$1, updated_at=now() WHERE id=$2`, available, flightID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (t *pgTx) HeldSeats(ctx context.Context, flightID int64) (map[int]struct{}, error) {
	rows, err := t.tx.Query(ctx, `SELECT seat_number FROM bookings WHERE flight_id=$1 AND status = ANY($2)`,
		flightID, []string{string(domain.BookingStatusPending), string(domain.BookingStatusConfirmed), string(domain.BookingStatusPaid)})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	held := make(map[int]struct{})
	for rows.Next() {
		var seat int
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		held[seat] = struct{}{}
	}
	return held, rows.Err()
}

func (t *pgTx) LocatorExists(ctx context.Context, locator string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE locator=$1)`, locator).Scan(&exists)
	return exists, err
}

func (t *pgTx) InsertBooking(ctx context.Context, b *domain.Booking) error {
	err := t.tx.QueryRow(ctx, `INSERT INTO bookings (locator, flight_id, passenger_name, contact, seat_number, price_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`, b.Locator, b.FlightID, b.PassengerName, b.Contact, b.SeatNumber, b.PriceCents, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation && pgErr.ConstraintName == "bookings_held_seat_uniq":
			return fmt.Errorf("seat %d: %w", b.SeatNumber, domain.ErrSeatTaken)
		case pgErr.Code == stringTooLong:
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.Message)
		}
	}
	return err
}

func (t *pgTx) GetBookingForUpdate(ctx context.Context, locator string) (*domain.Booking, error) {
	return scanBooking(t.tx.QueryRow(ctx, `SELECT `+bookingColumns+bookingFrom+` WHERE b.locator=$1 FOR UPDATE OF b`, locator))
}

func (t *pgTx) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	return scanBooking(t.tx.QueryRow(ctx, `WITH updated AS (
			UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2
			RETURNING id, locator, flight_id, passenger_name, contact, seat_number, price_cents, status, created_at, updated_at
		)
		SELECT `+bookingColumns+` FROM updated b JOIN flights f ON f.id = b.flight_id`, status, id))
}

func (t *pgTx) AppendFareChange(ctx context.Context, c *domain.FareChange) error {
	return t.tx.QueryRow(ctx, `INSERT INTO fare_history (flight_id, old_price_cents, new_price_cents)
		VALUES ($1, $2, $3) RETURNING id, changed_at`, c.FlightID, c.OldPriceCents, c.NewPriceCents).
		Scan(&c.ID, &c.ChangedAt)
}

var (
	_ TxManager = (*PGTxManager)(nil)
	_ Tx        = (*pgTx)(nil)
)

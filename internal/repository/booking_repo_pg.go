package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `b.id, b.locator, b.flight_id, f.code, b.passenger_name, b.contact, b.seat_number, b.price_cents, b.status, b.created_at, b.updated_at`

const bookingFrom = ` FROM bookings b JOIN flights f ON f.id = b.flight_id`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) GetByLocator(ctx context.Context, locator string) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+bookingFrom+` WHERE b.locator=$1`, locator))
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+bookingFrom+` WHERE b.id=$1`, id))
}

func (r *PGBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.ID != 0 {
		add("b.id=$%d", filter.ID)
	}
	if filter.Locator != "" {
		add("b.locator=$%d", filter.Locator)
	}
	if filter.PassengerName != "" {
		add("b.passenger_name ILIKE '%%' || $%d || '%%'", filter.PassengerName)
	}
	if filter.FlightCode != "" {
		add("f.code=$%d", filter.FlightCode)
	}
	if filter.Origin != "" {
		add("f.origin=$%d", filter.Origin)
	}
	if filter.Destination != "" {
		add("f.destination=$%d", filter.Destination)
	}

	query := `SELECT ` + bookingColumns + bookingFrom
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY b.id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.Locator, &b.FlightID, &b.FlightCode, &b.PassengerName, &b.Contact,
		&b.SeatNumber, &b.PriceCents, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)

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

const legacyColumns = `id, transaction_id, flight_code, origin, destination, passenger_name, contact, seat_number`

type PGLegacyReservationRepository struct {
	db *pgxpool.Pool
}

func NewLegacyReservationRepository(db *pgxpool.Pool) LegacyReservationRepository {
	return &PGLegacyReservationRepository{db: db}
}

func (r *PGLegacyReservationRepository) GetByID(ctx context.Context, id int64) (*domain.LegacyReservation, error) {
	var res domain.LegacyReservation
	err := r.db.QueryRow(ctx, `SELECT `+legacyColumns+` FROM legacy_reservations WHERE id=$1`, id).
		Scan(&res.ID, &res.TransactionID, &res.FlightCode, &res.Origin, &res.Destination, &res.PassengerName, &res.Contact, &res.SeatNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *PGLegacyReservationRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.LegacyReservation, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.ID != 0 {
		add("id=$%d", filter.ID)
	}
	if filter.FlightCode != "" {
		add("flight_code=$%d", filter.FlightCode)
	}
	if filter.Origin != "" {
		add("origin=$%d", filter.Origin)
	}
	if filter.Destination != "" {
		add("destination=$%d", filter.Destination)
	}
	if filter.PassengerName != "" {
		add("passenger_name ILIKE '%%' || $%d || '%%'", filter.PassengerName)
	}

	query := `SELECT ` + legacyColumns + ` FROM legacy_reservations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.LegacyReservation, 0)
	for rows.Next() {
		var res domain.LegacyReservation
		if err := rows.Scan(&res.ID, &res.TransactionID, &res.FlightCode, &res.Origin, &res.Destination, &res.PassengerName, &res.Contact, &res.SeatNumber); err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

var _ LegacyReservationRepository = (*PGLegacyReservationRepository)(nil)

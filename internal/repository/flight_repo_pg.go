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

const flightColumns = `id, code, operator, origin, destination, departure_time, arrival_time, capacity, available_seats, base_fare_cents, created_at, updated_at`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) GetByCode(ctx context.Context, code string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE code=$1`, code)
	return scanFlight(row)
}

// Search filters by route and departure day. Ordering by dynamic price is the
// caller's job since the price is not stored.
func (r *PGFlightRepository) Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	var (
		where []string
		args  []any
	)
	if q.Origin != "" {
		args = append(args, q.Origin)
		where = append(where, fmt.Sprintf("origin=$%d", len(args)))
	}
	if q.Destination != "" {
		args = append(args, q.Destination)
		where = append(where, fmt.Sprintf("destination=$%d", len(args)))
	}
	if !q.Date.IsZero() {
		args = append(args, q.Date.UTC().Format("2006-01-02"))
		where = append(where, fmt.Sprintf("(departure_time AT TIME ZONE 'UTC')::date = $%d::date", len(args)))
	}

	query := `SELECT ` + flightColumns + ` FROM flights`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY departure_time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.Code, &f.Operator, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime,
		&f.Capacity, &f.AvailableSeats, &f.BaseFareCents, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)

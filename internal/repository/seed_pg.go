package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedFlights inserts flights whose code is not present yet. Existing rows
// are left alone so live availability is never reset.
func SeedFlights(ctx context.Context, db *pgxpool.Pool, flights []domain.Flight) error {
	if len(flights) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, f := range flights {
		batch.Queue(`INSERT INTO flights (code, operator, origin, destination, departure_time, arrival_time, capacity, available_seats, base_fare_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (code) DO NOTHING`,
			f.Code, f.Operator, f.Origin, f.Destination, f.DepartureTime, f.ArrivalTime, f.Capacity, f.AvailableSeats, f.BaseFareCents)
	}

	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed flights: %w", err)
	}
	return nil
}

package repository

import (
	"context"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGFareHistoryRepository struct {
	db *pgxpool.Pool
}

func NewFareHistoryRepository(db *pgxpool.Pool) FareHistoryRepository {
	return &PGFareHistoryRepository{db: db}
}

func (r *PGFareHistoryRepository) Append(ctx context.Context, change *domain.FareChange) error {
	return r.db.QueryRow(ctx, `INSERT INTO fare_history (flight_id, old_price_cents, new_price_cents)
		VALUES ($1, $2, $3) RETURNING id, changed_at`, change.FlightID, change.OldPriceCents, change.NewPriceCents).
		Scan(&change.ID, &change.ChangedAt)
}

func (r *PGFareHistoryRepository) ListByFlight(ctx context.Context, flightID int64, limit int) ([]domain.FareChange, error) {
	rows, err := r.db.Query(ctx, `SELECT id, flight_id, old_price_cents, new_price_cents, changed_at
		FROM fare_history WHERE flight_id=$1 ORDER BY changed_at DESC, id DESC LIMIT $2`, flightID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := make([]domain.FareChange, 0)
	for rows.Next() {
		var c domain.FareChange
		if err := rows.Scan(&c.ID, &c.FlightID, &c.OldPriceCents, &c.NewPriceCents, &c.ChangedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

var _ FareHistoryRepository = (*PGFareHistoryRepository)(nil)

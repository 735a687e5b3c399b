// Package payment decides the outcome of the simulated settlement step.
package payment

import (
	"context"
	"math/rand/v2"

	"github.com/Domenick1991/airfare/internal/domain"
)

// Settler decides whether paying for a booking succeeds.
type Settler interface {
	Settle(ctx context.Context, booking domain.Booking) (bool, error)
}

type SettlerFunc func(ctx context.Context, booking domain.Booking) (bool, error)

func (f SettlerFunc) Settle(ctx context.Context, booking domain.Booking) (bool, error) {
	return f(ctx, booking)
}

// Always returns a settler with a fixed outcome.
func Always(success bool) Settler {
	return SettlerFunc(func(context.Context, domain.Booking) (bool, error) {
		return success, nil
	})
}

type intSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// WeightedSettler succeeds with probability success/(success+failure).
type WeightedSettler struct {
	success, failure int
	src              intSource
}

func NewWeightedSettler(success, failure int) *WeightedSettler {
	return &WeightedSettler{success: success, failure: failure, src: globalSource{}}
}

func (s *WeightedSettler) Settle(context.Context, domain.Booking) (bool, error) {
	total := s.success + s.failure
	if total <= 0 {
		return true, nil
	}
	return s.src.IntN(total) < s.success, nil
}

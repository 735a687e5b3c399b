// Package market nudges flight availability at random to imitate sales on
// other channels. Every change goes through the same row locks as bookings.
package market

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
	"go.uber.org/zap"
)

var deltas = []int{-2, -1, 0, 0, 1}

type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

type FlightLister interface {
	List(ctx context.Context) ([]domain.Flight, error)
}

type Perturber interface {
	ApplyMarketPerturbation(ctx context.Context, code string, delta int) (*domain.Flight, error)
}

type Simulator struct {
	flights   FlightLister
	perturber Perturber
	src       Source
	logger    *zap.Logger
	interval  time.Duration
}

func NewSimulator(flights FlightLister, perturber Perturber, logger *zap.Logger, interval time.Duration, src Source) *Simulator {
	if src == nil {
		src = globalSource{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{flights: flights, perturber: perturber, src: src, logger: logger, interval: interval}
}

// Start runs Step on every tick until ctx is done. A non-positive interval
// leaves the simulator off.
func (s *Simulator) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Error("market simulator disabled: interval must be positive", zap.Duration("interval", s.interval))
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("market simulator started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("market simulator stopped")
			return
		case <-ticker.C:
			if _, err := s.Step(ctx); err != nil {
				s.logger.Error("market step failed", zap.Error(err))
			}
		}
	}
}

// Step perturbs every flight once and returns how many actually changed.
// A failure on one flight is logged and does not stop the others.
func (s *Simulator) Step(ctx context.Context) (int, error) {
	flights, err := s.flights.List(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, f := range flights {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}
		delta := deltas[s.src.IntN(len(deltas))]
		if delta == 0 {
			continue
		}
		updated, err := s.perturber.ApplyMarketPerturbation(ctx, f.Code, delta)
		if err != nil {
			s.logger.Warn("market perturbation failed", zap.String("flight", f.Code), zap.Int("delta", delta), zap.Error(err))
			continue
		}
		if updated.AvailableSeats != f.AvailableSeats {
			changed++
		}
	}
	return changed, nil
}

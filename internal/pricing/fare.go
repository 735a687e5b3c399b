// Package pricing computes dynamic fares from occupancy, time to departure
// and a random demand term.
package pricing

import (
	"math"
	"math/rand/v2"
	"time"
)

const (
	occupancyWeight = 0.4

	demandMin = -0.05
	demandMax = 0.25
)

// Source yields floats uniformly distributed in [0, 1).
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Fixed always returns v. Useful to pin the demand term.
type Fixed float64

func (f Fixed) Float64() float64 { return float64(f) }

type Model struct {
	src Source
}

// NewModel returns a model drawing demand noise from src, or from the
// process-wide generator when src is nil.
func NewModel(src Source) *Model {
	if src == nil {
		src = globalSource{}
	}
	return &Model{src: src}
}

// Price returns the dynamic fare in cents. capacity must be positive.
func (m *Model) Price(baseCents int64, seatsAvailable, capacity int, departure, now time.Time) int64 {
	occupancy := (1 - float64(seatsAvailable)/float64(capacity)) * occupancyWeight
	urgency := UrgencyFactor(departure, now)
	demand := demandMin + m.src.Float64()*(demandMax-demandMin)

	return int64(math.Round(float64(baseCents) * (1 + occupancy + urgency + demand)))
}

// UrgencyFactor is a step function of the hours left before departure.
// Departures in the past count as zero hours left.
func UrgencyFactor(departure, now time.Time) float64 {
	hours := math.Max(departure.Sub(now).Hours(), 0)
	switch {
	case hours < 24:
		return 0.5
	case hours < 72:
		return 0.3
	default:
		return 0.1
	}
}

// Package seats picks seat numbers for new bookings. Callers must hold the
// flight's row lock for the whole check-then-insert sequence.
package seats

import (
	"fmt"

	"github.com/Domenick1991/airfare/internal/domain"
)

var (
	ErrSeatTaken = fmt.Errorf("seats: %w", domain.ErrSeatTaken)
	ErrExhausted = fmt.Errorf("seats: all seats held: %w", domain.ErrNoSeatsAvailable)
)

// Occupied is the set of seat numbers held by non-terminal bookings.
type Occupied map[int]struct{}

func (o Occupied) Has(seat int) bool {
	_, ok := o[seat]
	return ok
}

// Assign returns requested when it is free and within [1, capacity], or the
// lowest free seat when requested is 0.
func Assign(capacity, requested int, occupied Occupied) (int, error) {
	if requested != 0 {
		if requested < 1 || requested > capacity || occupied.Has(requested) {
			return 0, ErrSeatTaken
		}
		return requested, nil
	}

	for seat := 1; seat <= capacity; seat++ {
		if !occupied.Has(seat) {
			return seat, nil
		}
	}
	return 0, ErrExhausted
}

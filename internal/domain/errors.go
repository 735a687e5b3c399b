package domain

import "errors"

var (
	ErrFlightNotFound        = errors.New("flight not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrNoSeatsAvailable      = errors.New("no seats available")
	ErrSeatTaken             = errors.New("requested seat already taken")
	ErrLocatorSpaceExhausted = errors.New("unable to generate unique locator")
	ErrInvalidTransition     = errors.New("invalid booking status transition")
	ErrInvalidInput          = errors.New("invalid input")
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindConflict
	KindResourceExhaustion
	KindInvalidTransition
	KindInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindResourceExhaustion:
		return "resource_exhaustion"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

// KindOf classifies err by the sentinel it wraps.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrFlightNotFound), errors.Is(err, ErrBookingNotFound):
		return KindNotFound
	case errors.Is(err, ErrNoSeatsAvailable), errors.Is(err, ErrSeatTaken):
		return KindConflict
	case errors.Is(err, ErrLocatorSpaceExhausted):
		return KindResourceExhaustion
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrInvalidInput):
		return KindInvalid
	default:
		return KindInternal
	}
}

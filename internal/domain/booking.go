package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusPaid      BookingStatus = "PAID"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusFailed    BookingStatus = "FAILED"
)

var transitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusPaid, BookingStatusFailed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusPaid, BookingStatusCancelled},
	BookingStatusPaid:      {BookingStatusCancelled},
}

// HoldsSeat reports whether a booking in this status counts against inventory.
func (s BookingStatus) HoldsSeat() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusPaid:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusFailed
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusPaid, BookingStatusCancelled, BookingStatusFailed:
		return true
	}
	return false
}

type Booking struct {
	ID            int64         `json:"id"`
	Locator       string        `json:"locator"`
	FlightID      int64         `json:"flight_id"`
	FlightCode    string        `json:"flight_code,omitempty"`
	PassengerName string        `json:"passenger_name"`
	Contact       string        `json:"contact"`
	SeatNumber    int           `json:"seat_number"`
	PriceCents    int64         `json:"price_cents"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// BookingFilter combines optional criteria with AND; zero fields are ignored.
type BookingFilter struct {
	ID            int64
	Locator       string
	PassengerName string
	FlightCode    string
	Origin        string
	Destination   string
}

// LegacyReservation is a row of the deprecated reservations table. It is
// read-only and surfaced through the booking lookups.
type LegacyReservation struct {
	ID            int64  `json:"reservation_id"`
	TransactionID string `json:"transaction_id"`
	FlightCode    string `json:"flight_code"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	PassengerName string `json:"passenger_name"`
	Contact       string `json:"contact"`
	SeatNumber    int    `json:"seat_number"`
}

// AsBooking projects the reservation onto the unified booking record.
// Legacy reservations were always confirmed on creation and carry no locator.
func (r LegacyReservation) AsBooking() Booking {
	return Booking{
		ID:            r.ID,
		FlightCode:    r.FlightCode,
		PassengerName: r.PassengerName,
		Contact:       r.Contact,
		SeatNumber:    r.SeatNumber,
		Status:        BookingStatusConfirmed,
	}
}

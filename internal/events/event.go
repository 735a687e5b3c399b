// Package events defines the booking lifecycle messages published after a
// ledger transaction commits.
package events

import (
	"context"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/google/uuid"
)

const (
	BookingCreated       = "booking_created"
	BookingPaid          = "booking_paid"
	BookingPaymentFailed = "booking_payment_failed"
	BookingConfirmed     = "booking_confirmed"
	BookingCancelled     = "booking_cancelled"
)

type BookingEvent struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Locator       string    `json:"locator"`
	FlightID      int64     `json:"flight_id"`
	FlightCode    string    `json:"flight_code"`
	SeatNumber    int       `json:"seat_number"`
	PassengerName string    `json:"passenger_name"`
	Contact       string    `json:"contact"`
	PriceCents    int64     `json:"price_cents"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	return BookingEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		Locator:       b.Locator,
		FlightID:      b.FlightID,
		FlightCode:    b.FlightCode,
		SeatNumber:    b.SeatNumber,
		PassengerName: b.PassengerName,
		Contact:       b.Contact,
		PriceCents:    b.PriceCents,
		Status:        string(b.Status),
		OccurredAt:    time.Now().UTC(),
	}
}

// Publisher delivers a payload to a named topic or queue.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }

package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airfare/internal/events"
	"go.uber.org/zap"
)

// Sender turns booking events into passenger notifications. Delivery is a
// structured log line; no mail gateway is wired.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(_ context.Context, event events.BookingEvent) error {
	if event.Contact == "" {
		s.log.Debug("no contact on booking, notification skipped", zap.String("locator", event.Locator))
		return nil
	}
	s.log.Info("notification sent",
		zap.String("to", event.Contact),
		zap.String("subject", Subject(event)),
		zap.String("locator", event.Locator),
		zap.String("flight", event.FlightCode),
		zap.Int("seat", event.SeatNumber),
	)
	return nil
}

func Subject(event events.BookingEvent) string {
	switch event.Type {
	case events.BookingCreated:
		return fmt.Sprintf("Booking %s received for flight %s", event.Locator, event.FlightCode)
	case events.BookingPaid:
		return fmt.Sprintf("Payment received for booking %s", event.Locator)
	case events.BookingPaymentFailed:
		return fmt.Sprintf("Payment failed for booking %s, seat %d released", event.Locator, event.SeatNumber)
	case events.BookingConfirmed:
		return fmt.Sprintf("Booking %s confirmed, seat %d", event.Locator, event.SeatNumber)
	case events.BookingCancelled:
		return fmt.Sprintf("Booking %s cancelled", event.Locator)
	default:
		return fmt.Sprintf("Update on booking %s", event.Locator)
	}
}

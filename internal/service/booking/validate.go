package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/airfare/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Length limits follow the bookings and flights columns in schema.sql.
type CreateBookingInput struct {
	FlightCode    string `json:"flight_code" validate:"required,max=10"`
	PassengerName string `json:"passenger_name" validate:"required,max=100"`
	Contact       string `json:"contact" validate:"max=50"`
	// SeatNumber 0 lets the allocator pick the lowest free seat.
	SeatNumber int `json:"seat_number" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (in *CreateBookingInput) normalize() {
	in.FlightCode = strings.ToUpper(strings.TrimSpace(in.FlightCode))
	in.PassengerName = strings.TrimSpace(in.PassengerName)
	in.Contact = strings.TrimSpace(in.Contact)
}

func (in CreateBookingInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

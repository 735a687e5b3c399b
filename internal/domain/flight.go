package domain

import "time"

type Flight struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	Operator       string    `json:"operator"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	BaseFareCents  int64     `json:"base_fare_cents"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DurationMinutes is zero when either timestamp is missing.
func (f Flight) DurationMinutes() int {
	if f.DepartureTime.IsZero() || f.ArrivalTime.IsZero() {
		return 0
	}
	return int(f.ArrivalTime.Sub(f.DepartureTime) / time.Minute)
}

// ClampSeats bounds n to [0, capacity].
func (f Flight) ClampSeats(n int) int {
	if n < 0 {
		return 0
	}
	if n > f.Capacity {
		return f.Capacity
	}
	return n
}

type FlightSort string

const (
	SortNone     FlightSort = ""
	SortPrice    FlightSort = "price"
	SortDuration FlightSort = "duration"
)

type FlightSearch struct {
	Origin      string
	Destination string
	// Date restricts departures to a calendar day (UTC) when non-zero.
	Date time.Time
	Sort FlightSort
}

// FlightOffer is a flight with its current dynamic price.
type FlightOffer struct {
	Flight
	DynamicPriceCents int64 `json:"dynamic_price_cents"`
	DurationMinutes   int   `json:"duration_minutes"`
}

// FareChange is an immutable fare_history row.
type FareChange struct {
	ID            int64     `json:"id"`
	FlightID      int64     `json:"flight_id"`
	OldPriceCents int64     `json:"old_price_cents"`
	NewPriceCents int64     `json:"new_price_cents"`
	ChangedAt     time.Time `json:"changed_at"`
}

type Quote struct {
	FlightCode        string `json:"flight_code"`
	BaseFareCents     int64  `json:"base_fare_cents"`
	DynamicPriceCents int64  `json:"dynamic_price_cents"`
}

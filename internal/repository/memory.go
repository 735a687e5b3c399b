package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/airfare/internal/domain"
)

var errRowNotLocked = errors.New("row not locked by transaction")

// MemoryStore keeps all tables in process memory. It honours the same
// locking contract as the Postgres store: ForUpdate reads take a per-row
// mutex that is held until the transaction ends, and staged writes become
// visible atomically on commit.
type MemoryStore struct {
	mu        sync.RWMutex
	flights   map[int64]domain.Flight
	flightIDs map[string]int64
	bookings  map[int64]domain.Booking
	locators  map[string]int64
	legacy    map[int64]domain.LegacyReservation
	fares     []domain.FareChange

	nextFlightID  int64
	nextBookingID int64
	nextLegacyID  int64
	nextFareID    int64

	locks rowLocks
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		flights:   make(map[int64]domain.Flight),
		flightIDs: make(map[string]int64),
		bookings:  make(map[int64]domain.Booking),
		locators:  make(map[string]int64),
		legacy:    make(map[int64]domain.LegacyReservation),
		locks:     rowLocks{m: make(map[string]*sync.Mutex)},
		now:       time.Now,
	}
}

// AddFlight inserts or replaces a flight keyed by its code.
func (s *MemoryStore) AddFlight(f domain.Flight) domain.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.flightIDs[f.Code]; ok {
		f.ID = id
	} else {
		s.nextFlightID++
		f.ID = s.nextFlightID
	}
	now := s.now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	s.flights[f.ID] = f
	s.flightIDs[f.Code] = f.ID
	return f
}

func (s *MemoryStore) AddLegacyReservation(r domain.LegacyReservation) domain.LegacyReservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextLegacyID++
	r.ID = s.nextLegacyID
	s.legacy[r.ID] = r
	return r
}

func (s *MemoryStore) Flights() FlightRepository { return memFlights{s} }

func (s *MemoryStore) Bookings() BookingRepository { return memBookings{s} }

func (s *MemoryStore) LegacyReservations() LegacyReservationRepository { return memLegacy{s} }

func (s *MemoryStore) FareHistory() FareHistoryRepository { return memFares{s} }

func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &memTx{
		s:        s,
		held:     make(map[string]*sync.Mutex),
		flights:  make(map[int64]domain.Flight),
		bookings: make(map[int64]domain.Booking),
	}
	defer tx.release()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

type rowLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *rowLocks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.m[key]
	if !ok {
		m = &sync.Mutex{}
		l.m[key] = m
	}
	return m
}

func flightKey(id int64) string  { return fmt.Sprintf("flight:%d", id) }
func bookingKey(id int64) string { return fmt.Sprintf("booking:%d", id) }

type memTx struct {
	s    *MemoryStore
	held map[string]*sync.Mutex

	flights  map[int64]domain.Flight
	bookings map[int64]domain.Booking
	fares    []domain.FareChange
}

func (t *memTx) lock(key string) {
	if _, ok := t.held[key]; ok {
		return
	}
	m := t.s.locks.get(key)
	m.Lock()
	t.held[key] = m
}

func (t *memTx) release() {
	for key, m := range t.held {
		// rows inserted by this transaction are marked held without a mutex
		if m != nil {
			m.Unlock()
		}
		delete(t.held, key)
	}
}

func (t *memTx) locked(key string) bool {
	_, ok := t.held[key]
	return ok
}

func (t *memTx) flight(id int64) (domain.Flight, bool) {
	if f, ok := t.flights[id]; ok {
		return f, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	f, ok := t.s.flights[id]
	return f, ok
}

func (t *memTx) booking(id int64) (domain.Booking, bool) {
	b, ok := t.bookings[id]
	if !ok {
		t.s.mu.RLock()
		b, ok = t.s.bookings[id]
		t.s.mu.RUnlock()
	}
	if ok {
		if f, found := t.flight(b.FlightID); found {
			b.FlightCode = f.Code
		}
	}
	return b, ok
}

func (t *memTx) GetFlightForUpdate(ctx context.Context, code string) (*domain.Flight, error) {
	t.s.mu.RLock()
	id, ok := t.s.flightIDs[code]
	t.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	return t.GetFlightByIDForUpdate(ctx, id)
}

func (t *memTx) GetFlightByIDForUpdate(_ context.Context, id int64) (*domain.Flight, error) {
	t.lock(flightKey(id))
	f, ok := t.flight(id)
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	return &f, nil
}

func (t *memTx) SetAvailableSeats(_ context.Context, flightID int64, available int) error {
	if !t.locked(flightKey(flightID)) {
		return fmt.Errorf("flight %d: %w", flightID, errRowNotLocked)
	}
	f, ok := t.flight(flightID)
	if !ok {
		return domain.ErrFlightNotFound
	}
	if available < 0 || available > f.Capacity {
		return fmt.Errorf("available seats %d outside [0, %d]", available, f.Capacity)
	}
	f.AvailableSeats = available
	f.UpdatedAt = t.s.now()
	t.flights[flightID] = f
	return nil
}

func (t *memTx) HeldSeats(_ context.Context, flightID int64) (map[int]struct{}, error) {
	held := make(map[int]struct{})

	t.s.mu.RLock()
	for id, b := range t.s.bookings {
		if _, staged := t.bookings[id]; staged {
			continue
		}
		if b.FlightID == flightID && b.Status.HoldsSeat() {
			held[b.SeatNumber] = struct{}{}
		}
	}
	t.s.mu.RUnlock()

	for _, b := range t.bookings {
		if b.FlightID == flightID && b.Status.HoldsSeat() {
			held[b.SeatNumber] = struct{}{}
		}
	}
	return held, nil
}

func (t *memTx) LocatorExists(_ context.Context, locator string) (bool, error) {
	for _, b := range t.bookings {
		if b.Locator == locator {
			return true, nil
		}
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	_, ok := t.s.locators[locator]
	return ok, nil
}

func (t *memTx) InsertBooking(_ context.Context, b *domain.Booking) error {
	if !t.locked(flightKey(b.FlightID)) {
		return fmt.Errorf("flight %d: %w", b.FlightID, errRowNotLocked)
	}

	t.s.mu.Lock()
	t.s.nextBookingID++
	b.ID = t.s.nextBookingID
	t.s.mu.Unlock()

	now := t.s.now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if f, ok := t.flight(b.FlightID); ok {
		b.FlightCode = f.Code
	}
	t.bookings[b.ID] = *b
	t.held[bookingKey(b.ID)] = nil
	return nil
}

func (t *memTx) GetBookingForUpdate(_ context.Context, locator string) (*domain.Booking, error) {
	for _, b := range t.bookings {
		if b.Locator == locator {
			found, _ := t.booking(b.ID)
			return &found, nil
		}
	}

	t.s.mu.RLock()
	id, ok := t.s.locators[locator]
	t.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrBookingNotFound
	}

	t.lock(bookingKey(id))
	b, ok := t.booking(id)
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (t *memTx) UpdateBookingStatus(_ context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	if !t.locked(bookingKey(id)) {
		return nil, fmt.Errorf("booking %d: %w", id, errRowNotLocked)
	}
	b, ok := t.booking(id)
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = t.s.now()
	t.bookings[id] = b
	return &b, nil
}

func (t *memTx) AppendFareChange(_ context.Context, c *domain.FareChange) error {
	c.ChangedAt = t.s.now()
	t.fares = append(t.fares, *c)
	return nil
}

func (t *memTx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, b := range t.bookings {
		if owner, ok := s.locators[b.Locator]; ok && owner != id {
			return fmt.Errorf("locator %s already issued", b.Locator)
		}
		if !b.Status.HoldsSeat() {
			continue
		}
		for otherID, other := range s.bookings {
			if otherID == id {
				continue
			}
			if _, staged := t.bookings[otherID]; staged {
				continue
			}
			if other.FlightID == b.FlightID && other.SeatNumber == b.SeatNumber && other.Status.HoldsSeat() {
				return fmt.Errorf("seat %d: %w", b.SeatNumber, domain.ErrSeatTaken)
			}
		}
	}

	for id, f := range t.flights {
		s.flights[id] = f
	}
	for id, b := range t.bookings {
		b.FlightCode = ""
		s.bookings[id] = b
		s.locators[b.Locator] = id
	}
	for _, c := range t.fares {
		s.nextFareID++
		c.ID = s.nextFareID
		s.fares = append(s.fares, c)
	}
	return nil
}

type memFlights struct{ s *MemoryStore }

func (r memFlights) List(ctx context.Context) ([]domain.Flight, error) {
	return r.Search(ctx, domain.FlightSearch{})
}

func (r memFlights) GetByCode(_ context.Context, code string) (*domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.flightIDs[code]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	f := r.s.flights[id]
	return &f, nil
}

func (r memFlights) Search(_ context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	day := q.Date.UTC().Format(time.DateOnly)
	flights := make([]domain.Flight, 0, len(r.s.flights))
	for _, f := range r.s.flights {
		if q.Origin != "" && f.Origin != q.Origin {
			continue
		}
		if q.Destination != "" && f.Destination != q.Destination {
			continue
		}
		if !q.Date.IsZero() && f.DepartureTime.UTC().Format(time.DateOnly) != day {
			continue
		}
		flights = append(flights, f)
	}
	sort.Slice(flights, func(i, j int) bool {
		if flights[i].DepartureTime.Equal(flights[j].DepartureTime) {
			return flights[i].ID < flights[j].ID
		}
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})
	return flights, nil
}

type memBookings struct{ s *MemoryStore }

func (r memBookings) withFlight(b domain.Booking) domain.Booking {
	if f, ok := r.s.flights[b.FlightID]; ok {
		b.FlightCode = f.Code
	}
	return b
}

func (r memBookings) GetByLocator(_ context.Context, locator string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.locators[locator]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	b := r.withFlight(r.s.bookings[id])
	return &b, nil
}

func (r memBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	b = r.withFlight(b)
	return &b, nil
}

func (r memBookings) List(_ context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	name := strings.ToLower(filter.PassengerName)
	list := make([]domain.Booking, 0)
	for _, b := range r.s.bookings {
		f := r.s.flights[b.FlightID]
		switch {
		case filter.ID != 0 && b.ID != filter.ID,
			filter.Locator != "" && b.Locator != filter.Locator,
			name != "" && !strings.Contains(strings.ToLower(b.PassengerName), name),
			filter.FlightCode != "" && f.Code != filter.FlightCode,
			filter.Origin != "" && f.Origin != filter.Origin,
			filter.Destination != "" && f.Destination != filter.Destination:
			continue
		}
		list = append(list, r.withFlight(b))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type memLegacy struct{ s *MemoryStore }

func (r memLegacy) GetByID(_ context.Context, id int64) (*domain.LegacyReservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.legacy[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &res, nil
}

func (r memLegacy) List(_ context.Context, filter domain.BookingFilter) ([]domain.LegacyReservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	name := strings.ToLower(filter.PassengerName)
	list := make([]domain.LegacyReservation, 0)
	for _, res := range r.s.legacy {
		switch {
		case filter.ID != 0 && res.ID != filter.ID,
			filter.FlightCode != "" && res.FlightCode != filter.FlightCode,
			filter.Origin != "" && res.Origin != filter.Origin,
			filter.Destination != "" && res.Destination != filter.Destination,
			name != "" && !strings.Contains(strings.ToLower(res.PassengerName), name):
			continue
		}
		list = append(list, res)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type memFares struct{ s *MemoryStore }

func (r memFares) Append(_ context.Context, c *domain.FareChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextFareID++
	c.ID = r.s.nextFareID
	c.ChangedAt = r.s.now()
	r.s.fares = append(r.s.fares, *c)
	return nil
}

func (r memFares) ListByFlight(_ context.Context, flightID int64, limit int) ([]domain.FareChange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]domain.FareChange, 0)
	for i := len(r.s.fares) - 1; i >= 0; i-- {
		if limit > 0 && len(list) == limit {
			break
		}
		if r.s.fares[i].FlightID == flightID {
			list = append(list, r.s.fares[i])
		}
	}
	return list, nil
}

var (
	_ TxManager                   = (*MemoryStore)(nil)
	_ Tx                          = (*memTx)(nil)
	_ FlightRepository            = memFlights{}
	_ BookingRepository           = memBookings{}
	_ LegacyReservationRepository = memLegacy{}
	_ FareHistoryRepository       = memFares{}
)

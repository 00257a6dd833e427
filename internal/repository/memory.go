package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Domenick1991/astrobookings/internal/domain"
)

// Memory stores keep records in maps guarded by a RWMutex and hand out copies,
// so callers can never mutate what is stored. Ids are assigned from a
// per-store counter and never reused.

type MemoryRocketRepository struct {
	mu      sync.RWMutex
	seq     int
	rockets map[string]domain.Rocket
}

func NewMemoryRocketRepository() *MemoryRocketRepository {
	return &MemoryRocketRepository{rockets: make(map[string]domain.Rocket)}
}

func (r *MemoryRocketRepository) Add(_ context.Context, rocket domain.Rocket) (domain.Rocket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	rocket = rocket.Clone()
	rocket.ID = formatID(rocketIDPrefix, r.seq)
	r.rockets[rocket.ID] = rocket
	return rocket.Clone(), nil
}

func (r *MemoryRocketRepository) List(_ context.Context) ([]domain.Rocket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rockets := make([]domain.Rocket, 0, len(r.rockets))
	for _, rocket := range r.rockets {
		rockets = append(rockets, rocket.Clone())
	}
	sort.Slice(rockets, func(i, j int) bool { return idLess(rockets[i].ID, rockets[j].ID) })
	return rockets, nil
}

func (r *MemoryRocketRepository) GetByID(_ context.Context, id string) (domain.Rocket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rocket, ok := r.rockets[id]
	if !ok {
		return domain.Rocket{}, ErrNotFound
	}
	return rocket.Clone(), nil
}

type MemoryFlightRepository struct {
	mu      sync.RWMutex
	seq     int
	flights map[string]domain.Flight
}

func NewMemoryFlightRepository() *MemoryFlightRepository {
	return &MemoryFlightRepository{flights: make(map[string]domain.Flight)}
}

func (r *MemoryFlightRepository) Add(_ context.Context, flight domain.Flight) (domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	flight.ID = formatID(flightIDPrefix, r.seq)
	r.flights[flight.ID] = flight
	return flight, nil
}

func (r *MemoryFlightRepository) List(_ context.Context) ([]domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flights := make([]domain.Flight, 0, len(r.flights))
	for _, flight := range r.flights {
		flights = append(flights, flight)
	}
	sort.Slice(flights, func(i, j int) bool { return idLess(flights[i].ID, flights[j].ID) })
	return flights, nil
}

func (r *MemoryFlightRepository) GetByID(_ context.Context, id string) (domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flight, ok := r.flights[id]
	if !ok {
		return domain.Flight{}, ErrNotFound
	}
	return flight, nil
}

func (r *MemoryFlightRepository) Update(_ context.Context, flight domain.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.flights[flight.ID]; !ok {
		return ErrNotFound
	}
	r.flights[flight.ID] = flight
	return nil
}

type MemoryBookingRepository struct {
	mu       sync.RWMutex
	seq      int
	bookings map[string]domain.Booking
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[string]domain.Booking)}
}

func (r *MemoryBookingRepository) Add(_ context.Context, booking domain.Booking) (domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	booking.ID = formatID(bookingIDPrefix, r.seq)
	r.bookings[booking.ID] = booking
	return booking, nil
}

func (r *MemoryBookingRepository) CountByFlightID(_ context.Context, flightID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, booking := range r.bookings {
		if booking.FlightID == flightID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryBookingRepository) ListByFlightID(_ context.Context, flightID string) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookings := make([]domain.Booking, 0)
	for _, booking := range r.bookings {
		if booking.FlightID == flightID {
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return idLess(bookings[i].ID, bookings[j].ID) })
	return bookings, nil
}

var (
	_ RocketRepository  = (*MemoryRocketRepository)(nil)
	_ FlightRepository  = (*MemoryFlightRepository)(nil)
	_ BookingRepository = (*MemoryBookingRepository)(nil)
)

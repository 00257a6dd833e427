package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/astrobookings/internal/clock"
	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/Domenick1991/astrobookings/internal/events"
	"github.com/Domenick1991/astrobookings/internal/gate"
	"github.com/Domenick1991/astrobookings/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) domain.Result[domain.Booking]
	ListBookings(ctx context.Context, flightID string) domain.Result[[]domain.Booking]
}

type EventPublisher interface {
	Publish(ctx context.Context, t events.Transition) error
}

// DefaultPublishTimeout bounds how long a transition event may take to publish
// once the flight has been released.
const DefaultPublishTimeout = 5 * time.Second

type BookingService struct {
	bookings       repository.BookingRepository
	flights        repository.FlightRepository
	rockets        repository.RocketRepository
	gate           *gate.Gate
	clock          clock.Clock
	publisher      EventPublisher
	publishTimeout time.Duration
	logger         *slog.Logger
}

type CreateBookingInput struct {
	FlightID       string `json:"flightId"`
	PassengerName  string `json:"passengerName"`
	PassengerEmail string `json:"passengerEmail"`
}

type BookingServiceOption func(*BookingService)

func WithEventPublisher(p EventPublisher) BookingServiceOption {
	return func(s *BookingService) {
		s.publisher = p
	}
}

func WithPublishTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

func WithClock(c clock.Clock) BookingServiceOption {
	return func(s *BookingService) {
		s.clock = c
	}
}

// NewBookingService wires the admission flow. g must be the same gate the
// flight service uses so bookings and cancellations of one flight never overlap.
func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	rockets repository.RocketRepository,
	g *gate.Gate,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:       bookings,
		flights:        flights,
		rockets:        rockets,
		gate:           g,
		clock:          clock.Real(),
		publishTimeout: DefaultPublishTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking admits one passenger onto a flight. Everything from the flight
// lookup to the state update runs while holding the flight's gate lease, so the
// capacity check and the write that depends on it cannot interleave with
// another booking for the same flight. A resulting transition event is
// published after the lease is released.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) domain.Result[domain.Booking] {
	name := strings.TrimSpace(input.PassengerName)
	email := strings.TrimSpace(input.PassengerEmail)

	if strings.TrimSpace(input.FlightID) == "" {
		return domain.ValidationFailed[domain.Booking]("flightId is required")
	}
	if name == "" {
		return domain.ValidationFailed[domain.Booking]("passengerName is required")
	}
	if email == "" {
		return domain.ValidationFailed[domain.Booking]("passengerEmail is required")
	}

	lease, err := s.gate.Acquire(ctx, input.FlightID)
	if err != nil {
		s.logger.WarnContext(ctx, "booking request abandoned while waiting for flight", "flight_id", input.FlightID, "error", err)
		return domain.UnexpectedFailure[domain.Booking]("booking request cancelled")
	}
	defer lease.Release()

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFound[domain.Booking]()
		}
		s.logger.ErrorContext(ctx, "load flight", "flight_id", input.FlightID, "error", err)
		return domain.UnexpectedFailure[domain.Booking]("failed to load flight")
	}

	if !flight.State.Bookable() {
		return domain.Conflict[domain.Booking]("flight is not bookable")
	}

	rocket, err := s.rockets.GetByID(ctx, flight.RocketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.ErrorContext(ctx, "flight references missing rocket", "flight_id", flight.ID, "rocket_id", flight.RocketID)
			return domain.UnexpectedFailure[domain.Booking]("rocket not found for flight")
		}
		s.logger.ErrorContext(ctx, "load rocket", "rocket_id", flight.RocketID, "error", err)
		return domain.UnexpectedFailure[domain.Booking]("failed to load rocket")
	}

	count, err := s.bookings.CountByFlightID(ctx, flight.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "count bookings", "flight_id", flight.ID, "error", err)
		return domain.UnexpectedFailure[domain.Booking]("failed to count bookings")
	}
	if count >= rocket.Capacity {
		return domain.Conflict[domain.Booking]("flight capacity exceeded")
	}

	newCount := count + 1
	discount := domain.DetermineDiscount(newCount, rocket.Capacity, flight.MinimumPassengers)

	// From here on the caller going away must not leave a booking without its
	// state transition.
	persistCtx := context.WithoutCancel(ctx)

	booking, err := s.bookings.Add(persistCtx, domain.Booking{
		FlightID:       flight.ID,
		PassengerName:  name,
		PassengerEmail: email,
		FinalPrice:     discount.Apply(flight.BasePrice),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "save booking", "flight_id", flight.ID, "error", err)
		return domain.UnexpectedFailure[domain.Booking]("failed to save booking")
	}

	var transition *events.Transition
	from := flight.State
	next := domain.NextStateAfterBooking(from, newCount, rocket.Capacity, flight.MinimumPassengers)
	if next != from {
		flight.State = next
		if err := s.flights.Update(persistCtx, flight); err != nil {
			s.logger.ErrorContext(ctx, "transition flight state",
				"flight_id", flight.ID, "booking_id", booking.ID, "from", from, "to", next, "error", err)
			return domain.UnexpectedFailure[domain.Booking]("failed to transition flight state")
		}
		transition = s.transitionFor(persistCtx, flight, from, newCount, rocket.Capacity)
	}

	lease.Release()
	s.publish(ctx, transition)

	s.logger.InfoContext(ctx, "booking created",
		"booking_id", booking.ID,
		"flight_id", flight.ID,
		"discount", discount.Rule,
		"final_price", booking.FinalPrice,
		"state", flight.State,
	)
	return domain.Success(booking)
}

// ListBookings returns the bookings of an existing flight ordered by id.
func (s *BookingService) ListBookings(ctx context.Context, flightID string) domain.Result[[]domain.Booking] {
	if strings.TrimSpace(flightID) == "" {
		return domain.NotFound[[]domain.Booking]()
	}

	if _, err := s.flights.GetByID(ctx, flightID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFound[[]domain.Booking]()
		}
		s.logger.ErrorContext(ctx, "load flight", "flight_id", flightID, "error", err)
		return domain.UnexpectedFailure[[]domain.Booking]("failed to load flight")
	}

	bookings, err := s.bookings.ListByFlightID(ctx, flightID)
	if err != nil {
		s.logger.ErrorContext(ctx, "list bookings", "flight_id", flightID, "error", err)
		return domain.UnexpectedFailure[[]domain.Booking]("failed to list bookings")
	}
	return domain.Success(bookings)
}

// transitionFor snapshots the event while the flight is still held so the
// passenger list matches the state change.
func (s *BookingService) transitionFor(ctx context.Context, flight domain.Flight, from domain.FlightState, count, capacity int) *events.Transition {
	if s.publisher == nil {
		return nil
	}

	bookings, err := s.bookings.ListByFlightID(ctx, flight.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "list passengers for event", "flight_id", flight.ID, "error", err)
	}

	return &events.Transition{
		Flight:     flight,
		From:       from,
		Bookings:   count,
		Capacity:   capacity,
		Passengers: domain.PassengersOf(bookings),
		At:         s.clock.Now(),
	}
}

func (s *BookingService) publish(ctx context.Context, t *events.Transition) {
	if t == nil {
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(publishCtx, *t); err != nil {
		s.logger.WarnContext(ctx, "publish flight event", "flight_id", t.Flight.ID, "state", t.Flight.State, "error", err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)

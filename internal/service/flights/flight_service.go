package flights

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Domenick1991/astrobookings/internal/clock"
	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/Domenick1991/astrobookings/internal/events"
	"github.com/Domenick1991/astrobookings/internal/gate"
	"github.com/Domenick1991/astrobookings/internal/repository"
)

type FlightUseCase interface {
	CreateFlight(ctx context.Context, input CreateFlightInput) domain.Result[domain.Flight]
	GetFlight(ctx context.Context, id string) domain.Result[domain.Flight]
	ListFutureFlights(ctx context.Context, state *string) domain.Result[[]domain.Flight]
	Cancel(ctx context.Context, id string) domain.Result[domain.Flight]
	Perform(ctx context.Context, id string) domain.Result[domain.Flight]
}

type EventPublisher interface {
	Publish(ctx context.Context, t events.Transition) error
}

// DefaultPublishTimeout bounds a transition event publish made after the
// flight has been released.
const DefaultPublishTimeout = 5 * time.Second

type FlightService struct {
	flights        repository.FlightRepository
	rockets        repository.RocketRepository
	bookings       repository.BookingRepository
	gate           *gate.Gate
	clock          clock.Clock
	publisher      EventPublisher
	publishTimeout time.Duration
	logger         *slog.Logger
}

type CreateFlightInput struct {
	RocketID          string    `json:"rocketId"`
	LaunchDate        time.Time `json:"launchDate"`
	BasePrice         float64   `json:"basePrice"`
	MinimumPassengers *int      `json:"minimumPassengers"`
}

type FlightServiceOption func(*FlightService)

func WithEventPublisher(p EventPublisher) FlightServiceOption {
	return func(s *FlightService) {
		s.publisher = p
	}
}

func WithPublishTimeout(d time.Duration) FlightServiceOption {
	return func(s *FlightService) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) FlightServiceOption {
	return func(s *FlightService) {
		s.logger = logger
	}
}

func WithClock(c clock.Clock) FlightServiceOption {
	return func(s *FlightService) {
		s.clock = c
	}
}

func NewFlightService(
	flights repository.FlightRepository,
	rockets repository.RocketRepository,
	bookings repository.BookingRepository,
	g *gate.Gate,
	opts ...FlightServiceOption,
) *FlightService {
	service := &FlightService{
		flights:        flights,
		rockets:        rockets,
		bookings:       bookings,
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

func (s *FlightService) CreateFlight(ctx context.Context, input CreateFlightInput) domain.Result[domain.Flight] {
	if strings.TrimSpace(input.RocketID) == "" {
		return domain.ValidationFailed[domain.Flight]("rocketId is required")
	}
	if !input.LaunchDate.After(s.clock.Now()) {
		return domain.ValidationFailed[domain.Flight]("launchDate must be in the future")
	}
	if input.BasePrice <= 0 {
		return domain.ValidationFailed[domain.Flight]("basePrice must be > 0")
	}
	minimum := domain.DefaultMinimumPassengers
	if input.MinimumPassengers != nil {
		minimum = *input.MinimumPassengers
	}
	if minimum <= 0 {
		return domain.ValidationFailed[domain.Flight]("minimumPassengers must be > 0")
	}

	if _, err := s.rockets.GetByID(ctx, input.RocketID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFound[domain.Flight]()
		}
		s.logger.ErrorContext(ctx, "load rocket", "rocket_id", input.RocketID, "error", err)
		return domain.UnexpectedFailure[domain.Flight]("failed to load rocket")
	}

	flight, err := s.flights.Add(ctx, domain.Flight{
		RocketID:          input.RocketID,
		LaunchDate:        input.LaunchDate.UTC(),
		BasePrice:         input.BasePrice,
		MinimumPassengers: minimum,
		State:             domain.FlightStateScheduled,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "save flight", "rocket_id", input.RocketID, "error", err)
		return domain.UnexpectedFailure[domain.Flight]("failed to save flight")
	}

	s.logger.InfoContext(ctx, "flight created", "flight_id", flight.ID, "rocket_id", flight.RocketID, "launch_date", flight.LaunchDate)
	return domain.Success(flight)
}

func (s *FlightService) GetFlight(ctx context.Context, id string) domain.Result[domain.Flight] {
	if strings.TrimSpace(id) == "" {
		return domain.NotFound[domain.Flight]()
	}
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFound[domain.Flight]()
		}
		s.logger.ErrorContext(ctx, "load flight", "flight_id", id, "error", err)
		return domain.UnexpectedFailure[domain.Flight]("failed to load flight")
	}
	return domain.Success(flight)
}

// ListFutureFlights returns flights launching after now, optionally only those
// in one state, ordered by launch date and then id. It takes no gate lease, so
// a flight being booked concurrently may show either its old or new state.
func (s *FlightService) ListFutureFlights(ctx context.Context, state *string) domain.Result[[]domain.Flight] {
	var filter domain.FlightState
	if state != nil {
		if strings.TrimSpace(*state) == "" {
			return domain.ValidationFailed[[]domain.Flight]("state must be a valid flight state")
		}
		parsed, err := domain.ParseFlightState(*state)
		if err != nil {
			return domain.ValidationFailed[[]domain.Flight]("state must be one of: " + stateList())
		}
		filter = parsed
	}

	all, err := s.flights.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list flights", "error", err)
		return domain.UnexpectedFailure[[]domain.Flight]("failed to list flights")
	}

	now := s.clock.Now()
	flights := make([]domain.Flight, 0, len(all))
	for _, f := range all {
		if !f.LaunchDate.After(now) {
			continue
		}
		if filter != "" && f.State != filter {
			continue
		}
		flights = append(flights, f)
	}

	sort.SliceStable(flights, func(i, j int) bool {
		if !flights[i].LaunchDate.Equal(flights[j].LaunchDate) {
			return flights[i].LaunchDate.Before(flights[j].LaunchDate)
		}
		return flights[i].ID < flights[j].ID
	})
	return domain.Success(flights)
}

// Cancel moves a flight to CANCELLED and notifies its passengers. Cancelling an
// already cancelled flight succeeds without doing anything.
func (s *FlightService) Cancel(ctx context.Context, id string) domain.Result[domain.Flight] {
	return s.finish(ctx, id, finishRule{
		target:         domain.FlightStateCancelled,
		blockedBy:      domain.FlightStateDone,
		blockedMessage: "flight cannot be cancelled because it is already DONE",
		failMessage:    "failed to cancel flight",
	})
}

// Perform marks a flight DONE. Performing an already completed flight succeeds
// without doing anything.
func (s *FlightService) Perform(ctx context.Context, id string) domain.Result[domain.Flight] {
	return s.finish(ctx, id, finishRule{
		target:         domain.FlightStateDone,
		blockedBy:      domain.FlightStateCancelled,
		blockedMessage: "flight cannot be performed because it is CANCELLED",
		failMessage:    "failed to mark flight as DONE",
	})
}

// finishRule describes a move into one of the two terminal states.
type finishRule struct {
	target         domain.FlightState
	blockedBy      domain.FlightState
	blockedMessage string
	failMessage    string
}

func (s *FlightService) finish(ctx context.Context, id string, rule finishRule) domain.Result[domain.Flight] {
	if strings.TrimSpace(id) == "" {
		return domain.NotFound[domain.Flight]()
	}

	lease, err := s.gate.Acquire(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "flight request abandoned while waiting for flight", "flight_id", id, "error", err)
		return domain.UnexpectedFailure[domain.Flight]("flight request cancelled")
	}
	defer lease.Release()

	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFound[domain.Flight]()
		}
		s.logger.ErrorContext(ctx, "load flight", "flight_id", id, "error", err)
		return domain.UnexpectedFailure[domain.Flight]("failed to load flight")
	}

	switch flight.State {
	case rule.target:
		return domain.Success(flight)
	case rule.blockedBy:
		return domain.Conflict[domain.Flight](rule.blockedMessage)
	}

	persistCtx := context.WithoutCancel(ctx)
	from := flight.State
	flight.State = rule.target
	if err := s.flights.Update(persistCtx, flight); err != nil {
		s.logger.ErrorContext(ctx, "update flight state", "flight_id", id, "from", from, "to", rule.target, "error", err)
		return domain.UnexpectedFailure[domain.Flight](rule.failMessage)
	}

	transition := s.transitionFor(persistCtx, flight, from)
	lease.Release()
	s.publish(ctx, transition)

	s.logger.InfoContext(ctx, "flight state changed", "flight_id", id, "from", from, "to", flight.State)
	return domain.Success(flight)
}

func (s *FlightService) transitionFor(ctx context.Context, flight domain.Flight, from domain.FlightState) *events.Transition {
	if s.publisher == nil {
		return nil
	}

	bookings, err := s.bookings.ListByFlightID(ctx, flight.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "list passengers for event", "flight_id", flight.ID, "error", err)
	}

	capacity := 0
	if rocket, err := s.rockets.GetByID(ctx, flight.RocketID); err == nil {
		capacity = rocket.Capacity
	} else {
		s.logger.WarnContext(ctx, "load rocket for event", "rocket_id", flight.RocketID, "error", err)
	}

	return &events.Transition{
		Flight:     flight,
		From:       from,
		Bookings:   len(bookings),
		Capacity:   capacity,
		Passengers: domain.PassengersOf(bookings),
		At:         s.clock.Now(),
	}
}

// publish runs outside the gate on its own deadline; the caller's cancellation
// does not drop the event.
func (s *FlightService) publish(ctx context.Context, t *events.Transition) {
	if t == nil {
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(publishCtx, *t); err != nil {
		s.logger.WarnContext(ctx, "publish flight event", "flight_id", t.Flight.ID, "state", t.Flight.State, "error", err)
	}
}

func stateList() string {
	states := domain.FlightStates()
	names := make([]string, len(states))
	for i, st := range states {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

var _ FlightUseCase = (*FlightService)(nil)

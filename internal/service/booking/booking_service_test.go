package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Domenick1991/astrobookings/internal/clock"
	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/Domenick1991/astrobookings/internal/events"
	"github.com/Domenick1991/astrobookings/internal/gate"
	"github.com/Domenick1991/astrobookings/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, t events.Transition) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// stallingPublisher blocks like a writer facing an unreachable broker until it
// is unblocked or its context ends.
type stallingPublisher struct {
	entered chan struct{}
	unblock chan struct{}
}

func newStallingPublisher() *stallingPublisher {
	return &stallingPublisher{entered: make(chan struct{}, 8), unblock: make(chan struct{})}
}

func (p *stallingPublisher) Publish(ctx context.Context, _ events.Transition) error {
	p.entered <- struct{}{}
	select {
	case <-p.unblock:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// failingUpdates stores flights in memory but refuses every state change.
type failingUpdates struct {
	*repository.MemoryFlightRepository
}

func (failingUpdates) Update(context.Context, domain.Flight) error {
	return errors.New("disk full")
}

type fixture struct {
	bookings *repository.MemoryBookingRepository
	flights  repository.FlightRepository
	rockets  *repository.MemoryRocketRepository
	gate     *gate.Gate
	clock    *clock.FakeClock
}

var now = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	return &fixture{
		bookings: repository.NewMemoryBookingRepository(),
		flights:  repository.NewMemoryFlightRepository(),
		rockets:  repository.NewMemoryRocketRepository(),
		gate:     gate.New(),
		clock:    clock.Fake(now),
	}
}

func (f *fixture) service(opts ...BookingServiceOption) *BookingService {
	opts = append([]BookingServiceOption{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(f.clock),
	}, opts...)
	return NewBookingService(f.bookings, f.flights, f.rockets, f.gate, opts...)
}

func (f *fixture) addFlight(t *testing.T, capacity, minimum int, basePrice float64) domain.Flight {
	t.Helper()
	ctx := context.Background()
	rocket, err := f.rockets.Add(ctx, domain.Rocket{Name: "Falcon", Capacity: capacity, Range: domain.RocketRangeLEO})
	require.NoError(t, err)
	flight, err := f.flights.Add(ctx, domain.Flight{
		RocketID:          rocket.ID,
		LaunchDate:        now.Add(30 * 24 * time.Hour),
		BasePrice:         basePrice,
		MinimumPassengers: minimum,
		State:             domain.FlightStateScheduled,
	})
	require.NoError(t, err)
	return flight
}

func input(flightID string) CreateBookingInput {
	return CreateBookingInput{FlightID: flightID, PassengerName: "Ada Lovelace", PassengerEmail: "ada@example.com"}
}

func TestBookingService_CreateBooking_ValidationErrors(t *testing.T) {
	service := newFixture().service()

	testCases := []struct {
		name     string
		input    CreateBookingInput
		expected string
	}{
		{name: "blank flight", input: CreateBookingInput{FlightID: "  ", PassengerName: "Ada", PassengerEmail: "a@b.c"}, expected: "flightId is required"},
		{name: "blank name", input: CreateBookingInput{FlightID: "f0001", PassengerName: " \t", PassengerEmail: "a@b.c"}, expected: "passengerName is required"},
		{name: "blank email", input: CreateBookingInput{FlightID: "f0001", PassengerName: "Ada", PassengerEmail: ""}, expected: "passengerEmail is required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := service.CreateBooking(context.Background(), tc.input)
			assert.Equal(t, domain.OutcomeValidationFailed, res.Outcome)
			assert.Equal(t, tc.expected, res.Message)
		})
	}
}

func TestBookingService_CreateBooking_UnknownFlight(t *testing.T) {
	res := newFixture().service().CreateBooking(context.Background(), input("f0404"))
	assert.Equal(t, domain.OutcomeNotFound, res.Outcome)
}

func TestBookingService_CreateBooking_NotBookableStates(t *testing.T) {
	for _, state := range []domain.FlightState{domain.FlightStateCancelled, domain.FlightStateSoldOut, domain.FlightStateDone} {
		t.Run(string(state), func(t *testing.T) {
			f := newFixture()
			flight := f.addFlight(t, 4, 2, 100)
			flight.State = state
			require.NoError(t, f.flights.Update(context.Background(), flight))

			res := f.service().CreateBooking(context.Background(), input(flight.ID))
			assert.Equal(t, domain.OutcomeConflict, res.Outcome)
			assert.Equal(t, "flight is not bookable", res.Message)

			count, err := f.bookings.CountByFlightID(context.Background(), flight.ID)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestBookingService_CreateBooking_MissingRocket(t *testing.T) {
	f := newFixture()
	flight, err := f.flights.Add(context.Background(), domain.Flight{
		RocketID:          "r0404",
		LaunchDate:        now.Add(time.Hour),
		BasePrice:         100,
		MinimumPassengers: 2,
		State:             domain.FlightStateScheduled,
	})
	require.NoError(t, err)

	res := f.service().CreateBooking(context.Background(), input(flight.ID))
	assert.Equal(t, domain.OutcomeUnexpectedFailure, res.Outcome)
	assert.Equal(t, "rocket not found for flight", res.Message)
}

func TestBookingService_CreateBooking_PricesAndStates(t *testing.T) {
	f := newFixture()
	flight := f.addFlight(t, 3, 3, 100)
	service := f.service()
	ctx := context.Background()

	first := service.CreateBooking(ctx, input(flight.ID))
	require.True(t, first.OK())
	assert.InDelta(t, 90.0, first.Value.FinalPrice, 1e-9)
	assert.Equal(t, "b0001", first.Value.ID)

	second := service.CreateBooking(ctx, input(flight.ID))
	require.True(t, second.OK())
	assert.InDelta(t, 70.0, second.Value.FinalPrice, 1e-9)

	third := service.CreateBooking(ctx, input(flight.ID))
	require.True(t, third.OK())
	assert.InDelta(t, 100.0, third.Value.FinalPrice, 1e-9)

	stored, err := f.flights.GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStateSoldOut, stored.State)

	fourth := service.CreateBooking(ctx, input(flight.ID))
	assert.Equal(t, domain.OutcomeConflict, fourth.Outcome)
	assert.Equal(t, "flight is not bookable", fourth.Message)
}

func TestBookingService_CreateBooking_ConfirmsAtMinimum(t *testing.T) {
	f := newFixture()
	flight := f.addFlight(t, 10, 2, 200)
	service := f.service()
	ctx := context.Background()

	require.True(t, service.CreateBooking(ctx, input(flight.ID)).OK())
	stored, err := f.flights.GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStateScheduled, stored.State)

	require.True(t, service.CreateBooking(ctx, input(flight.ID)).OK())
	stored, err = f.flights.GetByID(ctx, flight.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStateConfirmed, stored.State)
}

func TestBookingService_CreateBooking_TrimsPassenger(t *testing.T) {
	f := newFixture()
	flight := f.addFlight(t, 5, 3, 100)

	res := f.service().CreateBooking(context.Background(), CreateBookingInput{
		FlightID:       flight.ID,
		PassengerName:  "  Ada  ",
		PassengerEmail: " ada@example.com\n",
	})
	require.True(t, res.OK())
	assert.Equal(t, "Ada", res.Value.PassengerName)
	assert.Equal(t, "ada@example.com", res.Value.PassengerEmail)
}

func TestBookingService_CreateBooking_TransitionFailureKeepsBooking(t *testing.T) {
	f := newFixture()
	memFlights := repository.NewMemoryFlightRepository()
	f.flights = failingUpdates{memFlights}
	flight := f.addFlight(t, 1, 1, 100)

	res := f.service().CreateBooking(context.Background(), input(flight.ID))
	assert.Equal(t, domain.OutcomeUnexpectedFailure, res.Outcome)
	assert.Equal(t, "failed to transition flight state", res.Message)

	count, err := f.bookings.CountByFlightID(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBookingService_CreateBooking_PublishesTransition(t *testing.T) {
	f := newFixture()
	flight := f.addFlight(t, 4, 1, 100)
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(tr events.Transition) bool {
		return tr.Flight.ID == flight.ID &&
			tr.From == domain.FlightStateScheduled &&
			tr.Flight.State == domain.FlightStateConfirmed &&
			tr.Bookings == 1 && tr.Capacity == 4 &&
			len(tr.Passengers) == 1 && tr.Passengers[0].Email == "ada@example.com" &&
			tr.At.Equal(now)
	})).Return(errors.New("broker down")).Once()

	res := f.service(WithEventPublisher(publisher)).CreateBooking(context.Background(), input(flight.ID))

	require.True(t, res.OK(), "publish failures must not fail the booking")
	publisher.AssertExpectations(t)
}

func TestBookingService_CreateBooking_NoEventWithoutTransition(t *testing.T) {
	f := newFixture()
	flight := f.addFlight(t, 4, 3, 100)
	publisher := new(MockPublisher)

	res := f.service(WithEventPublisher(publisher)).CreateBooking(context.Background(), input(flight.ID))

	require.True(t, res.OK())
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_StalledPublishDoesNotHoldFlight(t *testing.T) {
	f := newFixture()
	flight := f.addFlight(t, 4, 2, 100)
	publisher := newStallingPublisher()
	svc := f.service(WithEventPublisher(publisher))

	require.True(t, svc.CreateBooking(context.Background(), input(flight.ID)).OK())

	confirming := make(chan domain.Result[domain.Booking], 1)
	go func() {
		confirming <- svc.CreateBooking(context.Background(), input(flight.ID))
	}()

	select {
	case <-publisher.entered:
	case <-time.After(time.Second):
		t.Fatal("confirming booking never published")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	res := svc.CreateBooking(ctx, input(flight.ID))
	require.True(t, res.OK(), res.Message)

	close(publisher.unblock)
	require.True(t, (<-confirming).OK())

	stored, err := f.flights.GetByID(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStateConfirmed, stored.State)
}

func TestBookingService_CreateBooking_PublishIsBounded(t *testing.T) {
	f := newFixture()
	flight := f.addFlight(t, 4, 1, 100)
	publisher := newStallingPublisher()
	svc := f.service(WithEventPublisher(publisher), WithPublishTimeout(30*time.Millisecond))

	started := time.Now()
	res := svc.CreateBooking(context.Background(), input(flight.ID))

	require.True(t, res.OK(), "a slow broker must not fail the booking")
	assert.Less(t, time.Since(started), time.Second)
	assert.Len(t, publisher.entered, 1)
}

func TestBookingService_CreateBooking_CancelledWhileWaiting(t *testing.T) {
	f := newFixture()
	flight := f.addFlight(t, 4, 3, 100)

	held, err := f.gate.Acquire(context.Background(), flight.ID)
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := f.service().CreateBooking(ctx, input(flight.ID))
	assert.Equal(t, domain.OutcomeUnexpectedFailure, res.Outcome)
	assert.Equal(t, "booking request cancelled", res.Message)

	count, err := f.bookings.CountByFlightID(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBookingService_CreateBooking_ConcurrentNeverOverbooks(t *testing.T) {
	const capacity = 4
	const attempts = 25

	f := newFixture()
	flight := f.addFlight(t, capacity, 2, 100)
	service := f.service()

	results := make([]domain.Result[domain.Booking], attempts)
	var group errgroup.Group
	for i := 0; i < attempts; i++ {
		group.Go(func() error {
			results[i] = service.CreateBooking(context.Background(), input(flight.ID))
			return nil
		})
	}
	require.NoError(t, group.Wait())

	var successes, conflicts int
	fullPrice := 0
	for _, res := range results {
		switch res.Outcome {
		case domain.OutcomeSuccess:
			successes++
			if res.Value.FinalPrice == 100 {
				fullPrice++
			}
		case domain.OutcomeConflict:
			conflicts++
		}
	}

	assert.Equal(t, capacity, successes)
	assert.Equal(t, attempts-capacity, conflicts)
	assert.Equal(t, 1, fullPrice, "only the last seat goes at full price")

	count, err := f.bookings.CountByFlightID(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, count)

	stored, err := f.flights.GetByID(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStateSoldOut, stored.State)
}

func TestBookingService_ListBookings(t *testing.T) {
	f := newFixture()
	flight := f.addFlight(t, 4, 3, 100)
	other := f.addFlight(t, 4, 3, 100)
	service := f.service()
	ctx := context.Background()

	require.True(t, service.CreateBooking(ctx, input(flight.ID)).OK())
	require.True(t, service.CreateBooking(ctx, input(other.ID)).OK())
	require.True(t, service.CreateBooking(ctx, input(flight.ID)).OK())

	res := service.ListBookings(ctx, flight.ID)
	require.True(t, res.OK())
	require.Len(t, res.Value, 2)
	assert.Equal(t, "b0001", res.Value[0].ID)
	assert.Equal(t, "b0003", res.Value[1].ID)

	assert.Equal(t, domain.OutcomeNotFound, service.ListBookings(ctx, "").Outcome)
	assert.Equal(t, domain.OutcomeNotFound, service.ListBookings(ctx, "f0404").Outcome)
}

func TestNewBookingService_Defaults(t *testing.T) {
	f := newFixture()
	svc := NewBookingService(f.bookings, f.flights, f.rockets, f.gate)

	assert.Same(t, slog.Default(), svc.logger)
	assert.Equal(t, DefaultPublishTimeout, svc.publishTimeout)

	svc = NewBookingService(f.bookings, f.flights, f.rockets, f.gate, WithPublishTimeout(0))
	assert.Equal(t, DefaultPublishTimeout, svc.publishTimeout)
}

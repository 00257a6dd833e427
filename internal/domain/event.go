package domain

import "time"

type FlightEventType string

const (
	FlightEventConfirmed FlightEventType = "flight_confirmed"
	FlightEventSoldOut   FlightEventType = "flight_sold_out"
	FlightEventCancelled FlightEventType = "flight_cancelled"
	FlightEventDone      FlightEventType = "flight_done"
)

// FlightEventTypeFor maps a state reached by a transition to the event that
// announces it. SCHEDULED is never reached by a transition.
func FlightEventTypeFor(state FlightState) (FlightEventType, bool) {
	switch state {
	case FlightStateConfirmed:
		return FlightEventConfirmed, true
	case FlightStateSoldOut:
		return FlightEventSoldOut, true
	case FlightStateCancelled:
		return FlightEventCancelled, true
	case FlightStateDone:
		return FlightEventDone, true
	}
	return "", false
}

type Passenger struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FlightEvent is published once per successful lifecycle transition.
type FlightEvent struct {
	ID                string          `json:"id"`
	Type              FlightEventType `json:"type"`
	FlightID          string          `json:"flight_id"`
	FromState         FlightState     `json:"from_state"`
	ToState           FlightState     `json:"to_state"`
	BookingCount      int             `json:"booking_count"`
	Capacity          int             `json:"capacity"`
	MinimumPassengers int             `json:"minimum_passengers"`
	Passengers        []Passenger     `json:"passengers,omitempty"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// PassengersOf extracts the contact details of each booking.
func PassengersOf(bookings []Booking) []Passenger {
	passengers := make([]Passenger, 0, len(bookings))
	for _, b := range bookings {
		passengers = append(passengers, Passenger{Name: b.PassengerName, Email: b.PassengerEmail})
	}
	return passengers
}

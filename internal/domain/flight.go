package domain

import (
	"fmt"
	"strings"
	"time"
)

type FlightState string

const (
	FlightStateScheduled FlightState = "SCHEDULED"
	FlightStateConfirmed FlightState = "CONFIRMED"
	FlightStateSoldOut   FlightState = "SOLD_OUT"
	FlightStateCancelled FlightState = "CANCELLED"
	FlightStateDone      FlightState = "DONE"
)

// DefaultMinimumPassengers applies when a flight is created without an
// explicit threshold.
const DefaultMinimumPassengers = 5

// FlightStates lists every state in declaration order.
func FlightStates() []FlightState {
	return []FlightState{
		FlightStateScheduled,
		FlightStateConfirmed,
		FlightStateSoldOut,
		FlightStateCancelled,
		FlightStateDone,
	}
}

// ParseFlightState parses a state name case-insensitively.
func ParseFlightState(s string) (FlightState, error) {
	candidate := strings.ToUpper(strings.TrimSpace(s))
	for _, state := range FlightStates() {
		if string(state) == candidate {
			return state, nil
		}
	}
	return "", fmt.Errorf("unknown flight state %q", s)
}

// Bookable reports whether new bookings may be admitted in this state.
func (s FlightState) Bookable() bool {
	switch s {
	case FlightStateCancelled, FlightStateSoldOut, FlightStateDone:
		return false
	}
	return true
}

type Flight struct {
	ID                string
	RocketID          string
	LaunchDate        time.Time
	BasePrice         float64
	MinimumPassengers int
	State             FlightState
}

// NextStateAfterBooking derives the state a flight moves to once it holds
// newCount bookings. Filling the rocket wins over reaching the minimum, and
// confirmation only happens from SCHEDULED.
func NextStateAfterBooking(from FlightState, newCount, capacity, minimumPassengers int) FlightState {
	if newCount >= capacity && from != FlightStateSoldOut {
		return FlightStateSoldOut
	}
	if newCount >= minimumPassengers && from == FlightStateScheduled {
		return FlightStateConfirmed
	}
	return from
}

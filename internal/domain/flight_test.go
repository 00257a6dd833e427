package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlightState(t *testing.T) {
	testCases := []struct {
		input    string
		expected FlightState
	}{
		{"SCHEDULED", FlightStateScheduled},
		{"scheduled", FlightStateScheduled},
		{"  Confirmed ", FlightStateConfirmed},
		{"sold_out", FlightStateSoldOut},
		{"Cancelled", FlightStateCancelled},
		{"done", FlightStateDone},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			state, err := ParseFlightState(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, state)
		})
	}

	_, err := ParseFlightState("boarding")
	assert.Error(t, err)
}

func TestFlightState_Bookable(t *testing.T) {
	assert.True(t, FlightStateScheduled.Bookable())
	assert.True(t, FlightStateConfirmed.Bookable())
	assert.False(t, FlightStateSoldOut.Bookable())
	assert.False(t, FlightStateCancelled.Bookable())
	assert.False(t, FlightStateDone.Bookable())
}

func TestNextStateAfterBooking(t *testing.T) {
	testCases := []struct {
		name     string
		from     FlightState
		newCount int
		capacity int
		minimum  int
		expected FlightState
	}{
		{"below minimum stays scheduled", FlightStateScheduled, 2, 10, 5, FlightStateScheduled},
		{"reaching minimum confirms", FlightStateScheduled, 5, 10, 5, FlightStateConfirmed},
		{"confirmed stays confirmed", FlightStateConfirmed, 6, 10, 5, FlightStateConfirmed},
		{"filling from confirmed sells out", FlightStateConfirmed, 10, 10, 5, FlightStateSoldOut},
		{"capacity wins over minimum", FlightStateScheduled, 3, 3, 3, FlightStateSoldOut},
		{"capacity below minimum sells out", FlightStateScheduled, 2, 2, 5, FlightStateSoldOut},
		{"already sold out is unchanged", FlightStateSoldOut, 4, 3, 2, FlightStateSoldOut},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NextStateAfterBooking(tc.from, tc.newCount, tc.capacity, tc.minimum))
		})
	}
}

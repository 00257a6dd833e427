package domain

import (
	"fmt"
	"strings"
)

type RocketRange string

const (
	RocketRangeLEO  RocketRange = "LEO"
	RocketRangeMoon RocketRange = "MOON"
	RocketRangeMars RocketRange = "MARS"
)

const (
	MinRocketCapacity = 1
	MaxRocketCapacity = 10
)

var rocketRanges = []RocketRange{RocketRangeLEO, RocketRangeMoon, RocketRangeMars}

// ParseRocketRange parses a range name case-insensitively.
func ParseRocketRange(s string) (RocketRange, error) {
	candidate := strings.ToUpper(strings.TrimSpace(s))
	for _, r := range rocketRanges {
		if string(r) == candidate {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown rocket range %q", s)
}

type Rocket struct {
	ID       string
	Name     string
	Capacity int
	Speed    *int
	Range    RocketRange
}

// Clone returns a copy that shares no memory with r.
func (r Rocket) Clone() Rocket {
	if r.Speed != nil {
		speed := *r.Speed
		r.Speed = &speed
	}
	return r
}

package domain

type Booking struct {
	ID             string
	FlightID       string
	PassengerName  string
	PassengerEmail string
	FinalPrice     float64
}

type DiscountRule string

const (
	DiscountLastSeat           DiscountRule = "last_seat"
	DiscountOneAwayFromMinimum DiscountRule = "one_away_from_minimum"
	DiscountStandard           DiscountRule = "standard"
)

// Discount is a percentage taken off the flight's base price.
type Discount struct {
	Rule    DiscountRule
	Percent int
}

// DetermineDiscount picks the discount for the booking that brings a flight
// to newCount passengers. The last-seat rule is checked first, so it wins
// when capacity coincides with minimumPassengers-1.
func DetermineDiscount(newCount, capacity, minimumPassengers int) Discount {
	if newCount == capacity {
		return Discount{Rule: DiscountLastSeat, Percent: 0}
	}
	if newCount == minimumPassengers-1 {
		return Discount{Rule: DiscountOneAwayFromMinimum, Percent: 30}
	}
	return Discount{Rule: DiscountStandard, Percent: 10}
}

// Apply returns basePrice reduced by the discount.
func (d Discount) Apply(basePrice float64) float64 {
	return basePrice * float64(100-d.Percent) / 100
}

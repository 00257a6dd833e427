// Package events turns flight state changes into FlightEvent messages.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/google/uuid"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// Publisher sends each event to the flight events topic and, when set, mirrors
// it to the notifications topic the worker reads. A nil *Publisher drops events.
type Publisher struct {
	producer           Producer
	topic              string
	notificationsTopic string
	newID              func() string
}

type Option func(*Publisher)

func WithNotificationsTopic(topic string) Option {
	return func(p *Publisher) {
		p.notificationsTopic = topic
	}
}

func NewPublisher(producer Producer, topic string, opts ...Option) *Publisher {
	p := &Publisher{producer: producer, topic: topic, newID: uuid.NewString}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Transition describes a flight state change that already happened.
type Transition struct {
	Flight     domain.Flight
	From       domain.FlightState
	Bookings   int
	Capacity   int
	Passengers []domain.Passenger
	At         time.Time
}

// Publish emits the event for t. Transitions into states that have no event
// type are ignored.
func (p *Publisher) Publish(ctx context.Context, t Transition) error {
	if p == nil || p.producer == nil {
		return nil
	}
	eventType, ok := domain.FlightEventTypeFor(t.Flight.State)
	if !ok {
		return nil
	}

	event := domain.FlightEvent{
		ID:                p.newID(),
		Type:              eventType,
		FlightID:          t.Flight.ID,
		FromState:         t.From,
		ToState:           t.Flight.State,
		BookingCount:      t.Bookings,
		Capacity:          t.Capacity,
		MinimumPassengers: t.Flight.MinimumPassengers,
		Passengers:        t.Passengers,
		OccurredAt:        t.At,
	}

	var errs []error
	if err := p.producer.Publish(ctx, p.topic, event.FlightID, event); err != nil {
		errs = append(errs, err)
	}
	if p.notificationsTopic != "" && p.notificationsTopic != p.topic {
		if err := p.producer.Publish(ctx, p.notificationsTopic, event.FlightID, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

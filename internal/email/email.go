package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/astrobookings/internal/domain"
)

type Notification struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers passenger notifications. Delivery is a structured log line;
// there is no mail transport.
type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event domain.FlightEvent) error {
	for _, n := range Render(event) {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "notification sent",
			"event_id", event.ID,
			"event_type", event.Type,
			"flight_id", event.FlightID,
			"to", n.To,
			"subject", n.Subject,
		)
	}
	return nil
}

// Render builds one notification per passenger on the event.
func Render(event domain.FlightEvent) []Notification {
	subject, body := message(event)
	if subject == "" {
		return nil
	}

	out := make([]Notification, 0, len(event.Passengers))
	for _, p := range event.Passengers {
		if p.Email == "" {
			continue
		}
		out = append(out, Notification{
			To:      p.Email,
			Subject: subject,
			Body:    fmt.Sprintf("Dear %s,\n\n%s\n", p.Name, body),
		})
	}
	return out
}

func message(event domain.FlightEvent) (string, string) {
	switch event.Type {
	case domain.FlightEventConfirmed:
		return "Flight " + event.FlightID + " confirmed",
			fmt.Sprintf("Flight %s reached its minimum of %d passengers and will launch as planned.", event.FlightID, event.MinimumPassengers)
	case domain.FlightEventSoldOut:
		return "Flight " + event.FlightID + " sold out",
			fmt.Sprintf("All %d seats on flight %s are booked.", event.Capacity, event.FlightID)
	case domain.FlightEventCancelled:
		return "Flight " + event.FlightID + " cancelled",
			fmt.Sprintf("Flight %s has been cancelled. Your booking will be refunded.", event.FlightID)
	case domain.FlightEventDone:
		return "Flight " + event.FlightID + " completed",
			fmt.Sprintf("Thank you for flying on %s.", event.FlightID)
	}
	return "", ""
}

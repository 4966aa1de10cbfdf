// Package notification turns reservation events into passenger and operator
// notices. Delivery is pluggable; the default writes the notice to the log.
package notification

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airreservations/internal/kafka"
	"go.uber.org/zap"
)

type Notice struct {
	EventID   string
	Recipient string
	Subject   string
	Body      string
}

type Deliverer interface {
	Deliver(ctx context.Context, notice Notice) error
}

type Sender struct {
	deliverer Deliverer
	logger    *zap.SugaredLogger
}

func NewSender(deliverer Deliverer, logger *zap.SugaredLogger) *Sender {
	if deliverer == nil {
		deliverer = LogDeliverer{logger: logger}
	}
	return &Sender{deliverer: deliverer, logger: logger}
}

// Send renders the event and hands it to the deliverer. Unknown event types
// are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	notice, ok := Render(event)
	if !ok {
		s.logger.Debugw("no notice for event", "type", event.Type, "event_id", event.ID)
		return nil
	}
	if err := s.deliverer.Deliver(ctx, notice); err != nil {
		return fmt.Errorf("deliver %s notice: %w", event.Type, err)
	}
	return nil
}

func Render(event kafka.BookingEvent) (Notice, bool) {
	n := Notice{EventID: event.ID}
	switch event.Type {
	case kafka.EventPassengerAdded:
		n.Recipient = passengerRecipient(event.PassengerID)
		n.Subject = "Welcome aboard"
		n.Body = fmt.Sprintf("%s, you are registered as passenger %d.", nameOr(event.PassengerName), event.PassengerID)
	case kafka.EventBookingCreated:
		n.Recipient = passengerRecipient(event.PassengerID)
		n.Subject = "Booking " + event.Reference + " confirmed"
		n.Body = fmt.Sprintf("Flight %s from %s to %s on %s. Your booking reference is %s.",
			event.FlightNumber, event.Origin, event.Destination, event.Departure, event.Reference)
	case kafka.EventRatingSubmitted:
		n.Recipient = passengerRecipient(event.PassengerID)
		n.Subject = "Thanks for rating flight " + event.FlightNumber
		score := 0
		if event.Score != nil {
			score = *event.Score
		}
		n.Body = fmt.Sprintf("We recorded your score of %d for flight %s.", score, event.FlightNumber)
	case kafka.EventRouteInserted:
		n.Recipient = "operations"
		n.Subject = "New route " + event.FlightNumber
		n.Body = fmt.Sprintf("Flight %s now serves %s to %s.", event.FlightNumber, event.Origin, event.Destination)
	default:
		return Notice{}, false
	}
	return n, true
}

func passengerRecipient(id int64) string {
	return fmt.Sprintf("passenger:%d", id)
}

func nameOr(name string) string {
	if name == "" {
		return "Traveller"
	}
	return name
}

type LogDeliverer struct {
	logger *zap.SugaredLogger
}

func (d LogDeliverer) Deliver(_ context.Context, notice Notice) error {
	d.logger.Infow("notification",
		"event_id", notice.EventID,
		"recipient", notice.Recipient,
		"subject", notice.Subject,
		"body", notice.Body,
	)
	return nil
}

package kafka

import (
	"context"
	"time"

	"github.com/Domenick1991/airreservations/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventPassengerAdded  = "passenger_added"
	EventBookingCreated  = "booking_created"
	EventRatingSubmitted = "rating_submitted"
	EventRouteInserted   = "route_inserted"
)

// BookingEvent is the payload of every message on the events topic. Fields
// that do not apply to an event type are left empty.
type BookingEvent struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Reference     string    `json:"reference,omitempty"`
	FlightNumber  string    `json:"flight_number,omitempty"`
	Origin        string    `json:"origin,omitempty"`
	Destination   string    `json:"destination,omitempty"`
	Departure     string    `json:"departure,omitempty"`
	PassengerID   int64     `json:"passenger_id,omitempty"`
	PassengerName string    `json:"passenger_name,omitempty"`
	Score         *int      `json:"score,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewEvent(eventType string) BookingEvent {
	return BookingEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
}

// Key orders the events of one entity on the same partition.
func (e BookingEvent) Key() string {
	switch {
	case e.Reference != "":
		return e.Reference
	case e.FlightNumber != "":
		return e.FlightNumber
	default:
		return e.ID
	}
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Emitter publishes events after their transaction committed. Delivery is
// best effort: failures are logged and counted, never returned.
type Emitter struct {
	producer Publisher
	topic    string
	logger   *zap.SugaredLogger
	metrics  *metrics.Registry
}

func NewEmitter(producer Publisher, topic string, logger *zap.SugaredLogger, reg *metrics.Registry) *Emitter {
	return &Emitter{producer: producer, topic: topic, logger: logger, metrics: reg}
}

func (e *Emitter) Emit(ctx context.Context, event BookingEvent) {
	if e == nil || e.producer == nil || e.topic == "" {
		return
	}
	err := e.producer.Publish(ctx, e.topic, event.Key(), event)
	e.metrics.EventPublished(event.Type, err)
	if err != nil && e.logger != nil {
		e.logger.Warnw("failed to publish event", "type", event.Type, "key", event.Key(), "error", err)
	}
}

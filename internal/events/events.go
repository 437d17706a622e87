package events

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

const (
	AppointmentCreated   = "APPOINTMENT_CREATED"
	AppointmentCancelled = "APPOINTMENT_CANCELLED"
	AppointmentCompleted = "APPOINTMENT_COMPLETED"
)

type Event struct {
	Type          string          `json:"type"`
	AppointmentID string          `json:"appointment_id"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Publisher fans appointment lifecycle events out to other systems.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// LogPublisher writes events to the process log. Used when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, ev Event) error {
	log.Printf("event type=%s appointment_id=%s payload=%s", ev.Type, ev.AppointmentID, string(ev.Payload))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

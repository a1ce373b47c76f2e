package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
)

// Event is a domain event published to the message bus.
type Event struct {
	ID         string              `json:"id"`
	Type       constants.EventType `json:"type"`
	Key        string              `json:"key"`
	Payload    interface{}         `json:"payload"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewEvent stamps a payload with a fresh id and time.
func NewEvent(eventType constants.EventType, key string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

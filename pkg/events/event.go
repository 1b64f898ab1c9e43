package events

import (
	"encoding/json"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "intent.resolved").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const TypeIntentResolved = "intent.resolved"

// IntentResolved hands one executable result to the executors. Result is the
// canonical JSON encoding of the intent.Result; Confirmed is the consumed
// pending record when the result is a confirmation.
type IntentResolved struct {
	ID         string          `json:"id"`
	Intent     string          `json:"intent"`
	ThreadID   string          `json:"thread_id,omitempty"`
	UserID     string          `json:"user_id,omitempty"`
	Turn       uint64          `json:"turn"`
	Result     json.RawMessage `json:"result"`
	Confirmed  json.RawMessage `json:"confirmed,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (e IntentResolved) EventType() string {
	return TypeIntentResolved
}

func (e IntentResolved) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id":          e.ID,
		"intent":      e.Intent,
		"thread_id":   e.ThreadID,
		"user_id":     e.UserID,
		"turn":        e.Turn,
		"result":      e.Result,
		"confirmed":   e.Confirmed,
		"occurred_at": e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

func (e IntentResolved) Timestamp() time.Time {
	return e.OccurredAt
}

// DecodeIntentResolved reads the wire form back
func DecodeIntentResolved(data []byte) (IntentResolved, error) {
	var e IntentResolved
	err := json.Unmarshal(data, &e)
	return e, err
}

// BaseEvent is a generic event for subscribers that do not know the type
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

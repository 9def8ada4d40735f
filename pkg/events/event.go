package events

import "time"

const TypeDocumentUpdated = "document.updated"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "document.updated").
	EventType() string

	// Key narrows the subject an event is published on. Empty means none.
	Key() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is what subscribers reconstruct from the wire.
type BaseEvent struct {
	Type       string
	RoutingKey string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Key() string {
	return e.RoutingKey
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// DocumentUpdated announces that a session's document context was replaced.
type DocumentUpdated struct {
	SessionID  string
	OccurredAt time.Time
}

func NewDocumentUpdated(sessionID string) DocumentUpdated {
	return DocumentUpdated{SessionID: sessionID, OccurredAt: time.Now()}
}

func (e DocumentUpdated) EventType() string {
	return TypeDocumentUpdated
}

func (e DocumentUpdated) Key() string {
	return e.SessionID
}

func (e DocumentUpdated) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":  e.SessionID,
		"occurred_at": e.OccurredAt.Format(time.RFC3339Nano),
	}
}

func (e DocumentUpdated) Timestamp() time.Time {
	return e.OccurredAt
}

// SessionIDOf extracts the session id from a reconstructed event payload.
func SessionIDOf(e Event) string {
	if e == nil {
		return ""
	}
	if id, ok := e.Payload()["session_id"].(string); ok {
		return id
	}
	return e.Key()
}

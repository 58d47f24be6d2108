package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_OPENED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeSessionOpened   = "SESSION_OPENED"
	TypeMessageAppended = "MESSAGE_APPENDED"
	TypeClinicalUpdated = "CLINICAL_UPDATED"
	TypeSessionTagged   = "SESSION_TAGGED"
	TypeSessionClosed   = "SESSION_CLOSED"
	TypeSessionsExpired = "SESSIONS_EXPIRED"
)

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

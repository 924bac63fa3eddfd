package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates session lifecycle events.
type EventType string

const (
	EventSignedIn        EventType = "session.signed_in"
	EventSignInFailed    EventType = "session.sign_in_failed"
	EventSignedOut       EventType = "session.signed_out"
	EventSessionExpired  EventType = "session.expired"
	EventProfileEnriched EventType = "session.profile_enriched"
)

// AllTypes lists every event type, for subscribers interested in all of them.
func AllTypes() []EventType {
	return []EventType{EventSignedIn, EventSignInFailed, EventSignedOut, EventSessionExpired, EventProfileEnriched}
}

// Actor identifies who the event is about.
type Actor struct {
	UserID   string `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// Event is emitted by the auth orchestrator.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, sessionID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SignInPayload describes how a sign-in was attempted.
type SignInPayload struct {
	Method  string `json:"method"`
	Message string `json:"message,omitempty"`
}

// EnrichmentPayload reports whether the fetched profile was merged.
type EnrichmentPayload struct {
	Merged bool `json:"merged"`
}

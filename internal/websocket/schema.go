package websocket

import (
	"encoding/json"
	"time"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError                     Event = "error"
	EventPong                      Event = "pong"
	EventReady                     Event = "ready"
	EventRegistrationCreated       Event = "registration.created"
	EventRegistrationStatusChanged Event = "registration.status_changed"
	EventRegistrationUpdated       Event = "registration.updated"
	EventRegistrationDeleted       Event = "registration.deleted"
)

// RegistrationEvent is published on the Redis channel and forwarded as-is
// to every connected admin.
type RegistrationEvent struct {
	Event          Event     `json:"event"`
	RegistrationID string    `json:"registration_id"`
	ReferenceCode  string    `json:"reference_code"`
	Name           string    `json:"name,omitempty"`
	GradeLevel     string    `json:"grade_level,omitempty"`
	IsSpecialISM   bool      `json:"is_special_ism"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	ActorID        int       `json:"actor_id,omitempty"`
	At             time.Time `json:"at"`
}

// Encode marshals e for the wire.
func (e RegistrationEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

type ReadyResponse struct {
	Event Event  `json:"event"`
	Feed  string `json:"feed"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

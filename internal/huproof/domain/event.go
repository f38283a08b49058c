package domain

import "time"

type EventType string

const (
	EventUserEnrolled   EventType = "user.enrolled"
	EventSessionIssued  EventType = "session.issued"
	EventSessionRevoked EventType = "session.revoked"
)

// Event is a fact about a completed protocol step. It never carries secrets
// or tokens.
type Event struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id,omitempty"`
	JTI        string    `json:"jti,omitempty"`
	OriginHash string    `json:"origin_hash,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

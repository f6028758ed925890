package events

import (
	"time"

	"github.com/spec-kit/cityaid-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated      EventType = "case_created"
	EventCaseStateChanged EventType = "case_state_changed"
	EventFileAttached     EventType = "file_attached"
)

// Actor encapsulates the principal that triggered an event.
type Actor struct {
	UserID string          `json:"user_id"`
	City   domain.CityCode `json:"city"`
	Team   domain.TeamType `json:"team"`
}

// Event represents a domain event emitted after a successful commit.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	CaseID    string    `json:"case_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	City  domain.CityCode `json:"city"`
	Team  domain.TeamType `json:"team"`
	Title string          `json:"title"`
}

// CaseStateChangedPayload payload.
type CaseStateChangedPayload struct {
	OldState domain.CaseState `json:"old_state"`
	NewState domain.CaseState `json:"new_state"`
	Reason   string           `json:"reason,omitempty"`
}

// FileAttachedPayload payload.
type FileAttachedPayload struct {
	FileID      string                  `json:"file_id"`
	Name        string                  `json:"name"`
	Sensitivity domain.SensitivityLevel `json:"sensitivity"`
}

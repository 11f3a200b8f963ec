package events

import (
	"time"

	"github.com/spec-kit/registration-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRegistrationCreated       EventType = "registration.created"
	EventRegistrationStatusChanged EventType = "registration.status_changed"
	EventRegistrationUpdated       EventType = "registration.updated"
	EventRegistrationDeleted       EventType = "registration.deleted"
)

// AllEventTypes lists every event the services emit.
var AllEventTypes = []EventType{
	EventRegistrationCreated,
	EventRegistrationStatusChanged,
	EventRegistrationUpdated,
	EventRegistrationDeleted,
}

// Actor identifies who caused an event.
type Actor string

const (
	ActorApplicant Actor = "applicant"
	ActorAdmin     Actor = "admin"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	RegistrationID string    `json:"registration_id"`
	Actor          Actor     `json:"actor"`
	ActorID        string    `json:"actor_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Payload        any       `json:"payload,omitempty"`
}

// RegistrationCreatedPayload payload.
type RegistrationCreatedPayload struct {
	Email string          `json:"email"`
	Age   domain.AgeRange `json:"age"`
}

// RegistrationStatusChangedPayload payload.
type RegistrationStatusChangedPayload struct {
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
}

// RegistrationUpdatedPayload payload.
type RegistrationUpdatedPayload struct {
	ChangedFields []string `json:"changed_fields"`
}

package models

import "time"

// EventType identifies a committed state transition.
type EventType string

const (
	EventRequestAccepted      EventType = "request_accepted"
	EventRequestRejected      EventType = "request_rejected"
	EventRequestCancelled     EventType = "request_cancelled"
	EventAppointmentCancelled EventType = "appointment_cancelled"
	EventAppointmentReminder  EventType = "appointment_reminder"
)

// ReminderPayload is the task payload for a scheduled appointment reminder.
type ReminderPayload struct {
	AppointmentID string    `json:"appointmentId"`
	FireAt        time.Time `json:"fireAt"`
}

// Event describes a transition that has durably committed. The dispatcher only
// ever sees committed events, never speculative state.
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	RequestID     string    `json:"request_id,omitempty"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	ActorID       string    `json:"actor_id"` // who triggered the transition
	RequesterID   string    `json:"requester_id"`
	ProviderID    string    `json:"provider_id"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

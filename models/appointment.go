package models

import "time"

// AppointmentStatus is the lifecycle state of a confirmed appointment.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Terminal reports whether no further transition is legal from s.
func (s AppointmentStatus) Terminal() bool {
	return s != AppointmentStatusScheduled
}

// Appointment is a confirmed, scheduled session. It exists if and only if its
// source request was accepted, and is retained indefinitely for history.
type Appointment struct {
	ID              string            `bson:"id" json:"id"`
	RequesterID     string            `bson:"requester_id" json:"requester_id"`
	ProviderID      string            `bson:"provider_id" json:"provider_id"`
	StartTime       time.Time         `bson:"start_time" json:"start_time"`
	EndTime         time.Time         `bson:"end_time" json:"end_time"` // start_time + requested duration
	Status          AppointmentStatus `bson:"status" json:"status"`
	Notes           string            `bson:"notes,omitempty" json:"notes,omitempty"`
	SourceRequestID string            `bson:"source_request_id" json:"source_request_id"`
	CreatedAt       time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updated_at"`
}

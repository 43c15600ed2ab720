package models

import "time"

// NotificationCategory classifies what a notification is about.
type NotificationCategory string

const (
	CategoryBookingAccepted      NotificationCategory = "booking_accepted"
	CategoryBookingRejected      NotificationCategory = "booking_rejected"
	CategoryBookingCancelled     NotificationCategory = "booking_cancelled"
	CategoryAppointmentCancelled NotificationCategory = "appointment_cancelled"
	CategoryAppointmentReminder  NotificationCategory = "appointment_reminder"
)

// Notification is a durable, per-recipient record of a state change, also
// pushed live when the recipient is connected. Read is monotonic: it only
// moves from false to true.
type Notification struct {
	ID          string               `bson:"id" json:"id"`
	RecipientID string               `bson:"recipient_id" json:"recipient_id"`
	Title       string               `bson:"title" json:"title"`
	Message     string               `bson:"message" json:"message"`
	Category    NotificationCategory `bson:"category" json:"category"`
	ActionRef   string               `bson:"action_ref,omitempty" json:"action_ref,omitempty"` // deep-link target
	DedupeKey   string               `bson:"dedupe_key" json:"-"`                              // unique per (event, recipient)
	Read        bool                 `bson:"read" json:"read"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
}

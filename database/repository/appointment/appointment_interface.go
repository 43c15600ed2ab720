package appointmentRepo

import (
	"context"
	"time"

	"bookline/models"
)

// AppointmentRepository defines methods for appointment data access.
// Creation happens inside the request repository's acceptance transaction;
// this repository owns every later read and transition.
type AppointmentRepository interface {
	// GetByID retrieves an appointment by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// ListByParty retrieves appointments for one side, soonest first,
	// optionally filtered by status.
	ListByParty(ctx context.Context, field, partyID string, status models.AppointmentStatus) ([]models.Appointment, error)
	// Transition performs the compare-and-set status update and returns the
	// post-transition document.
	Transition(ctx context.Context, id string, from, to models.AppointmentStatus) (*models.Appointment, error)
	// SetNotes replaces the provider notes on a non-terminal appointment.
	SetNotes(ctx context.Context, id, notes string) (*models.Appointment, error)
	// ListScheduledBetween retrieves scheduled appointments starting inside
	// the window, used by the reminder scanner.
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
}

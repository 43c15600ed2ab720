package scheduling

import (
	"context"

	requestRepo "bookline/database/repository/request"
	"bookline/models"
)

// Dispatcher consumes committed domain events. Delivery is the dispatcher's
// responsibility; the state machine never waits on it or rolls back for it.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt models.Event)
}

// SchedulingService owns the booking-request and appointment state machines.
// Every mutation is serialized through the repositories' compare-and-set
// guards; the loser of a race observes an invalid_state error, never a
// silent overwrite.
type SchedulingService interface {
	// CreateRequest validates and stores a new pending request on behalf of
	// the requester.
	CreateRequest(ctx context.Context, requesterID string, in models.BookingRequestInput) (*models.BookingRequest, error)
	// GetRequest retrieves a request either party may view.
	GetRequest(ctx context.Context, requestID, actorID string) (*models.BookingRequest, error)
	// ListRequests lists the actor's requests for the given role.
	ListRequests(ctx context.Context, role requestRepo.PartyRole, actorID string) ([]models.BookingRequest, error)

	// Accept flips a pending request to accepted and materializes the
	// appointment in the same transaction. Provider only.
	Accept(ctx context.Context, requestID, actorID string) (*models.BookingRequest, *models.Appointment, error)
	// Reject flips a pending request to rejected. Provider only.
	Reject(ctx context.Context, requestID, actorID, reason string) (*models.BookingRequest, error)
	// CancelRequest flips a pending request to cancelled. Requester only.
	CancelRequest(ctx context.Context, requestID, actorID string) (*models.BookingRequest, error)
	// HideRequest soft-hides a resolved request from the provider's listing.
	HideRequest(ctx context.Context, requestID, actorID string) error

	// GetAppointment retrieves an appointment either party may view.
	GetAppointment(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error)
	// ListAppointments lists the actor's appointments for the given role.
	ListAppointments(ctx context.Context, role requestRepo.PartyRole, actorID string, status models.AppointmentStatus) ([]models.Appointment, error)

	// CancelAppointment cancels a scheduled appointment. Either party.
	CancelAppointment(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error)
	// Complete marks a scheduled appointment completed. Provider only.
	Complete(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error)
	// MarkNoShow marks a scheduled appointment as a no-show. Provider only.
	MarkNoShow(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error)
	// SetAppointmentNotes updates provider notes on a scheduled appointment.
	SetAppointmentNotes(ctx context.Context, appointmentID, actorID, notes string) (*models.Appointment, error)
}

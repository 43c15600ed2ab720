package requestRepo

import (
	"context"

	"bookline/models"
)

// PartyRole selects which side of a request a listing is for.
type PartyRole string

const (
	RoleRequester PartyRole = "requester"
	RoleProvider  PartyRole = "provider"
)

// RequestRepository defines methods for booking-request data access.
//
// Every status mutation goes through a compare-and-set guard: the update only
// matches while the stored status still equals the expected source state, so
// two racing transitions on the same request can never both succeed.
type RequestRepository interface {
	// Create inserts a new pending request.
	Create(ctx context.Context, req *models.BookingRequest) error
	// GetByID retrieves a request by its unique ID.
	GetByID(ctx context.Context, id string) (*models.BookingRequest, error)
	// ListByParty retrieves requests for one side, newest first. Resolved
	// requests the provider has hidden are skipped unless includeHidden is set.
	ListByParty(ctx context.Context, role PartyRole, partyID string, includeHidden bool) ([]models.BookingRequest, error)
	// Transition performs the compare-and-set status update and returns the
	// post-transition document. ErrStaleStatus is returned when the stored
	// status no longer matches from.
	Transition(ctx context.Context, id string, from, to models.RequestStatus, set map[string]any) (*models.BookingRequest, error)
	// AcceptWithAppointment atomically flips a pending request to accepted and
	// inserts the materialized appointment in the same transaction. Both
	// writes commit or neither does.
	AcceptWithAppointment(ctx context.Context, id string, appt *models.Appointment) (*models.BookingRequest, error)
	// SetHidden flips the provider-side soft-hide flag on a resolved request.
	SetHidden(ctx context.Context, id string, hidden bool) error
}

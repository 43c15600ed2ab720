package scheduling

import (
	"context"
	"errors"
	"time"

	appointmentRepo "bookline/database/repository/appointment"
	requestRepo "bookline/database/repository/request"
	"bookline/models"
	"bookline/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSchedulingService is the production implementation.
type DefaultSchedulingService struct {
	Requests     requestRepo.RequestRepository
	Appointments appointmentRepo.AppointmentRepository
	Dispatcher   Dispatcher
}

// CreateRequest validates and stores a new pending request.
func (s *DefaultSchedulingService) CreateRequest(ctx context.Context, requesterID string, in models.BookingRequestInput) (*models.BookingRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}
	if in.ProviderID == requesterID {
		return nil, NewValidationError("requester and provider must be different parties")
	}

	req := &models.BookingRequest{
		ID:              uuid.New().String(),
		RequesterID:     requesterID,
		ProviderID:      in.ProviderID,
		RequestedDate:   in.RequestedDate,
		RequestedTime:   in.RequestedTime,
		SessionKind:     in.SessionKind,
		DurationMinutes: in.DurationMinutes,
		Message:         in.Message,
		Status:          models.RequestStatusPending,
		PaymentRequired: in.PaymentRequired,
		PaymentAmount:   in.PaymentAmount,
	}
	if err := s.Requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// GetRequest retrieves a request either party may view.
func (s *DefaultSchedulingService) GetRequest(ctx context.Context, requestID, actorID string) (*models.BookingRequest, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRequestErr(err)
	}
	if req.RequesterID != actorID && req.ProviderID != actorID {
		return nil, NewForbidden("you are not a party to this request")
	}
	return req, nil
}

// ListRequests lists the actor's requests for the given role.
func (s *DefaultSchedulingService) ListRequests(ctx context.Context, role requestRepo.PartyRole, actorID string) ([]models.BookingRequest, error) {
	if role != requestRepo.RoleRequester && role != requestRepo.RoleProvider {
		return nil, NewValidationError("role must be requester or provider")
	}
	return s.Requests.ListByParty(ctx, role, actorID, false)
}

// Accept flips a pending request to accepted and materializes the appointment
// in the same transaction.
func (s *DefaultSchedulingService) Accept(ctx context.Context, requestID, actorID string) (*models.BookingRequest, *models.Appointment, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, mapRequestErr(err)
	}
	if req.ProviderID != actorID {
		return nil, nil, NewForbidden("only the provider may accept a request")
	}
	if req.Status.Terminal() {
		return nil, nil, NewInvalidState("this request has already been responded to")
	}

	start, err := req.StartTime()
	if err != nil {
		return nil, nil, NewValidationError(err.Error())
	}

	appt := &models.Appointment{
		ID:              uuid.New().String(),
		RequesterID:     req.RequesterID,
		ProviderID:      req.ProviderID,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(req.DurationMinutes) * time.Minute),
		Status:          models.AppointmentStatusScheduled,
		SourceRequestID: req.ID,
	}

	updated, err := s.Requests.AcceptWithAppointment(ctx, requestID, appt)
	if err != nil {
		return nil, nil, mapRequestErr(err)
	}

	s.dispatch(ctx, models.Event{
		ID:            uuid.New().String(),
		Type:          models.EventRequestAccepted,
		RequestID:     updated.ID,
		AppointmentID: appt.ID,
		ActorID:       actorID,
		RequesterID:   updated.RequesterID,
		ProviderID:    updated.ProviderID,
		OccurredAt:    time.Now(),
	})
	return updated, appt, nil
}

// Reject flips a pending request to rejected and stores the optional reason.
func (s *DefaultSchedulingService) Reject(ctx context.Context, requestID, actorID, reason string) (*models.BookingRequest, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRequestErr(err)
	}
	if req.ProviderID != actorID {
		return nil, NewForbidden("only the provider may reject a request")
	}
	if req.Status.Terminal() {
		return nil, NewInvalidState("this request has already been responded to")
	}

	set := map[string]any{}
	if reason != "" {
		set["rejection_reason"] = reason
	}
	updated, err := s.Requests.Transition(ctx, requestID, models.RequestStatusPending, models.RequestStatusRejected, set)
	if err != nil {
		return nil, mapRequestErr(err)
	}

	s.dispatch(ctx, models.Event{
		ID:          uuid.New().String(),
		Type:        models.EventRequestRejected,
		RequestID:   updated.ID,
		ActorID:     actorID,
		RequesterID: updated.RequesterID,
		ProviderID:  updated.ProviderID,
		Reason:      reason,
		OccurredAt:  time.Now(),
	})
	return updated, nil
}

// CancelRequest flips a pending request to cancelled on behalf of the requester.
func (s *DefaultSchedulingService) CancelRequest(ctx context.Context, requestID, actorID string) (*models.BookingRequest, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRequestErr(err)
	}
	if req.RequesterID != actorID {
		return nil, NewForbidden("only the requester may cancel a request")
	}
	if req.Status.Terminal() {
		return nil, NewInvalidState("this request has already been responded to")
	}

	updated, err := s.Requests.Transition(ctx, requestID, models.RequestStatusPending, models.RequestStatusCancelled, nil)
	if err != nil {
		return nil, mapRequestErr(err)
	}

	s.dispatch(ctx, models.Event{
		ID:          uuid.New().String(),
		Type:        models.EventRequestCancelled,
		RequestID:   updated.ID,
		ActorID:     actorID,
		RequesterID: updated.RequesterID,
		ProviderID:  updated.ProviderID,
		OccurredAt:  time.Now(),
	})
	return updated, nil
}

// HideRequest soft-hides a resolved request from the provider's listing.
// Requests are never deleted; the audit trail stays intact.
func (s *DefaultSchedulingService) HideRequest(ctx context.Context, requestID, actorID string) error {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return mapRequestErr(err)
	}
	if req.ProviderID != actorID {
		return NewForbidden("only the provider may hide a request")
	}
	if !req.Status.Terminal() {
		return NewInvalidState("only resolved requests can be hidden")
	}
	return s.Requests.SetHidden(ctx, requestID, true)
}

// GetAppointment retrieves an appointment either party may view.
func (s *DefaultSchedulingService) GetAppointment(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, mapAppointmentErr(err)
	}
	if appt.RequesterID != actorID && appt.ProviderID != actorID {
		return nil, NewForbidden("you are not a party to this appointment")
	}
	return appt, nil
}

// ListAppointments lists the actor's appointments for the given role.
func (s *DefaultSchedulingService) ListAppointments(ctx context.Context, role requestRepo.PartyRole, actorID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	field := "requester_id"
	switch role {
	case requestRepo.RoleRequester:
	case requestRepo.RoleProvider:
		field = "provider_id"
	default:
		return nil, NewValidationError("role must be requester or provider")
	}
	return s.Appointments.ListByParty(ctx, field, actorID, status)
}

// CancelAppointment cancels a scheduled appointment; either party may do so,
// and the other party is the one notified.
func (s *DefaultSchedulingService) CancelAppointment(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, mapAppointmentErr(err)
	}
	if appt.RequesterID != actorID && appt.ProviderID != actorID {
		return nil, NewForbidden("you are not a party to this appointment")
	}
	if appt.Status.Terminal() {
		return nil, NewInvalidState("this appointment can no longer be modified")
	}

	updated, err := s.Appointments.Transition(ctx, appointmentID, models.AppointmentStatusScheduled, models.AppointmentStatusCancelled)
	if err != nil {
		return nil, mapAppointmentErr(err)
	}

	s.dispatch(ctx, models.Event{
		ID:            uuid.New().String(),
		Type:          models.EventAppointmentCancelled,
		AppointmentID: updated.ID,
		RequestID:     updated.SourceRequestID,
		ActorID:       actorID,
		RequesterID:   updated.RequesterID,
		ProviderID:    updated.ProviderID,
		OccurredAt:    time.Now(),
	})
	return updated, nil
}

// Complete marks a scheduled appointment completed. The transition is silent:
// no notification is produced.
func (s *DefaultSchedulingService) Complete(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error) {
	return s.providerTransition(ctx, appointmentID, actorID, models.AppointmentStatusCompleted)
}

// MarkNoShow marks a scheduled appointment as a no-show. Also silent.
func (s *DefaultSchedulingService) MarkNoShow(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error) {
	return s.providerTransition(ctx, appointmentID, actorID, models.AppointmentStatusNoShow)
}

func (s *DefaultSchedulingService) providerTransition(ctx context.Context, appointmentID, actorID string, to models.AppointmentStatus) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, mapAppointmentErr(err)
	}
	if appt.ProviderID != actorID {
		return nil, NewForbidden("only the provider may perform this action")
	}
	if appt.Status.Terminal() {
		return nil, NewInvalidState("this appointment can no longer be modified")
	}

	updated, err := s.Appointments.Transition(ctx, appointmentID, models.AppointmentStatusScheduled, to)
	if err != nil {
		return nil, mapAppointmentErr(err)
	}
	return updated, nil
}

// SetAppointmentNotes updates provider notes on a scheduled appointment.
func (s *DefaultSchedulingService) SetAppointmentNotes(ctx context.Context, appointmentID, actorID, notes string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, mapAppointmentErr(err)
	}
	if appt.ProviderID != actorID {
		return nil, NewForbidden("only the provider may edit appointment notes")
	}
	if appt.Status.Terminal() {
		return nil, NewInvalidState("this appointment can no longer be modified")
	}

	updated, err := s.Appointments.SetNotes(ctx, appointmentID, notes)
	if err != nil {
		return nil, mapAppointmentErr(err)
	}
	return updated, nil
}

// dispatch hands a committed event to the notification dispatcher. Delivery
// failure is the dispatcher's problem; the transition has already committed
// and is never rolled back for it.
func (s *DefaultSchedulingService) dispatch(ctx context.Context, evt models.Event) {
	if s.Dispatcher == nil {
		utils.GetLogger().Warn("no dispatcher configured, dropping event", zap.String("event", string(evt.Type)))
		return
	}
	s.Dispatcher.Dispatch(ctx, evt)
}

func mapRequestErr(err error) error {
	switch {
	case errors.Is(err, requestRepo.ErrNotFound):
		return NewNotFound("booking request not found")
	case errors.Is(err, requestRepo.ErrStaleStatus):
		return NewInvalidState("this request has already been responded to")
	default:
		return err
	}
}

func mapAppointmentErr(err error) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrNotFound):
		return NewNotFound("appointment not found")
	case errors.Is(err, appointmentRepo.ErrStaleStatus):
		return NewInvalidState("this appointment can no longer be modified")
	default:
		return err
	}
}

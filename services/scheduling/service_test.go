package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	appointmentRepo "bookline/database/repository/appointment"
	requestRepo "bookline/database/repository/request"
	"bookline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRequestRepo is an in-memory RequestRepository with the same
// compare-and-set semantics as the Mongo implementation.
type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*models.BookingRequest
	appts    *fakeAppointmentRepo
}

func newFakeRequestRepo(appts *fakeAppointmentRepo) *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]*models.BookingRequest{}, appts: appts}
}

func (f *fakeRequestRepo) Create(ctx context.Context, req *models.BookingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, requestRepo.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRequestRepo) ListByParty(ctx context.Context, role requestRepo.PartyRole, partyID string, includeHidden bool) ([]models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BookingRequest
	for _, req := range f.requests {
		if role == requestRepo.RoleRequester && req.RequesterID != partyID {
			continue
		}
		if role == requestRepo.RoleProvider && req.ProviderID != partyID {
			continue
		}
		if req.Hidden && !includeHidden {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (f *fakeRequestRepo) Transition(ctx context.Context, id string, from, to models.RequestStatus, set map[string]any) (*models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, requestRepo.ErrNotFound
	}
	if req.Status != from {
		return nil, requestRepo.ErrStaleStatus
	}
	req.Status = to
	if reason, ok := set["rejection_reason"].(string); ok {
		req.RejectionReason = reason
	}
	req.UpdatedAt = time.Now()
	cp := *req
	return &cp, nil
}

func (f *fakeRequestRepo) AcceptWithAppointment(ctx context.Context, id string, appt *models.Appointment) (*models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, requestRepo.ErrNotFound
	}
	if req.Status != models.RequestStatusPending {
		return nil, requestRepo.ErrStaleStatus
	}
	req.Status = models.RequestStatusAccepted
	req.UpdatedAt = time.Now()
	f.appts.put(appt)
	cp := *req
	return &cp, nil
}

func (f *fakeRequestRepo) SetHidden(ctx context.Context, id string, hidden bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return requestRepo.ErrNotFound
	}
	req.Hidden = hidden
	return nil
}

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	appts map[string]*models.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: map[string]*models.Appointment{}}
}

func (f *fakeAppointmentRepo) put(appt *models.Appointment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *appt
	f.appts[appt.ID] = &cp
}

func (f *fakeAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (f *fakeAppointmentRepo) ListByParty(ctx context.Context, field, partyID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, appt := range f.appts {
		id := appt.RequesterID
		if field == "provider_id" {
			id = appt.ProviderID
		}
		if id != partyID {
			continue
		}
		if status != "" && appt.Status != status {
			continue
		}
		out = append(out, *appt)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Transition(ctx context.Context, id string, from, to models.AppointmentStatus) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	if appt.Status != from {
		return nil, appointmentRepo.ErrStaleStatus
	}
	appt.Status = to
	appt.UpdatedAt = time.Now()
	cp := *appt
	return &cp, nil
}

func (f *fakeAppointmentRepo) SetNotes(ctx context.Context, id, notes string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	if appt.Status != models.AppointmentStatusScheduled {
		return nil, appointmentRepo.ErrStaleStatus
	}
	appt.Notes = notes
	cp := *appt
	return &cp, nil
}

func (f *fakeAppointmentRepo) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, appt := range f.appts {
		if appt.Status != models.AppointmentStatusScheduled {
			continue
		}
		if appt.StartTime.Before(from) || appt.StartTime.After(to) {
			continue
		}
		out = append(out, *appt)
	}
	return out, nil
}

// recordingDispatcher captures committed events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []models.Event
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, evt models.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, evt)
}

func (d *recordingDispatcher) recorded() []models.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Event(nil), d.events...)
}

func newTestService() (*DefaultSchedulingService, *fakeRequestRepo, *fakeAppointmentRepo, *recordingDispatcher) {
	appts := newFakeAppointmentRepo()
	reqs := newFakeRequestRepo(appts)
	disp := &recordingDispatcher{}
	svc := &DefaultSchedulingService{Requests: reqs, Appointments: appts, Dispatcher: disp}
	return svc, reqs, appts, disp
}

func validInput() models.BookingRequestInput {
	return models.BookingRequestInput{
		ProviderID:      "provider-1",
		RequestedDate:   "2026-10-01",
		RequestedTime:   "14:30",
		SessionKind:     "consultation",
		DurationMinutes: 60,
		Message:         "Looking forward to it",
	}
}

func TestCreateRequestStartsPending(t *testing.T) {
	svc, _, _, _ := newTestService()

	req, err := svc.CreateRequest(context.Background(), "requester-1", validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, "requester-1", req.RequesterID)
	assert.Equal(t, "provider-1", req.ProviderID)
}

func TestCreateRequestRejectsSelfBooking(t *testing.T) {
	svc, _, _, _ := newTestService()

	in := validInput()
	in.ProviderID = "requester-1"
	_, err := svc.CreateRequest(context.Background(), "requester-1", in)
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestCreateRequestValidatesPayment(t *testing.T) {
	svc, _, _, _ := newTestService()

	in := validInput()
	in.PaymentRequired = true
	_, err := svc.CreateRequest(context.Background(), "requester-1", in)
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))

	amount := 45.0
	in.PaymentAmount = &amount
	req, err := svc.CreateRequest(context.Background(), "requester-1", in)
	require.NoError(t, err)
	require.NotNil(t, req.PaymentAmount)
	assert.Equal(t, 45.0, *req.PaymentAmount)
}

func TestAcceptMaterializesAppointment(t *testing.T) {
	svc, _, appts, disp := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "requester-1", validInput())
	require.NoError(t, err)

	updated, appt, err := svc.Accept(ctx, req.ID, "provider-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, updated.Status)

	require.NotNil(t, appt)
	stored, err := appts.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusScheduled, stored.Status)
	assert.Equal(t, req.ID, stored.SourceRequestID)

	wantStart := time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC)
	assert.True(t, stored.StartTime.Equal(wantStart))
	assert.True(t, stored.EndTime.Equal(wantStart.Add(60*time.Minute)))

	events := disp.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventRequestAccepted, events[0].Type)
	assert.Equal(t, appt.ID, events[0].AppointmentID)
	assert.Equal(t, "requester-1", events[0].RequesterID)
}

func TestAcceptOnlyProvider(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "requester-1", validInput())
	require.NoError(t, err)

	_, _, err = svc.Accept(ctx, req.ID, "requester-1")
	require.Error(t, err)
	assert.Equal(t, CodeForbidden, CodeOf(err))

	_, _, err = svc.Accept(ctx, req.ID, "someone-else")
	require.Error(t, err)
	assert.Equal(t, CodeForbidden, CodeOf(err))
}

func TestAcceptAfterResolutionFails(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "requester-1", validInput())
	require.NoError(t, err)

	_, err = svc.Reject(ctx, req.ID, "provider-1", "")
	require.NoError(t, err)

	_, _, err = svc.Accept(ctx, req.ID, "provider-1")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, CodeOf(err))
}

func TestRejectCarriesReason(t *testing.T) {
	svc, _, _, disp := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "requester-1", validInput())
	require.NoError(t, err)

	updated, err := svc.Reject(ctx, req.ID, "provider-1", "fully booked that week")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, updated.Status)
	assert.Equal(t, "fully booked that week", updated.RejectionReason)

	events := disp.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventRequestRejected, events[0].Type)
	assert.Equal(t, "fully booked that week", events[0].Reason)
}

func TestCancelRequestOnlyRequester(t *testing.T) {
	svc, _, _, disp := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "requester-1", validInput())
	require.NoError(t, err)

	_, err = svc.CancelRequest(ctx, req.ID, "provider-1")
	require.Error(t, err)
	assert.Equal(t, CodeForbidden, CodeOf(err))

	updated, err := svc.CancelRequest(ctx, req.ID, "requester-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, updated.Status)

	events := disp.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventRequestCancelled, events[0].Type)
}

func TestConcurrentResolutionHasOneWinner(t *testing.T) {
	svc, _, appts, disp := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "requester-1", validInput())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, errs[0] = svc.Accept(ctx, req.ID, "provider-1")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.CancelRequest(ctx, req.ID, "requester-1")
	}()
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.Equal(t, CodeInvalidState, CodeOf(err))
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Len(t, disp.recorded(), 1)

	// An appointment exists iff the acceptance won.
	final, err := svc.GetRequest(ctx, req.ID, "requester-1")
	require.NoError(t, err)
	list, err := appts.ListByParty(ctx, "provider_id", "provider-1", "")
	require.NoError(t, err)
	if final.Status == models.RequestStatusAccepted {
		assert.Len(t, list, 1)
	} else {
		assert.Empty(t, list)
	}
}

func TestConcurrentAcceptRejectOneWinner(t *testing.T) {
	svc, _, _, disp := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "requester-1", validInput())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, errs[0] = svc.Accept(ctx, req.ID, "provider-1")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Reject(ctx, req.ID, "provider-1", "changed my mind")
	}()
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.Equal(t, CodeInvalidState, CodeOf(err))
		}
	}
	assert.Equal(t, 1, won)

	// Exactly one event for the requester, matching whichever side committed.
	events := disp.recorded()
	require.Len(t, events, 1)
	final, err := svc.GetRequest(ctx, req.ID, "requester-1")
	require.NoError(t, err)
	if final.Status == models.RequestStatusAccepted {
		assert.Equal(t, models.EventRequestAccepted, events[0].Type)
	} else {
		assert.Equal(t, models.EventRequestRejected, events[0].Type)
	}
}

func TestHideRequestRequiresResolution(t *testing.T) {
	svc, reqs, _, _ := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "requester-1", validInput())
	require.NoError(t, err)

	err = svc.HideRequest(ctx, req.ID, "provider-1")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, CodeOf(err))

	_, err = svc.Reject(ctx, req.ID, "provider-1", "")
	require.NoError(t, err)

	require.NoError(t, svc.HideRequest(ctx, req.ID, "provider-1"))

	// Hidden requests drop out of the provider's listing but stay stored.
	visible, err := reqs.ListByParty(ctx, requestRepo.RoleProvider, "provider-1", false)
	require.NoError(t, err)
	assert.Empty(t, visible)
	stored, err := reqs.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, stored.Hidden)
}

func TestGetRequestForbiddenForStrangers(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "requester-1", validInput())
	require.NoError(t, err)

	_, err = svc.GetRequest(ctx, req.ID, "stranger")
	require.Error(t, err)
	assert.Equal(t, CodeForbidden, CodeOf(err))

	_, err = svc.GetRequest(ctx, "missing", "requester-1")
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func acceptedAppointment(t *testing.T, svc *DefaultSchedulingService) *models.Appointment {
	t.Helper()
	req, err := svc.CreateRequest(context.Background(), "requester-1", validInput())
	require.NoError(t, err)
	_, appt, err := svc.Accept(context.Background(), req.ID, "provider-1")
	require.NoError(t, err)
	return appt
}

func TestCancelAppointmentNotifiesOtherParty(t *testing.T) {
	svc, _, _, disp := newTestService()
	ctx := context.Background()

	appt := acceptedAppointment(t, svc)

	updated, err := svc.CancelAppointment(ctx, appt.ID, "requester-1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, updated.Status)

	events := disp.recorded()
	last := events[len(events)-1]
	assert.Equal(t, models.EventAppointmentCancelled, last.Type)
	assert.Equal(t, "requester-1", last.ActorID)

	// A second cancel loses to the terminal state.
	_, err = svc.CancelAppointment(ctx, appt.ID, "provider-1")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, CodeOf(err))
}

func TestCompleteIsSilentAndProviderOnly(t *testing.T) {
	svc, _, _, disp := newTestService()
	ctx := context.Background()

	appt := acceptedAppointment(t, svc)
	before := len(disp.recorded())

	_, err := svc.Complete(ctx, appt.ID, "requester-1")
	require.Error(t, err)
	assert.Equal(t, CodeForbidden, CodeOf(err))

	updated, err := svc.Complete(ctx, appt.ID, "provider-1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, updated.Status)
	assert.Len(t, disp.recorded(), before)
}

func TestMarkNoShowTerminalGuard(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	appt := acceptedAppointment(t, svc)

	_, err := svc.MarkNoShow(ctx, appt.ID, "provider-1")
	require.NoError(t, err)

	_, err = svc.MarkNoShow(ctx, appt.ID, "provider-1")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, CodeOf(err))
}

func TestSetAppointmentNotes(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	appt := acceptedAppointment(t, svc)

	_, err := svc.SetAppointmentNotes(ctx, appt.ID, "requester-1", "bring the paperwork")
	require.Error(t, err)
	assert.Equal(t, CodeForbidden, CodeOf(err))

	updated, err := svc.SetAppointmentNotes(ctx, appt.ID, "provider-1", "bring the paperwork")
	require.NoError(t, err)
	assert.Equal(t, "bring the paperwork", updated.Notes)

	_, err = svc.Complete(ctx, appt.ID, "provider-1")
	require.NoError(t, err)

	_, err = svc.SetAppointmentNotes(ctx, appt.ID, "provider-1", "too late")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidState, CodeOf(err))
}

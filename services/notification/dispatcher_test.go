package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	notificationRepo "bookline/database/repository/notification"
	"bookline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotifRepo is an in-memory NotificationRepository with the same dedupe
// semantics as the Mongo implementation.
type fakeNotifRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.Notification
	dedupe  map[string]bool
	failAll bool
}

func newFakeNotifRepo() *fakeNotifRepo {
	return &fakeNotifRepo{byID: map[string]*models.Notification{}, dedupe: map[string]bool{}}
}

func (f *fakeNotifRepo) Insert(ctx context.Context, n *models.Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return false, context.DeadlineExceeded
	}
	if f.dedupe[n.DedupeKey] {
		return false, nil
	}
	f.dedupe[n.DedupeKey] = true
	n.CreatedAt = time.Now()
	cp := *n
	f.byID[n.ID] = &cp
	return true, nil
}

func (f *fakeNotifRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.byID[id]
	if !ok {
		return nil, notificationRepo.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotifRepo) ListByRecipient(ctx context.Context, recipientID string, limit, offset int64) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.byID {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotifRepo) MarkRead(ctx context.Context, id, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.byID[id]
	if !ok {
		return notificationRepo.ErrNotFound
	}
	if n.RecipientID != recipientID {
		return notificationRepo.ErrForbidden
	}
	n.Read = true
	return nil
}

func (f *fakeNotifRepo) MarkAllReadBefore(ctx context.Context, recipientID string, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var modified int64
	for _, n := range f.byID {
		if n.RecipientID == recipientID && !n.Read && !n.CreatedAt.After(cutoff) {
			n.Read = true
			modified++
		}
	}
	return modified, nil
}

func (f *fakeNotifRepo) Delete(ctx context.Context, id, recipientID string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.byID[id]
	if !ok {
		return nil, notificationRepo.ErrNotFound
	}
	if n.RecipientID != recipientID {
		return nil, notificationRepo.ErrForbidden
	}
	delete(f.byID, id)
	return n, nil
}

func (f *fakeNotifRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.byID {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

// fakePusher records live publishes for a configurable set of connected users.
type fakePusher struct {
	mu        sync.Mutex
	connected map[string]bool
	published []models.Notification
}

func newFakePusher(connected ...string) *fakePusher {
	p := &fakePusher{connected: map[string]bool{}}
	for _, id := range connected {
		p.connected[id] = true
	}
	return p
}

func (p *fakePusher) Publish(recipientID string, n models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, n)
}

func (p *fakePusher) IsConnected(recipientID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected[recipientID]
}

type fakeDirectory struct {
	names map[string]string
}

func (d *fakeDirectory) GetDisplayInfo(ctx context.Context, userID string) (models.DisplayInfo, error) {
	return models.DisplayInfo{Name: d.names[userID]}, nil
}

func newTestDispatcher(repo *fakeNotifRepo, pusher *fakePusher) *DefaultDispatcher {
	return &DefaultDispatcher{
		Repo: repo,
		Live: pusher,
		Directory: &fakeDirectory{names: map[string]string{
			"requester-1": "Amina",
			"provider-1":  "Dr. Okafor",
		}},
	}
}

func acceptedEvent() models.Event {
	return models.Event{
		ID:            "evt-1",
		Type:          models.EventRequestAccepted,
		RequestID:     "req-1",
		AppointmentID: "appt-1",
		ActorID:       "provider-1",
		RequesterID:   "requester-1",
		ProviderID:    "provider-1",
		OccurredAt:    time.Now(),
	}
}

func TestDeliverAcceptedNotifiesRequester(t *testing.T) {
	repo := newFakeNotifRepo()
	pusher := newFakePusher("requester-1")
	d := newTestDispatcher(repo, pusher)

	require.NoError(t, d.Deliver(context.Background(), acceptedEvent()))

	list, err := repo.ListByRecipient(context.Background(), "requester-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.CategoryBookingAccepted, list[0].Category)
	assert.Contains(t, list[0].Message, "Dr. Okafor")
	assert.Equal(t, "/appointments/appt-1", list[0].ActionRef)
	assert.False(t, list[0].Read)

	require.Len(t, pusher.published, 1)
	assert.Equal(t, "requester-1", pusher.published[0].RecipientID)
}

func TestDeliverIsIdempotentPerEvent(t *testing.T) {
	repo := newFakeNotifRepo()
	pusher := newFakePusher("requester-1")
	d := newTestDispatcher(repo, pusher)

	evt := acceptedEvent()
	require.NoError(t, d.Deliver(context.Background(), evt))
	require.NoError(t, d.Deliver(context.Background(), evt))

	list, err := repo.ListByRecipient(context.Background(), "requester-1", 50, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	// The redelivery must not re-push either.
	assert.Len(t, pusher.published, 1)
}

func TestDeliverRejectedIncludesReason(t *testing.T) {
	repo := newFakeNotifRepo()
	d := newTestDispatcher(repo, newFakePusher())

	evt := acceptedEvent()
	evt.Type = models.EventRequestRejected
	evt.AppointmentID = ""
	evt.Reason = "fully booked that week"
	require.NoError(t, d.Deliver(context.Background(), evt))

	list, err := repo.ListByRecipient(context.Background(), "requester-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.CategoryBookingRejected, list[0].Category)
	assert.Contains(t, list[0].Message, "fully booked that week")
}

func TestDeliverCancelledRequestNotifiesProvider(t *testing.T) {
	repo := newFakeNotifRepo()
	d := newTestDispatcher(repo, newFakePusher())

	evt := acceptedEvent()
	evt.Type = models.EventRequestCancelled
	evt.ActorID = "requester-1"
	require.NoError(t, d.Deliver(context.Background(), evt))

	list, err := repo.ListByRecipient(context.Background(), "provider-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.CategoryBookingCancelled, list[0].Category)
	assert.Contains(t, list[0].Message, "Amina")
}

func TestAppointmentCancelRoutesToNonInitiator(t *testing.T) {
	cases := []struct {
		name          string
		actor         string
		wantRecipient string
	}{
		{"requester cancels, provider told", "requester-1", "provider-1"},
		{"provider cancels, requester told", "provider-1", "requester-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeNotifRepo()
			d := newTestDispatcher(repo, newFakePusher())

			evt := acceptedEvent()
			evt.Type = models.EventAppointmentCancelled
			evt.ActorID = tc.actor
			require.NoError(t, d.Deliver(context.Background(), evt))

			list, err := repo.ListByRecipient(context.Background(), tc.wantRecipient, 50, 0)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, models.CategoryAppointmentCancelled, list[0].Category)

			other := "requester-1"
			if tc.wantRecipient == "requester-1" {
				other = "provider-1"
			}
			otherList, err := repo.ListByRecipient(context.Background(), other, 50, 0)
			require.NoError(t, err)
			assert.Empty(t, otherList)
		})
	}
}

func TestReminderNotifiesBothParties(t *testing.T) {
	repo := newFakeNotifRepo()
	d := newTestDispatcher(repo, newFakePusher())

	evt := acceptedEvent()
	evt.ID = "reminder:appt-1"
	evt.Type = models.EventAppointmentReminder
	require.NoError(t, d.Deliver(context.Background(), evt))

	for _, recipient := range []string{"requester-1", "provider-1"} {
		list, err := repo.ListByRecipient(context.Background(), recipient, 50, 0)
		require.NoError(t, err)
		require.Len(t, list, 1, "recipient %s", recipient)
		assert.Equal(t, models.CategoryAppointmentReminder, list[0].Category)
	}
}

func TestDeliverOfflineRecipientStillPersists(t *testing.T) {
	repo := newFakeNotifRepo()
	pusher := newFakePusher() // nobody connected
	d := newTestDispatcher(repo, pusher)

	require.NoError(t, d.Deliver(context.Background(), acceptedEvent()))

	list, err := repo.ListByRecipient(context.Background(), "requester-1", 50, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Empty(t, pusher.published)
}

func TestDeliverSurfacesPersistenceFailure(t *testing.T) {
	repo := newFakeNotifRepo()
	repo.failAll = true
	d := newTestDispatcher(repo, newFakePusher())

	err := d.Deliver(context.Background(), acceptedEvent())
	require.Error(t, err)
}

func TestDeliverUnknownEventIsNoop(t *testing.T) {
	repo := newFakeNotifRepo()
	d := newTestDispatcher(repo, newFakePusher())

	evt := acceptedEvent()
	evt.Type = "something_else"
	require.NoError(t, d.Deliver(context.Background(), evt))
	assert.Empty(t, repo.byID)
}

func TestDisplayNameFallsBack(t *testing.T) {
	d := &DefaultDispatcher{Repo: newFakeNotifRepo()}

	evt := acceptedEvent()
	require.NoError(t, d.Deliver(context.Background(), evt))

	list, err := d.Repo.ListByRecipient(context.Background(), "requester-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "The other party")
}

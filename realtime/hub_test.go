package realtime

import (
	"fmt"
	"testing"

	"bookline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(id string) models.Notification {
	return models.Notification{ID: id, RecipientID: "user-1", Title: "Booking accepted"}
}

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	defer sub.Close()

	hub.Publish("user-1", note("n1"))

	got := <-sub.C
	assert.Equal(t, "n1", got.ID)
}

func TestPublishPreservesOrderPerRecipient(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	defer sub.Close()

	for i := 0; i < 10; i++ {
		hub.Publish("user-1", note(fmt.Sprintf("n%d", i)))
	}
	for i := 0; i < 10; i++ {
		got := <-sub.C
		assert.Equal(t, fmt.Sprintf("n%d", i), got.ID)
	}
}

func TestPublishFansOutToAllDevices(t *testing.T) {
	hub := NewHub()
	phone := hub.Subscribe("user-1")
	laptop := hub.Subscribe("user-1")
	defer phone.Close()
	defer laptop.Close()

	hub.Publish("user-1", note("n1"))

	assert.Equal(t, "n1", (<-phone.C).ID)
	assert.Equal(t, "n1", (<-laptop.C).ID)
}

func TestPublishSkipsOtherUsers(t *testing.T) {
	hub := NewHub()
	other := hub.Subscribe("user-2")
	defer other.Close()

	hub.Publish("user-1", note("n1"))

	select {
	case n := <-other.C:
		t.Fatalf("user-2 received %s addressed to user-1", n.ID)
	default:
	}
}

func TestIsConnectedTracksSubscriptions(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.IsConnected("user-1"))

	phone := hub.Subscribe("user-1")
	laptop := hub.Subscribe("user-1")
	assert.True(t, hub.IsConnected("user-1"))

	phone.Close()
	assert.True(t, hub.IsConnected("user-1"), "one device still connected")

	laptop.Close()
	assert.False(t, hub.IsConnected("user-1"))
	assert.Empty(t, hub.ConnectedUsers())
}

func TestCloseIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")

	sub.Close()
	require.NotPanics(t, sub.Close)
}

func TestPublishDoesNotBlockOnFullBuffer(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	defer sub.Close()

	// Overfill the buffer; the overflow is dropped, not blocked on.
	for i := 0; i < subscriptionBuffer+5; i++ {
		hub.Publish("user-1", note(fmt.Sprintf("n%d", i)))
	}
	assert.Len(t, sub.C, subscriptionBuffer)
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	sub.Close()

	require.NotPanics(t, func() {
		hub.Publish("user-1", note("n1"))
	})
}

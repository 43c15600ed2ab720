// Package realtime fans committed notifications out to connected recipients.
package realtime

import (
	"sync"

	"bookline/models"
	"bookline/utils"

	"go.uber.org/zap"
)

const subscriptionBuffer = 64

// Subscription is one user's live feed. It is created by Hub.Subscribe and
// must be released with Close; closing is idempotent and only tears down this
// connection, never the user's other subscriptions.
type Subscription struct {
	UserID string
	C      chan models.Notification

	hub    *Hub
	closed sync.Once
}

// Close detaches the subscription from the hub and closes its channel.
func (s *Subscription) Close() {
	s.closed.Do(func() {
		s.hub.unsubscribe(s)
		close(s.C)
	})
}

// Hub tracks every open subscription keyed by user ID. Publish is called in
// commit order per recipient, and each subscription channel is FIFO, so a
// single recipient always observes notifications in commit order.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe opens a live feed for the user. A user may hold any number of
// concurrent subscriptions (one per connected device).
func (h *Hub) Subscribe(userID string) *Subscription {
	sub := &Subscription{
		UserID: userID,
		C:      make(chan models.Notification, subscriptionBuffer),
		hub:    h,
	}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[sub.UserID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.UserID)
		}
	}
}

// Publish delivers a notification to every open subscription of the
// recipient. A subscription whose buffer is full is skipped: the durable
// store is the source of truth and the client reconciles on reconnect.
func (h *Hub) Publish(recipientID string, n models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[recipientID] {
		select {
		case sub.C <- n:
		default:
			utils.GetLogger().Warn("subscriber buffer full, dropping live push",
				zap.String("recipient", recipientID),
				zap.String("notification", n.ID))
		}
	}
}

// IsConnected reports whether the user has at least one open subscription.
func (h *Hub) IsConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID]) > 0
}

// ConnectedUsers returns the IDs of currently subscribed users.
func (h *Hub) ConnectedUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.subs))
	for id := range h.subs {
		users = append(users, id)
	}
	return users
}

package notification

import (
	"context"

	"bookline/models"
)

// Dispatcher converts committed domain events into durable notifications and
// pushes them to connected recipients. Dispatch never fails the caller: a
// delivery problem is logged and retried asynchronously, at least once,
// de-duplicated by the (event, recipient) key.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt models.Event)
	// Deliver is the retryable core of Dispatch: it returns an error when the
	// event should be redelivered by the task queue.
	Deliver(ctx context.Context, evt models.Event) error
}

// Pusher is the live-channel side the dispatcher publishes into.
type Pusher interface {
	Publish(recipientID string, n models.Notification)
	IsConnected(recipientID string) bool
}

// NotificationService exposes the recipient-facing notification operations.
type NotificationService interface {
	// List returns a page of the recipient's notifications, newest first.
	List(ctx context.Context, recipientID string, limit, offset int64) ([]models.Notification, error)
	// MarkRead flips one notification to read. Idempotent; forbidden for
	// anyone but the recipient.
	MarkRead(ctx context.Context, notificationID, recipientID string) error
	// MarkAllRead flips every notification unread as of call time. Ones
	// created after the call begins are unaffected.
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	// Clear deletes one of the recipient's notifications.
	Clear(ctx context.Context, notificationID, recipientID string) error
	// UnreadCount returns the recipient's unread total.
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
}

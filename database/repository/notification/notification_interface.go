package notificationRepo

import (
	"context"
	"time"

	"bookline/models"
)

// NotificationRepository defines methods for notification data access.
//
// Insert is idempotent on the dedupe key: redelivering the same event writes
// nothing the second time. Read-state mutations are recipient-scoped so one
// user can never touch another's notifications.
type NotificationRepository interface {
	// Insert persists a notification unless one with the same dedupe key
	// already exists. It reports whether a new document was written.
	Insert(ctx context.Context, n *models.Notification) (bool, error)
	// GetByID retrieves a notification by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// ListByRecipient retrieves a page of the recipient's notifications,
	// newest first.
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int64) ([]models.Notification, error)
	// MarkRead sets read=true on one of the recipient's notifications.
	// Marking an already-read notification is a no-op, not an error.
	MarkRead(ctx context.Context, id, recipientID string) error
	// MarkAllReadBefore sets read=true on the recipient's notifications
	// created at or before the cutoff, and reports how many were flipped.
	MarkAllReadBefore(ctx context.Context, recipientID string, cutoff time.Time) (int64, error)
	// Delete removes one of the recipient's notifications and returns the
	// deleted document so callers can tell whether it was still unread.
	Delete(ctx context.Context, id, recipientID string) (*models.Notification, error)
	// CountUnread counts the recipient's unread notifications.
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

package notification

import (
	"context"
	"errors"
	"strconv"
	"time"

	notificationRepo "bookline/database/repository/notification"
	"bookline/models"
	"bookline/services/scheduling"
	"bookline/utils"

	"github.com/go-redis/redis/v8"
)

const unreadCountTTL = 5 * time.Minute

// DefaultNotificationService is the production implementation of the
// recipient-facing operations.
type DefaultNotificationService struct {
	Repo  notificationRepo.NotificationRepository
	Cache *redis.Client
}

// List returns a page of the recipient's notifications, newest first.
func (s *DefaultNotificationService) List(ctx context.Context, recipientID string, limit, offset int64) ([]models.Notification, error) {
	return s.Repo.ListByRecipient(ctx, recipientID, limit, offset)
}

// MarkRead flips one notification to read. Marking an already-read
// notification is a no-op, not an error.
func (s *DefaultNotificationService) MarkRead(ctx context.Context, notificationID, recipientID string) error {
	if err := s.Repo.MarkRead(ctx, notificationID, recipientID); err != nil {
		return mapNotificationErr(err)
	}
	s.invalidateUnread(ctx, recipientID)
	return nil
}

// MarkAllRead flips everything unread as of call time. The cutoff is taken
// before the update, so a notification committed while the call runs stays
// unread.
func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	cutoff := time.Now()
	modified, err := s.Repo.MarkAllReadBefore(ctx, recipientID, cutoff)
	if err != nil {
		return 0, err
	}
	s.invalidateUnread(ctx, recipientID)
	return modified, nil
}

// Clear deletes one of the recipient's notifications. The unread counter only
// moves when the cleared item was still unread.
func (s *DefaultNotificationService) Clear(ctx context.Context, notificationID, recipientID string) error {
	deleted, err := s.Repo.Delete(ctx, notificationID, recipientID)
	if err != nil {
		return mapNotificationErr(err)
	}
	if !deleted.Read {
		s.invalidateUnread(ctx, recipientID)
	}
	return nil
}

// UnreadCount returns the recipient's unread total, served from the Redis
// counter cache when warm.
func (s *DefaultNotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	key := utils.UnreadCountKey(recipientID)

	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, key).Result(); err == nil {
			if count, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.Repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	if s.Cache != nil {
		_ = s.Cache.Set(ctx, key, strconv.FormatInt(count, 10), unreadCountTTL).Err()
	}
	return count, nil
}

// invalidateUnread drops the cached counter so the next read recomputes it.
// Invalidation cannot double-decrement or go negative the way arithmetic on
// the counter could.
func (s *DefaultNotificationService) invalidateUnread(ctx context.Context, recipientID string) {
	if s.Cache == nil {
		return
	}
	_ = s.Cache.Del(ctx, utils.UnreadCountKey(recipientID)).Err()
}

func mapNotificationErr(err error) error {
	switch {
	case errors.Is(err, notificationRepo.ErrNotFound):
		return scheduling.NewNotFound("notification not found")
	case errors.Is(err, notificationRepo.ErrForbidden):
		return scheduling.NewForbidden("this notification belongs to another user")
	default:
		return err
	}
}

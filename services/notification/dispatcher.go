package notification

import (
	"context"
	"fmt"

	notificationRepo "bookline/database/repository/notification"
	"bookline/models"
	"bookline/services/directory"
	"bookline/services/tasks"
	"bookline/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// DefaultDispatcher is the production Dispatcher. It persists exactly one
// notification per (event, recipient) pair, publishes it on the recipient's
// live channel, and falls back to an FCM push when the recipient has no open
// connection.
type DefaultDispatcher struct {
	Repo      notificationRepo.NotificationRepository
	Live      Pusher
	Directory directory.Service
	Tokens    TokenStore
	Queue     *asynq.Client
	Cache     *redis.Client
	FCM       *messaging.Client
}

// target is one recipient-addressed notification derived from an event.
type target struct {
	recipientID string
	title       string
	message     string
	category    models.NotificationCategory
	actionRef   string
}

// Dispatch delivers the event, and on failure hands it to the task queue for
// asynchronous redelivery. The caller's transition is already committed and
// is never affected.
func (d *DefaultDispatcher) Dispatch(ctx context.Context, evt models.Event) {
	logger := utils.GetLogger()

	if err := d.Deliver(ctx, evt); err != nil {
		logger.Warn("notification delivery failed, scheduling retry",
			zap.String("event", string(evt.Type)),
			zap.String("eventId", evt.ID),
			zap.Error(err),
		)
		d.enqueueRetry(evt)
	}
}

// Deliver materializes and pushes the event's notifications. It returns an
// error when any persistence write failed, so the task queue redelivers; the
// unique dedupe key makes redelivery invisible to recipients.
func (d *DefaultDispatcher) Deliver(ctx context.Context, evt models.Event) error {
	logger := utils.GetLogger()

	var firstErr error
	for _, t := range d.route(ctx, evt) {
		n := models.Notification{
			ID:          uuid.New().String(),
			RecipientID: t.recipientID,
			Title:       t.title,
			Message:     t.message,
			Category:    t.category,
			ActionRef:   t.actionRef,
			DedupeKey:   evt.ID + ":" + t.recipientID,
			Read:        false,
		}

		inserted, err := d.Repo.Insert(ctx, &n)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("persist notification for %s: %w", t.recipientID, err)
			}
			continue
		}
		if !inserted {
			// Redelivery of an already-materialized event.
			logger.Debug("duplicate event delivery ignored",
				zap.String("dedupeKey", n.DedupeKey))
			continue
		}

		if d.Cache != nil {
			_ = d.Cache.Del(ctx, utils.UnreadCountKey(t.recipientID)).Err()
		}

		if d.Live != nil && d.Live.IsConnected(t.recipientID) {
			d.Live.Publish(t.recipientID, n)
		} else {
			d.pushFCM(ctx, n)
		}
	}
	return firstErr
}

// route applies the event-to-recipient mapping table.
func (d *DefaultDispatcher) route(ctx context.Context, evt models.Event) []target {
	switch evt.Type {
	case models.EventRequestAccepted:
		return []target{{
			recipientID: evt.RequesterID,
			title:       "Booking accepted",
			message:     fmt.Sprintf("%s accepted your booking request.", d.displayName(ctx, evt.ProviderID)),
			category:    models.CategoryBookingAccepted,
			actionRef:   "/appointments/" + evt.AppointmentID,
		}}
	case models.EventRequestRejected:
		msg := fmt.Sprintf("%s declined your booking request.", d.displayName(ctx, evt.ProviderID))
		if evt.Reason != "" {
			msg = fmt.Sprintf("%s Reason: %s", msg, evt.Reason)
		}
		return []target{{
			recipientID: evt.RequesterID,
			title:       "Booking declined",
			message:     msg,
			category:    models.CategoryBookingRejected,
			actionRef:   "/requests",
		}}
	case models.EventRequestCancelled:
		return []target{{
			recipientID: evt.ProviderID,
			title:       "Booking request withdrawn",
			message:     fmt.Sprintf("%s cancelled their booking request.", d.displayName(ctx, evt.RequesterID)),
			category:    models.CategoryBookingCancelled,
			actionRef:   "/requests",
		}}
	case models.EventAppointmentCancelled:
		// The non-initiating party is the one told.
		recipient := evt.RequesterID
		if evt.ActorID == evt.RequesterID {
			recipient = evt.ProviderID
		}
		return []target{{
			recipientID: recipient,
			title:       "Appointment cancelled",
			message:     fmt.Sprintf("%s cancelled your appointment.", d.displayName(ctx, evt.ActorID)),
			category:    models.CategoryAppointmentCancelled,
			actionRef:   "/appointments/" + evt.AppointmentID,
		}}
	case models.EventAppointmentReminder:
		return []target{
			{
				recipientID: evt.RequesterID,
				title:       "Upcoming appointment",
				message:     fmt.Sprintf("Your appointment with %s is coming up.", d.displayName(ctx, evt.ProviderID)),
				category:    models.CategoryAppointmentReminder,
				actionRef:   "/appointments/" + evt.AppointmentID,
			},
			{
				recipientID: evt.ProviderID,
				title:       "Upcoming appointment",
				message:     fmt.Sprintf("Your appointment with %s is coming up.", d.displayName(ctx, evt.RequesterID)),
				category:    models.CategoryAppointmentReminder,
				actionRef:   "/appointments/" + evt.AppointmentID,
			},
		}
	default:
		utils.GetLogger().Warn("unknown event type, nothing to dispatch",
			zap.String("event", string(evt.Type)))
		return nil
	}
}

// displayName resolves a party's name for message text, falling back to a
// neutral noun when the directory is unavailable.
func (d *DefaultDispatcher) displayName(ctx context.Context, userID string) string {
	if d.Directory == nil {
		return "The other party"
	}
	info, err := d.Directory.GetDisplayInfo(ctx, userID)
	if err != nil || info.Name == "" {
		return "The other party"
	}
	return info.Name
}

// pushFCM sends a best-effort push to an offline recipient. Failures are
// logged and dropped; the durable record already exists.
func (d *DefaultDispatcher) pushFCM(ctx context.Context, n models.Notification) {
	if d.FCM == nil || d.Tokens == nil {
		return
	}
	logger := utils.GetLogger()

	token, err := d.Tokens.Get(ctx, n.RecipientID)
	if err != nil || token == "" {
		return
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: map[string]string{
			"category":  string(n.Category),
			"actionRef": n.ActionRef,
		},
	}
	if _, err := d.FCM.Send(ctx, msg); err != nil {
		logger.Warn("fcm push failed",
			zap.String("recipient", n.RecipientID),
			zap.Error(err))
	}
}

func (d *DefaultDispatcher) enqueueRetry(evt models.Event) {
	logger := utils.GetLogger()

	if d.Queue == nil {
		logger.Error("no task queue configured, event delivery lost",
			zap.String("eventId", evt.ID))
		return
	}

	task, opts, err := tasks.NewDeliverTask(evt)
	if err != nil {
		logger.Error("failed to build delivery retry task", zap.Error(err))
		return
	}
	if _, err := d.Queue.Enqueue(task, opts...); err != nil {
		logger.Error("failed to enqueue delivery retry", zap.Error(err))
	}
}

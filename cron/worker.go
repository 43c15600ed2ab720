package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"bookline/config"
	appointmentRepo "bookline/database/repository/appointment"
	"bookline/models"
	"bookline/services/notification"
	"bookline/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const scanInterval = 10 * time.Minute

// InitNotificationWorker runs the async worker in background. It redelivers
// failed notification events and fires scheduled appointment reminders.
func InitNotificationWorker(dispatcher notification.Dispatcher, appts appointmentRepo.AppointmentRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationDeliver, handleDeliverTask(dispatcher))
	mux.HandleFunc(tasks.TypeAppointmentReminder, handleReminderTask(dispatcher, appts))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[NotificationWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotificationWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotificationWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleDeliverTask redelivers a domain event whose inline dispatch failed.
// Returning the error lets asynq back off and retry; the dispatcher's dedupe
// key keeps every retry invisible once delivery succeeds.
func handleDeliverTask(dispatcher notification.Dispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var evt models.Event
		if err := json.Unmarshal(task.Payload(), &evt); err != nil {
			log.Printf("[DeliverHandler] Invalid payload: %v", err)
			return err
		}
		return dispatcher.Deliver(ctx, evt)
	}
}

// handleReminderTask fires a reminder for an appointment that is still on the
// books when the task runs.
func handleReminderTask(dispatcher notification.Dispatcher, appts appointmentRepo.AppointmentRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] Invalid payload: %v", err)
			return err
		}

		appt, err := appts.GetByID(ctx, p.AppointmentID)
		if err != nil {
			// The appointment may have been cancelled after scheduling.
			log.Printf("[ReminderHandler] Skipping reminder, appointment %s not loadable: %v", p.AppointmentID, err)
			return nil
		}
		if appt.Status != models.AppointmentStatusScheduled {
			return nil
		}

		// A deterministic event ID makes a rescanned appointment dedupe to
		// the same notification.
		return dispatcher.Deliver(ctx, models.Event{
			ID:            "reminder:" + appt.ID,
			Type:          models.EventAppointmentReminder,
			AppointmentID: appt.ID,
			RequestID:     appt.SourceRequestID,
			RequesterID:   appt.RequesterID,
			ProviderID:    appt.ProviderID,
			OccurredAt:    time.Now(),
		})
	}
}

// StartReminderScanner periodically enqueues reminder tasks for appointments
// whose start time falls inside the lead window.
func StartReminderScanner(ctx context.Context, appts appointmentRepo.AppointmentRepository, queue *asynq.Client) {
	go func() {
		ticker := time.NewTicker(scanInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("Reminder scanner shutdown signal received.")
				return
			case <-ticker.C:
				scanOnce(ctx, appts, queue)
			}
		}
	}()
}

func scanOnce(ctx context.Context, appts appointmentRepo.AppointmentRepository, queue *asynq.Client) {
	lead := time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute
	now := time.Now()

	upcoming, err := appts.ListScheduledBetween(ctx, now, now.Add(lead+scanInterval))
	if err != nil {
		log.Printf("Reminder scan failed: %v", err)
		return
	}

	for _, appt := range upcoming {
		fireAt := appt.StartTime.Add(-lead)
		if fireAt.Before(now) {
			fireAt = now
		}
		task, opts, err := tasks.NewReminderTask(models.ReminderPayload{
			AppointmentID: appt.ID,
			FireAt:        fireAt,
		}, fireAt)
		if err != nil {
			log.Printf("Failed to build reminder task for %s: %v", appt.ID, err)
			continue
		}
		if _, err := queue.Enqueue(task, opts...); err != nil {
			log.Printf("Failed to enqueue reminder for %s: %v", appt.ID, err)
		}
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[NotificationWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}

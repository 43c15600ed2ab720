package tasks

import (
	"encoding/json"

	"bookline/models"

	"github.com/hibiken/asynq"
)

const TypeNotificationDeliver = "notification:deliver"

// NewDeliverTask wraps a committed domain event for asynchronous redelivery.
// The dispatcher's dedupe key keeps redelivery idempotent, so a generous
// retry budget is safe.
func NewDeliverTask(evt models.Event) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotificationDeliver, b)
	opts := []asynq.Option{asynq.MaxRetry(10)}

	return task, opts, nil
}

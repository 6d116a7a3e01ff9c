// Package jobs contains the background task types, their payloads, and
// the Asynq worker and client plumbing.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/FerDom92/task-manager-pro/internal/notifications"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeDeliverNotification is the task type for writing one
	// notification into a user's feed.
	TaskTypeDeliverNotification = "notification:deliver"
	// TaskTypeDueSoonScan is the cron task type that flags tasks
	// approaching their due date.
	TaskTypeDueSoonScan = "tasks:scan_due_soon"
)

// DeliverNotificationPayload describes one notification to write. Kind
// selects the typed constructor; RelatedID and RelatedTitle describe the
// task or project that triggered it.
type DeliverNotificationPayload struct {
	UserID       string             `json:"userId"`
	Kind         notifications.Type `json:"kind"`
	RelatedID    string             `json:"relatedId"`
	RelatedTitle string             `json:"relatedTitle"`
}

// NewDeliverNotificationTask constructs an Asynq task.
func NewDeliverNotificationTask(payload DeliverNotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDeliverNotification, data), nil
}

// NewDueSoonScanTask constructs the cron scan task. It carries no payload.
func NewDueSoonScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeDueSoonScan, nil)
}

package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/FerDom92/task-manager-pro/internal/notifications"
	"github.com/FerDom92/task-manager-pro/internal/projects"
	"github.com/FerDom92/task-manager-pro/internal/tasks"
)

// Enqueuer submits notification jobs from the HTTP side. It satisfies
// the Notifier interfaces of the tasks and projects services.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer constructs an enqueuer.
func NewEnqueuer(redisOpts asynq.RedisClientOpt) *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(redisOpts)}
}

// Close releases client resources.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}

func (e *Enqueuer) enqueue(ctx context.Context, payload DeliverNotificationPayload) error {
	task, err := NewDeliverNotificationTask(payload)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// TaskAssigned enqueues a TASK_ASSIGNED notification for the assignee.
func (e *Enqueuer) TaskAssigned(ctx context.Context, task tasks.Task, assigneeID string) error {
	return e.enqueue(ctx, DeliverNotificationPayload{
		UserID:       assigneeID,
		Kind:         notifications.TypeTaskAssigned,
		RelatedID:    task.ID,
		RelatedTitle: task.Title,
	})
}

// TaskCompleted enqueues a TASK_COMPLETED notification for the creator.
func (e *Enqueuer) TaskCompleted(ctx context.Context, task tasks.Task) error {
	return e.enqueue(ctx, DeliverNotificationPayload{
		UserID:       task.CreatedByID,
		Kind:         notifications.TypeTaskCompleted,
		RelatedID:    task.ID,
		RelatedTitle: task.Title,
	})
}

// ProjectInvite enqueues a PROJECT_INVITE notification for the invitee.
func (e *Enqueuer) ProjectInvite(ctx context.Context, project projects.Project, userID, _ string) error {
	return e.enqueue(ctx, DeliverNotificationPayload{
		UserID:       userID,
		Kind:         notifications.TypeProjectInvite,
		RelatedID:    project.ID,
		RelatedTitle: project.Name,
	})
}

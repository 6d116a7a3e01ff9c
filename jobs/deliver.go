package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/FerDom92/task-manager-pro/internal/jobs"
	"github.com/FerDom92/task-manager-pro/internal/notifications"
)

// DeliverJob writes enqueued notifications into user feeds.
type DeliverJob struct {
	Service *notifications.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDeliverJob initialises the delivery handler.
func NewDeliverJob(service *notifications.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *DeliverJob {
	return &DeliverJob{Service: service, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTypeDeliverNotification tasks.
func (j *DeliverJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("notification delivery: handler not configured")
	}
	var payload DeliverNotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.UserID == "" || !payload.Kind.Valid() {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTypeDeliverNotification)
	var err error
	defer func() {
		tracker.End(err)
	}()

	switch payload.Kind {
	case notifications.TypeTaskAssigned:
		_, err = j.Service.NotifyTaskAssigned(ctx, payload.UserID, payload.RelatedID, payload.RelatedTitle)
	case notifications.TypeTaskCompleted:
		_, err = j.Service.NotifyTaskCompleted(ctx, payload.UserID, payload.RelatedID, payload.RelatedTitle)
	case notifications.TypeTaskDueSoon:
		_, err = j.Service.NotifyTaskDueSoon(ctx, payload.UserID, payload.RelatedID, payload.RelatedTitle)
	case notifications.TypeProjectInvite:
		_, err = j.Service.NotifyProjectInvite(ctx, payload.UserID, payload.RelatedID, payload.RelatedTitle)
	default:
		err = fmt.Errorf("no delivery for notification kind %q", payload.Kind)
		j.logger().Warn("dropping notification", slog.String("kind", string(payload.Kind)))
		return asynq.SkipRetry
	}
	if err != nil {
		j.logger().Error("deliver notification",
			slog.String("user_id", payload.UserID),
			slog.String("kind", string(payload.Kind)),
			slog.Any("error", err))
	}
	return err
}

func (j *DeliverJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

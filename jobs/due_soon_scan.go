package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/FerDom92/task-manager-pro/internal/jobs"
	"github.com/FerDom92/task-manager-pro/internal/notifications"
)

// DueSoonScanJob flags open tasks whose due date falls inside the next
// 24 hours. It runs on a cron schedule and notifies the assignee, or
// the creator when the task is unassigned.
type DueSoonScanJob struct {
	Pool    *pgxpool.Pool
	Service *notifications.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewDueSoonScanJob initialises the due-soon scan handler.
func NewDueSoonScanJob(pool *pgxpool.Pool, service *notifications.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *DueSoonScanJob {
	return &DueSoonScanJob{
		Pool:    pool,
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type dueSoonRow struct {
	TaskID string
	Title  string
	UserID string
}

// Handle executes the scan. Tasks that already received a TASK_DUE_SOON
// notification are skipped, so reruns do not duplicate entries.
func (j *DueSoonScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Pool == nil || j.Service == nil {
		return errors.New("due-soon scan: handler not configured")
	}

	tracker := j.Metrics.Track(TaskTypeDueSoonScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.clock()
	logger := j.logger()
	logger.Info("starting due-soon scan")

	rows, err := j.Pool.Query(ctx, `
		SELECT t.id, t.title, COALESCE(t.assignee_id, t.created_by_id)
		FROM tasks t
		WHERE t.due_date BETWEEN $1 AND $2
		  AND t.status NOT IN ('DONE', 'CANCELLED')
		  AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.related_id = t.id
			  AND n.type = 'TASK_DUE_SOON'
			  AND n.user_id = COALESCE(t.assignee_id, t.created_by_id)
		  )`, now, now.Add(24*time.Hour))
	if err != nil {
		resultErr = err
		return resultErr
	}

	var due []dueSoonRow
	for rows.Next() {
		var row dueSoonRow
		if err := rows.Scan(&row.TaskID, &row.Title, &row.UserID); err != nil {
			rows.Close()
			resultErr = err
			return resultErr
		}
		due = append(due, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		resultErr = err
		return resultErr
	}

	notified := 0
	for _, row := range due {
		if _, err := j.Service.NotifyTaskDueSoon(ctx, row.UserID, row.TaskID, row.Title); err != nil {
			logger.Error("due-soon notification",
				slog.String("task_id", row.TaskID),
				slog.Any("error", err))
			resultErr = err
			continue
		}
		notified++
	}

	logger.Info("due-soon scan finished",
		slog.Int("candidates", len(due)),
		slog.Int("notified", notified))
	return resultErr
}

func (j *DueSoonScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

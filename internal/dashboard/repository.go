package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FerDom92/task-manager-pro/internal/tasks"
)

// Repository provides PostgreSQL backed aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, title, COALESCE(description, ''), status, priority, due_date, category_id, project_id, assignee_id, created_by_id, created_at, updated_at`

func collectTasks(rows pgx.Rows) ([]tasks.Task, error) {
	defer rows.Close()
	var result []tasks.Task
	for rows.Next() {
		var t tasks.Task
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate,
			&t.CategoryID, &t.ProjectID, &t.AssigneeID, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// TaskStats aggregates the user's tasks by status and priority.
func (r *Repository) TaskStats(ctx context.Context, userID string, now time.Time) (tasks.Stats, error) {
	stats := tasks.Stats{ByStatus: make(map[tasks.Status]int), ByPriority: make(map[tasks.Priority]int)}

	rows, err := r.pool.Query(ctx, `
		SELECT status, priority, count(*),
		       count(*) FILTER (WHERE due_date < $2 AND status NOT IN ('DONE', 'CANCELLED'))
		FROM tasks
		WHERE created_by_id = $1 OR assignee_id = $1
		GROUP BY status, priority`, userID, now)
	if err != nil {
		return tasks.Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var status tasks.Status
		var priority tasks.Priority
		var count, overdue int
		if err := rows.Scan(&status, &priority, &count, &overdue); err != nil {
			return tasks.Stats{}, err
		}
		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByPriority[priority] += count
		stats.Overdue += overdue
	}
	return stats, rows.Err()
}

// RecentTasks returns the user's most recently updated tasks.
func (r *Repository) RecentTasks(ctx context.Context, userID string, limit int) ([]tasks.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE created_by_id = $1 OR assignee_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// DueSoon returns open tasks due inside the window, soonest first.
func (r *Repository) DueSoon(ctx context.Context, userID string, from, until time.Time) ([]tasks.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE (created_by_id = $1 OR assignee_id = $1)
		  AND due_date BETWEEN $2 AND $3
		  AND status NOT IN ('DONE', 'CANCELLED')
		ORDER BY due_date ASC`, userID, from, until)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// ProjectCount returns how many projects the user is a member of.
func (r *Repository) ProjectCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM project_members WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// UnreadCount returns the user's unread notification count.
func (r *Repository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND read = false`, userID).Scan(&count)
	return count, err
}

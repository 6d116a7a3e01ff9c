package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, title, COALESCE(description, ''), status, priority, due_date, category_id, project_id, assignee_id, created_by_id, created_at, updated_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate,
		&t.CategoryID, &t.ProjectID, &t.AssigneeID, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts a new task.
func (r *Repository) Create(ctx context.Context, createdByID string, in CreateInput) (Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date, category_id, project_id, assignee_id, created_by_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+taskColumns,
		uuid.NewString(), in.Title, in.Description, in.Status, in.Priority,
		in.DueDate, in.CategoryID, in.ProjectID, in.AssigneeID, createdByID)
	return scanTask(row)
}

// Get fetches a task by id.
func (r *Repository) Get(ctx context.Context, id string) (Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, shared.ErrNotFound
		}
		return Task{}, err
	}
	return t, nil
}

// Save persists all mutable columns of an existing task.
func (r *Repository) Save(ctx context.Context, t Task) (Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks SET title = $2, description = NULLIF($3, ''), status = $4, priority = $5,
		       due_date = $6, category_id = $7, project_id = $8, assignee_id = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.CategoryID, t.ProjectID, t.AssigneeID)
	saved, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, shared.ErrNotFound
		}
		return Task{}, err
	}
	return saved, nil
}

// Delete removes a task. Returns shared.ErrNotFound if nothing was deleted.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"priority":  "priority",
	"status":    "status",
	"title":     "title",
}

// List returns the caller's tasks (created by or assigned to them)
// narrowed by filters, plus the unpaginated total.
func (r *Repository) List(ctx context.Context, userID string, f Filters) ([]Task, int, error) {
	where := []string{"(created_by_id = $1 OR assignee_id = $1)"}
	args := []any{userID}

	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Priority != "" {
		add("priority = $%d", f.Priority)
	}
	if f.CategoryID != "" {
		add("category_id = $%d", f.CategoryID)
	}
	if f.ProjectID != "" {
		add("project_id = $%d", f.ProjectID)
	}
	if f.AssigneeID != "" {
		add("assignee_id = $%d", f.AssigneeID)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy, ok := sortColumns[f.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		order = "ASC"
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		taskColumns, whereClause, sortBy, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// ListByProject returns all tasks in a project, newest first.
func (r *Repository) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Stats aggregates the caller's tasks by status and priority.
func (r *Repository) Stats(ctx context.Context, userID string, now time.Time) (Stats, error) {
	stats := Stats{ByStatus: make(map[Status]int), ByPriority: make(map[Priority]int)}

	rows, err := r.pool.Query(ctx, `
		SELECT status, priority, count(*),
		       count(*) FILTER (WHERE due_date < $2 AND status NOT IN ('DONE', 'CANCELLED'))
		FROM tasks
		WHERE created_by_id = $1 OR assignee_id = $1
		GROUP BY status, priority`, userID, now)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var status Status
		var priority Priority
		var count, overdue int
		if err := rows.Scan(&status, &priority, &count, &overdue); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByPriority[priority] += count
		stats.Overdue += overdue
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

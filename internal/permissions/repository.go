package permissions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides a PostgreSQL backed Store. Each fetch is a single
// round trip joining the resource with the caller's membership row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TaskFacts loads the task snapshot plus the caller's role in the task's
// project, when it has one.
func (r *Repository) TaskFacts(ctx context.Context, taskID, userID string) (TaskFacts, error) {
	const query = `
		SELECT t.created_by_id,
		       COALESCE(t.assignee_id::text, ''),
		       COALESCE(t.project_id::text, ''),
		       COALESCE(pm.role, '')
		FROM tasks t
		LEFT JOIN project_members pm
		       ON pm.project_id = t.project_id AND pm.user_id = $2
		WHERE t.id = $1`

	var facts TaskFacts
	var role string
	err := r.pool.QueryRow(ctx, query, taskID, userID).Scan(
		&facts.CreatedByID,
		&facts.AssigneeID,
		&facts.ProjectID,
		&role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TaskFacts{}, ErrTaskNotFound
		}
		return TaskFacts{}, err
	}
	facts.Role = Role(role)
	return facts, nil
}

// ProjectFacts loads the project owner plus the caller's membership row.
func (r *Repository) ProjectFacts(ctx context.Context, projectID, userID string) (ProjectFacts, error) {
	const query = `
		SELECT p.owner_id,
		       COALESCE(pm.role, '')
		FROM projects p
		LEFT JOIN project_members pm
		       ON pm.project_id = p.id AND pm.user_id = $2
		WHERE p.id = $1`

	var facts ProjectFacts
	var role string
	err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(&facts.OwnerID, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProjectFacts{}, ErrProjectNotFound
		}
		return ProjectFacts{}, err
	}
	facts.Role = Role(role)
	return facts, nil
}

package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FerDom92/task-manager-pro/internal/permissions"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// ErrAlreadyMember indicates the user already has a membership row.
var ErrAlreadyMember = errors.New("user is already a project member")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, name, COALESCE(description, ''), COALESCE(color, ''), owner_id, created_at, updated_at`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts the project and its OWNER membership in one transaction.
func (r *Repository) Create(ctx context.Context, ownerID string, in CreateInput) (Project, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Project{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO projects (id, name, description, color, owner_id)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING `+projectColumns,
		uuid.NewString(), in.Name, in.Description, in.Color, ownerID)
	p, err := scanProject(row)
	if err != nil {
		return Project{}, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO project_members (id, project_id, user_id, role)
		VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), p.ID, ownerID, permissions.RoleOwner)
	if err != nil {
		return Project{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Get fetches a project by id.
func (r *Repository) Get(ctx context.Context, id string) (Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, shared.ErrNotFound
		}
		return Project{}, err
	}
	return p, nil
}

// Save persists the mutable columns of an existing project.
func (r *Repository) Save(ctx context.Context, p Project) (Project, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE projects SET name = $2, description = NULLIF($3, ''), color = NULLIF($4, ''), updated_at = now()
		WHERE id = $1
		RETURNING `+projectColumns,
		p.ID, p.Name, p.Description, p.Color)
	saved, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, shared.ErrNotFound
		}
		return Project{}, err
	}
	return saved, nil
}

// Delete removes a project. Membership rows go with it via cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const viewQuery = `
	SELECT p.id, p.name, COALESCE(p.description, ''), COALESCE(p.color, ''), p.owner_id, p.created_at, p.updated_at,
	       pm.role,
	       (SELECT count(*) FROM project_members m WHERE m.project_id = p.id),
	       (SELECT count(*) FROM tasks t WHERE t.project_id = p.id)
	FROM projects p
	JOIN project_members pm ON pm.project_id = p.id AND pm.user_id = $1`

func scanView(row pgx.Row) (View, error) {
	var v View
	err := row.Scan(&v.ID, &v.Name, &v.Description, &v.Color, &v.OwnerID, &v.CreatedAt, &v.UpdatedAt,
		&v.Role, &v.MemberCount, &v.TaskCount)
	return v, err
}

// ListForUser returns all projects the user is a member of, with the
// user's role and member/task counts.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]View, error) {
	rows, err := r.pool.Query(ctx, viewQuery+` ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetView fetches one project through the caller's membership.
func (r *Repository) GetView(ctx context.Context, userID, projectID string) (View, error) {
	row := r.pool.QueryRow(ctx, viewQuery+` WHERE p.id = $2`, userID, projectID)
	v, err := scanView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return View{}, shared.ErrNotFound
		}
		return View{}, err
	}
	return v, nil
}

const memberColumns = `id, project_id, user_id, role, joined_at`

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt)
	return m, err
}

// Members lists a project's memberships, owner first.
func (r *Repository) Members(ctx context.Context, projectID string) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+memberColumns+` FROM project_members
		WHERE project_id = $1
		ORDER BY (role = 'OWNER') DESC, joined_at ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetMember fetches one membership row.
func (r *Repository) GetMember(ctx context.Context, projectID, userID string) (Member, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM project_members
		WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, err
	}
	return m, nil
}

// AddMember inserts a membership row.
func (r *Repository) AddMember(ctx context.Context, projectID, userID string, role permissions.Role) (Member, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO project_members (id, project_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+memberColumns,
		uuid.NewString(), projectID, userID, role)
	m, err := scanMember(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Member{}, ErrAlreadyMember
		}
		return Member{}, err
	}
	return m, nil
}

// UpdateMemberRole changes a membership's role.
func (r *Repository) UpdateMemberRole(ctx context.Context, projectID, userID string, role permissions.Role) (Member, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE project_members SET role = $3
		WHERE project_id = $1 AND user_id = $2
		RETURNING `+memberColumns,
		projectID, userID, role)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, err
	}
	return m, nil
}

// RemoveMember deletes a membership row.
func (r *Repository) RemoveMember(ctx context.Context, projectID, userID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

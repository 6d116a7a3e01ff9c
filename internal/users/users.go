// Package users exposes the user directory and profile updates. The
// directory backs assignee and member pickers, so it returns public
// profiles only.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// Profile is the public view of a user.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpdateInput carries a partial profile update; nil fields are untouched.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Avatar    *string
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, email, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(avatar, ''), created_at`

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Avatar, &p.CreatedAt)
	return p, err
}

// List returns all users, optionally filtered by a name or email search.
func (r *Repository) List(ctx context.Context, search string) ([]Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users`
	args := []any{}
	if search != "" {
		query += ` WHERE email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY email ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get fetches one public profile.
func (r *Repository) Get(ctx context.Context, id string) (Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, shared.ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// UpdateProfile applies a partial update to the user's own profile.
func (r *Repository) UpdateProfile(ctx context.Context, id string, in UpdateInput) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			avatar = COALESCE($4, avatar),
			updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns,
		id, in.FirstName, in.LastName, in.Avatar)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, shared.ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

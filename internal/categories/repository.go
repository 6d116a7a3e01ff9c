package categories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// ErrNameTaken indicates the user already has a category with that name.
var ErrNameTaken = errors.New("category name already in use")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const categoryColumns = `id, name, COALESCE(color, ''), user_id, created_at, updated_at`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Color, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a category for the user.
func (r *Repository) Create(ctx context.Context, userID, name, color string) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (id, name, color, user_id)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING `+categoryColumns,
		uuid.NewString(), name, color, userID)
	c, err := scanCategory(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Category{}, ErrNameTaken
		}
		return Category{}, err
	}
	return c, nil
}

// List returns the user's categories ordered by name.
func (r *Repository) List(ctx context.Context, userID string) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 ORDER BY name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update renames or recolors the user's category.
func (r *Repository) Update(ctx context.Context, userID, id, name, color string) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE categories SET name = $3, color = NULLIF($4, ''), updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+categoryColumns,
		id, userID, name, color)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Category{}, ErrNameTaken
		}
		return Category{}, err
	}
	return c, nil
}

// Delete removes the user's category. Tasks keep running with a null
// category via the FK's ON DELETE SET NULL.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

package notifications

import (
	"context"
	"errors"

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

const notificationColumns = `id, user_id, type, title, message, read, related_id, created_at`

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.RelatedID, &n.CreatedAt)
	return n, err
}

// Create inserts a notification.
func (r *Repository) Create(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, related_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+notificationColumns,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedID)
	return scanNotification(row)
}

// ListForUser returns up to limit of the user's newest notifications.
func (r *Repository) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = false`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UnreadCount returns the number of unread notifications.
func (r *Repository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND read = false`, userID).Scan(&count)
	return count, err
}

// MarkRead flags one of the user's notifications as read.
func (r *Repository) MarkRead(ctx context.Context, userID, id string) (Notification, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE notifications SET read = true
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns, id, userID)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notification{}, shared.ErrNotFound
		}
		return Notification{}, err
	}
	return n, nil
}

// MarkAllRead flags all of the user's notifications as read.
func (r *Repository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID)
	return err
}

// Delete removes one of the user's notifications.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteAll removes all of the user's notifications.
func (r *Repository) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	return err
}

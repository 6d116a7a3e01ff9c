// Package dashboard aggregates a user's workload into one payload. The
// individual aggregates are independent queries, so the service fans
// them out concurrently.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FerDom92/task-manager-pro/internal/tasks"
)

// Summary is the dashboard payload.
type Summary struct {
	Stats        tasks.Stats  `json:"stats"`
	RecentTasks  []tasks.Task `json:"recentTasks"`
	DueSoon      []tasks.Task `json:"dueSoon"`
	ProjectCount int          `json:"projectCount"`
	UnreadCount  int          `json:"unreadCount"`
}

// Store is the persistence dependency of the service.
type Store interface {
	TaskStats(ctx context.Context, userID string, now time.Time) (tasks.Stats, error)
	RecentTasks(ctx context.Context, userID string, limit int) ([]tasks.Task, error)
	DueSoon(ctx context.Context, userID string, from, until time.Time) ([]tasks.Task, error)
	ProjectCount(ctx context.Context, userID string) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// Service assembles dashboard summaries.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

const (
	recentLimit   = 5
	dueSoonWindow = 7 * 24 * time.Hour
)

// Summary gathers all aggregates for one user in parallel. A failure in
// any aggregate fails the whole summary.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	var summary Summary
	now := s.now()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary.Stats, err = s.store.TaskStats(ctx, userID, now)
		return err
	})
	g.Go(func() error {
		var err error
		summary.RecentTasks, err = s.store.RecentTasks(ctx, userID, recentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		summary.DueSoon, err = s.store.DueSoon(ctx, userID, now, now.Add(dueSoonWindow))
		return err
	})
	g.Go(func() error {
		var err error
		summary.ProjectCount, err = s.store.ProjectCount(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		summary.UnreadCount, err = s.store.UnreadCount(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if summary.RecentTasks == nil {
		summary.RecentTasks = []tasks.Task{}
	}
	if summary.DueSoon == nil {
		summary.DueSoon = []tasks.Task{}
	}
	return summary, nil
}

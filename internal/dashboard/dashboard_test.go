package dashboard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerDom92/task-manager-pro/internal/tasks"
)

// ==== MOCK REPOSITORY ====

type mockStore struct {
	stats       tasks.Stats
	recent      []tasks.Task
	dueSoon     []tasks.Task
	projects    int
	unread      int
	failUnread  error
	queryCount  atomic.Int32
	gotFrom     atomic.Value
	gotUntil    atomic.Value
	gotStatsNow atomic.Value
}

func (m *mockStore) TaskStats(_ context.Context, _ string, now time.Time) (tasks.Stats, error) {
	m.queryCount.Add(1)
	m.gotStatsNow.Store(now)
	return m.stats, nil
}

func (m *mockStore) RecentTasks(_ context.Context, _ string, _ int) ([]tasks.Task, error) {
	m.queryCount.Add(1)
	return m.recent, nil
}

func (m *mockStore) DueSoon(_ context.Context, _ string, from, until time.Time) ([]tasks.Task, error) {
	m.queryCount.Add(1)
	m.gotFrom.Store(from)
	m.gotUntil.Store(until)
	return m.dueSoon, nil
}

func (m *mockStore) ProjectCount(_ context.Context, _ string) (int, error) {
	m.queryCount.Add(1)
	return m.projects, nil
}

func (m *mockStore) UnreadCount(_ context.Context, _ string) (int, error) {
	m.queryCount.Add(1)
	if m.failUnread != nil {
		return 0, m.failUnread
	}
	return m.unread, nil
}

// ==== TESTS ====

func TestSummaryGathersAllAggregates(t *testing.T) {
	store := &mockStore{
		stats:    tasks.Stats{Total: 7, Overdue: 2},
		recent:   []tasks.Task{{ID: "t1"}},
		dueSoon:  []tasks.Task{{ID: "t2"}, {ID: "t3"}},
		projects: 3,
		unread:   4,
	}
	service := NewService(store)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	summary, err := service.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, summary.Stats.Total)
	assert.Len(t, summary.RecentTasks, 1)
	assert.Len(t, summary.DueSoon, 2)
	assert.Equal(t, 3, summary.ProjectCount)
	assert.Equal(t, 4, summary.UnreadCount)
	assert.Equal(t, int32(5), store.queryCount.Load())

	// Every aggregate sees the same reference time, and the due-soon
	// window spans seven days.
	assert.Equal(t, fixed, store.gotStatsNow.Load())
	assert.Equal(t, fixed, store.gotFrom.Load())
	assert.Equal(t, fixed.Add(7*24*time.Hour), store.gotUntil.Load())
}

func TestSummaryFailsWhenAnyAggregateFails(t *testing.T) {
	store := &mockStore{failUnread: assert.AnError}
	service := NewService(store)

	_, err := service.Summary(context.Background(), "user-1")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSummaryNeverReturnsNilSlices(t *testing.T) {
	service := NewService(&mockStore{})

	summary, err := service.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, summary.RecentTasks)
	assert.NotNil(t, summary.DueSoon)
}

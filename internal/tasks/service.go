package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FerDom92/task-manager-pro/internal/permissions"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// Store is the persistence dependency of the service.
type Store interface {
	Create(ctx context.Context, createdByID string, in CreateInput) (Task, error)
	Get(ctx context.Context, id string) (Task, error)
	Save(ctx context.Context, t Task) (Task, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, userID string, f Filters) ([]Task, int, error)
	ListByProject(ctx context.Context, projectID string) ([]Task, error)
	Stats(ctx context.Context, userID string, now time.Time) (Stats, error)
}

// Access checks project-level permissions for operations that are not
// guarded by route middleware, such as creating a task inside a project.
type Access interface {
	CheckProject(ctx context.Context, in permissions.GuardInput, action permissions.ProjectAction) error
}

// Notifier enqueues task notifications. Failures are logged and never
// block the triggering operation.
type Notifier interface {
	TaskAssigned(ctx context.Context, task Task, assigneeID string) error
	TaskCompleted(ctx context.Context, task Task) error
}

// Service implements task business rules.
type Service struct {
	store    Store
	access   Access
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a service. notifier may be nil for callers that
// do not deliver notifications.
func NewService(store Store, access Access, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, access: access, notifier: notifier, logger: logger, now: time.Now}
}

// Create validates input, enforces project membership rules when the
// task targets a project, and notifies the assignee if one is set.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Task, error) {
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Status.Valid() {
		return Task{}, fmt.Errorf("%w: invalid status %q", shared.ErrValidation, in.Status)
	}
	if !in.Priority.Valid() {
		return Task{}, fmt.Errorf("%w: invalid priority %q", shared.ErrValidation, in.Priority)
	}
	if in.ProjectID != nil {
		err := s.access.CheckProject(ctx,
			permissions.GuardInput{CallerID: userID, ResourceID: *in.ProjectID},
			permissions.ProjectActionCreateTasks)
		if err != nil {
			return Task{}, err
		}
	}

	task, err := s.store.Create(ctx, userID, in)
	if err != nil {
		return Task{}, err
	}
	if task.AssigneeID != nil && *task.AssigneeID != userID {
		s.notifyAssigned(ctx, task, *task.AssigneeID)
	}
	return task, nil
}

// List returns the caller's tasks with pagination metadata.
func (s *Service) List(ctx context.Context, userID string, f Filters) ([]Task, shared.Pagination, error) {
	items, total, err := s.store.List(ctx, userID, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	return items, shared.NewPagination(page, limit, total), nil
}

// Get fetches a single task. Authorization happens in the route guard.
func (s *Service) Get(ctx context.Context, id string) (Task, error) {
	return s.store.Get(ctx, id)
}

// Update applies a partial update and fires notifications on assignee
// changes and on transition to DONE.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	wasDone := task.Status == StatusDone
	prevAssignee := ""
	if task.AssigneeID != nil {
		prevAssignee = *task.AssigneeID
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return Task{}, fmt.Errorf("%w: invalid status %q", shared.ErrValidation, *in.Status)
		}
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return Task{}, fmt.Errorf("%w: invalid priority %q", shared.ErrValidation, *in.Priority)
		}
		task.Priority = *in.Priority
	}
	switch {
	case in.ClearDue:
		task.DueDate = nil
	case in.DueDate != nil:
		task.DueDate = in.DueDate
	}
	switch {
	case in.ClearCat:
		task.CategoryID = nil
	case in.CategoryID != nil:
		task.CategoryID = in.CategoryID
	}
	switch {
	case in.ClearProj:
		task.ProjectID = nil
	case in.ProjectID != nil:
		if prev := task.ProjectID; prev == nil || *prev != *in.ProjectID {
			err := s.access.CheckProject(ctx,
				permissions.GuardInput{CallerID: userID, ResourceID: *in.ProjectID},
				permissions.ProjectActionCreateTasks)
			if err != nil {
				return Task{}, err
			}
		}
		task.ProjectID = in.ProjectID
	}
	switch {
	case in.ClearAssign:
		task.AssigneeID = nil
	case in.AssigneeID != nil:
		task.AssigneeID = in.AssigneeID
	}

	saved, err := s.store.Save(ctx, task)
	if err != nil {
		return Task{}, err
	}
	if saved.AssigneeID != nil && *saved.AssigneeID != prevAssignee && *saved.AssigneeID != userID {
		s.notifyAssigned(ctx, saved, *saved.AssigneeID)
	}
	if saved.Status == StatusDone && !wasDone {
		s.notifyCompleted(ctx, saved)
	}
	return saved, nil
}

// Delete removes a task. Authorization happens in the route guard.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Assign sets or clears the assignee and notifies a newly assigned user.
func (s *Service) Assign(ctx context.Context, userID, id string, assigneeID *string) (Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	prev := ""
	if task.AssigneeID != nil {
		prev = *task.AssigneeID
	}
	task.AssigneeID = assigneeID

	saved, err := s.store.Save(ctx, task)
	if err != nil {
		return Task{}, err
	}
	if saved.AssigneeID != nil && *saved.AssigneeID != prev && *saved.AssigneeID != userID {
		s.notifyAssigned(ctx, saved, *saved.AssigneeID)
	}
	return saved, nil
}

// Stats aggregates the caller's tasks.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	return s.store.Stats(ctx, userID, s.now())
}

// ListByProject returns all tasks in a project. Authorization happens
// in the route guard of the projects handler.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	return s.store.ListByProject(ctx, projectID)
}

func (s *Service) notifyAssigned(ctx context.Context, task Task, assigneeID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.TaskAssigned(ctx, task, assigneeID); err != nil {
		s.logger.Warn("enqueue task assigned notification", "task_id", task.ID, "error", err)
	}
}

func (s *Service) notifyCompleted(ctx context.Context, task Task) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.TaskCompleted(ctx, task); err != nil {
		s.logger.Warn("enqueue task completed notification", "task_id", task.ID, "error", err)
	}
}

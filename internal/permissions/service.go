package permissions

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Store fetches permission snapshots. Implementations return
// ErrTaskNotFound / ErrProjectNotFound when the resource does not exist.
type Store interface {
	TaskFacts(ctx context.Context, taskID, userID string) (TaskFacts, error)
	ProjectFacts(ctx context.Context, projectID, userID string) (ProjectFacts, error)
}

// Service resolves (actor, resource, action) permission checks.
// It holds no mutable state and performs no writes.
type Service struct {
	store Store
}

// NewService constructs a Service backed by the provided store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CanAccessTask resolves a single task action for userID. The returned
// error is ErrTaskNotFound when the task does not exist, or a store
// failure; a denial is reported through the Check, never as an error.
func (s *Service) CanAccessTask(ctx context.Context, userID, taskID string, action TaskAction) (Check, error) {
	facts, err := s.store.TaskFacts(ctx, taskID, userID)
	if err != nil {
		return Check{}, err
	}
	return EvaluateTask(EvidenceForTask(facts, userID), action), nil
}

// CanAccessProject resolves a single project action for userID.
func (s *Service) CanAccessProject(ctx context.Context, userID, projectID string, action ProjectAction) (Check, error) {
	facts, err := s.store.ProjectFacts(ctx, projectID, userID)
	if err != nil {
		return Check{}, err
	}
	return EvaluateProject(EvidenceForProject(facts, userID), action), nil
}

// ProjectRole returns the user's membership role in a project, or empty
// when the user is not a member. Used by callers that decorate responses
// with optimistic capability hints.
func (s *Service) ProjectRole(ctx context.Context, userID, projectID string) (Role, error) {
	facts, err := s.store.ProjectFacts(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	return facts.Role, nil
}

// TaskPermissions evaluates every task action concurrently and merges the
// results into one capability summary. Each field equals the Allowed flag
// of the corresponding single-action check.
func (s *Service) TaskPermissions(ctx context.Context, userID, taskID string) (TaskPermissions, error) {
	var perms TaskPermissions
	targets := []struct {
		action TaskAction
		dst    *bool
	}{
		{TaskActionView, &perms.CanView},
		{TaskActionUpdate, &perms.CanUpdate},
		{TaskActionDelete, &perms.CanDelete},
		{TaskActionAssign, &perms.CanAssign},
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			check, err := s.CanAccessTask(ctx, userID, taskID, t.action)
			if err != nil {
				return err
			}
			*t.dst = check.Allowed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TaskPermissions{}, err
	}
	return perms, nil
}

// ProjectPermissions evaluates every project action concurrently and
// merges the results into one capability summary.
func (s *Service) ProjectPermissions(ctx context.Context, userID, projectID string) (ProjectPermissions, error) {
	var perms ProjectPermissions
	targets := []struct {
		action ProjectAction
		dst    *bool
	}{
		{ProjectActionView, &perms.CanView},
		{ProjectActionUpdate, &perms.CanUpdate},
		{ProjectActionDelete, &perms.CanDelete},
		{ProjectActionManageMembers, &perms.CanManageMembers},
		{ProjectActionCreateTasks, &perms.CanCreateTasks},
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			check, err := s.CanAccessProject(ctx, userID, projectID, t.action)
			if err != nil {
				return err
			}
			*t.dst = check.Allowed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ProjectPermissions{}, err
	}
	return perms, nil
}

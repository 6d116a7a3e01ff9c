package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FerDom92/task-manager-pro/internal/permissions"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// ErrOwnerImmutable indicates an attempt to change or remove the OWNER
// membership row. Ownership is fixed at creation.
var ErrOwnerImmutable = errors.New("project owner membership cannot be changed")

// Store is the persistence dependency of the service.
type Store interface {
	Create(ctx context.Context, ownerID string, in CreateInput) (Project, error)
	Get(ctx context.Context, id string) (Project, error)
	Save(ctx context.Context, p Project) (Project, error)
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]View, error)
	GetView(ctx context.Context, userID, projectID string) (View, error)
	Members(ctx context.Context, projectID string) ([]Member, error)
	GetMember(ctx context.Context, projectID, userID string) (Member, error)
	AddMember(ctx context.Context, projectID, userID string, role permissions.Role) (Member, error)
	UpdateMemberRole(ctx context.Context, projectID, userID string, role permissions.Role) (Member, error)
	RemoveMember(ctx context.Context, projectID, userID string) error
}

// Notifier enqueues project notifications. Failures are logged and never
// block the triggering operation.
type Notifier interface {
	ProjectInvite(ctx context.Context, project Project, userID, inviterID string) error
}

// Service implements project business rules.
type Service struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a service. notifier may be nil.
func NewService(store Store, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Create inserts a project with the caller as OWNER.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (View, error) {
	p, err := s.store.Create(ctx, ownerID, in)
	if err != nil {
		return View{}, err
	}
	return View{
		Project:      p,
		Role:         permissions.RoleOwner,
		MemberCount:  1,
		Capabilities: permissions.OptimisticProjectCapabilities(permissions.RoleOwner),
	}, nil
}

// List returns the caller's projects with capability hints filled in.
func (s *Service) List(ctx context.Context, userID string) ([]View, error) {
	views, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].Capabilities = permissions.OptimisticProjectCapabilities(views[i].Role)
	}
	return views, nil
}

// Get fetches one project through the caller's membership.
func (s *Service) Get(ctx context.Context, userID, projectID string) (View, error) {
	v, err := s.store.GetView(ctx, userID, projectID)
	if err != nil {
		return View{}, err
	}
	v.Capabilities = permissions.OptimisticProjectCapabilities(v.Role)
	return v, nil
}

// Update applies a partial update. Authorization happens in the route guard.
func (s *Service) Update(ctx context.Context, projectID string, in UpdateInput) (Project, error) {
	p, err := s.store.Get(ctx, projectID)
	if err != nil {
		return Project{}, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Color != nil {
		p.Color = *in.Color
	}
	return s.store.Save(ctx, p)
}

// Delete removes a project. Authorization happens in the route guard.
func (s *Service) Delete(ctx context.Context, projectID string) error {
	return s.store.Delete(ctx, projectID)
}

// Members lists a project's memberships.
func (s *Service) Members(ctx context.Context, projectID string) ([]Member, error) {
	return s.store.Members(ctx, projectID)
}

// AddMember invites a user into the project and notifies them. The OWNER
// role cannot be granted after creation.
func (s *Service) AddMember(ctx context.Context, inviterID, projectID, userID string, role permissions.Role) (Member, error) {
	if role == "" {
		role = permissions.RoleMember
	}
	if !role.Valid() || role == permissions.RoleOwner {
		return Member{}, fmt.Errorf("%w: invalid member role %q", shared.ErrValidation, role)
	}
	m, err := s.store.AddMember(ctx, projectID, userID, role)
	if err != nil {
		return Member{}, err
	}
	if s.notifier != nil && userID != inviterID {
		p, err := s.store.Get(ctx, projectID)
		if err == nil {
			if err := s.notifier.ProjectInvite(ctx, p, userID, inviterID); err != nil {
				s.logger.Warn("enqueue project invite notification", "project_id", projectID, "error", err)
			}
		}
	}
	return m, nil
}

// UpdateMemberRole changes a member's role. The OWNER row is immutable
// and OWNER cannot be granted.
func (s *Service) UpdateMemberRole(ctx context.Context, projectID, userID string, role permissions.Role) (Member, error) {
	if !role.Valid() || role == permissions.RoleOwner {
		return Member{}, fmt.Errorf("%w: invalid member role %q", shared.ErrValidation, role)
	}
	current, err := s.store.GetMember(ctx, projectID, userID)
	if err != nil {
		return Member{}, err
	}
	if current.Role == permissions.RoleOwner {
		return Member{}, ErrOwnerImmutable
	}
	return s.store.UpdateMemberRole(ctx, projectID, userID, role)
}

// RemoveMember drops a membership. The OWNER row cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, projectID, userID string) error {
	current, err := s.store.GetMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if current.Role == permissions.RoleOwner {
		return ErrOwnerImmutable
	}
	return s.store.RemoveMember(ctx, projectID, userID)
}

package permissions

// Optimistic, role-only approximations of the project decision table,
// mirrored from the frontend's capability hooks. They see only a
// membership role, not ownership or task-level facts, so they are NOT
// authoritative: every mutation is re-checked by the Guard server-side.
// Their one job is to let list/detail payloads carry capability hints so
// clients can gate UI affordances without extra round trips.

// CanManageProject reports whether role plausibly allows member management.
func CanManageProject(role Role) bool {
	return role == RoleOwner || role == RoleAdmin
}

// CanEditProject reports whether role plausibly allows project updates.
func CanEditProject(role Role) bool {
	return role == RoleOwner || role == RoleAdmin
}

// CanCreateTasks reports whether role plausibly allows creating project tasks.
func CanCreateTasks(role Role) bool {
	return role == RoleOwner || role == RoleAdmin || role == RoleMember
}

// CanDeleteProject reports whether role plausibly allows project deletion.
func CanDeleteProject(role Role) bool {
	return role == RoleOwner
}

// ProjectCapabilities is the optimistic hint block embedded in project payloads.
type ProjectCapabilities struct {
	CanManage      bool `json:"canManage"`
	CanEdit        bool `json:"canEdit"`
	CanCreateTasks bool `json:"canCreateTasks"`
	CanDelete      bool `json:"canDelete"`
}

// OptimisticProjectCapabilities derives the hint block from a membership role.
func OptimisticProjectCapabilities(role Role) ProjectCapabilities {
	return ProjectCapabilities{
		CanManage:      CanManageProject(role),
		CanEdit:        CanEditProject(role),
		CanCreateTasks: CanCreateTasks(role),
		CanDelete:      CanDeleteProject(role),
	}
}

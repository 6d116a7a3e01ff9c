// Package permissions implements role-based permission resolution for
// tasks and projects. Every check is a fresh snapshot read against the
// store; results are never cached so a decision always reflects the
// latest committed membership and ownership state.
package permissions

import "errors"

// Role is a project membership role. Roles form an additive hierarchy:
// OWNER > ADMIN > MEMBER > VIEWER.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// TaskAction is a permission check target scoped to tasks.
type TaskAction string

const (
	TaskActionView   TaskAction = "view"
	TaskActionUpdate TaskAction = "update"
	TaskActionDelete TaskAction = "delete"
	TaskActionAssign TaskAction = "assign"
)

// ProjectAction is a permission check target scoped to projects.
type ProjectAction string

const (
	ProjectActionView          ProjectAction = "view"
	ProjectActionUpdate        ProjectAction = "update"
	ProjectActionDelete        ProjectAction = "delete"
	ProjectActionManageMembers ProjectAction = "manage_members"
	ProjectActionCreateTasks   ProjectAction = "create_tasks"
)

// Check is the resolver output: an allow flag plus a denial reason.
// Reason is populated only when Allowed is false and is prose meant for
// end users, never a machine-readable code.
type Check struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Denial reasons. These are part of the API surface: they are surfaced
// verbatim in 403 response bodies.
const (
	ReasonTaskViewDenied   = "No permission to view this task"
	ReasonTaskUpdateDenied = "No permission to update this task"
	ReasonTaskDeleteDenied = "Only task creator or project admin can delete"
	ReasonTaskAssignDenied = "No permission to assign this task"

	ReasonProjectNotMember     = "Not a member of this project"
	ReasonProjectUpdateDenied  = "Only owner or admin can update project"
	ReasonProjectDeleteDenied  = "Only project owner can delete"
	ReasonProjectMembersDenied = "Only owner or admin can manage members"
	ReasonProjectTasksDenied   = "Viewers cannot create tasks"

	ReasonUnknownAction = "Unknown action"

	ReasonTaskNotFound    = "Task not found"
	ReasonProjectNotFound = "Project not found"
)

// Not-found is a distinct result variant, not a denial: callers must map
// it to a not-found response rather than a forbidden one.
var (
	ErrTaskNotFound    = errors.New("permissions: " + ReasonTaskNotFound)
	ErrProjectNotFound = errors.New("permissions: " + ReasonProjectNotFound)
)

// TaskFacts is the snapshot the resolver consults for a task check.
// Role is empty when the task has no project or the user is not a member.
type TaskFacts struct {
	CreatedByID string
	AssigneeID  string
	ProjectID   string
	Role        Role
}

// ProjectFacts is the snapshot the resolver consults for a project check.
// Role is empty when the user holds no membership.
type ProjectFacts struct {
	OwnerID string
	Role    Role
}

// TaskPermissions is the batched capability summary for one task.
type TaskPermissions struct {
	CanView   bool `json:"canView"`
	CanUpdate bool `json:"canUpdate"`
	CanDelete bool `json:"canDelete"`
	CanAssign bool `json:"canAssign"`
}

// ProjectPermissions is the batched capability summary for one project.
type ProjectPermissions struct {
	CanView          bool `json:"canView"`
	CanUpdate        bool `json:"canUpdate"`
	CanDelete        bool `json:"canDelete"`
	CanManageMembers bool `json:"canManageMembers"`
	CanCreateTasks   bool `json:"canCreateTasks"`
}

package permissions

// The decision tables are literal data so the rules can be inspected and
// tested without going through the store. First matching action wins; an
// action with no row is denied as unknown.

// TaskEvidence is the derived view of TaskFacts for one user.
type TaskEvidence struct {
	IsCreator  bool
	IsAssignee bool
	Role       Role
}

// EvidenceForTask derives the decision inputs for userID from a task snapshot.
func EvidenceForTask(f TaskFacts, userID string) TaskEvidence {
	return TaskEvidence{
		IsCreator:  f.CreatedByID == userID,
		IsAssignee: f.AssigneeID != "" && f.AssigneeID == userID,
		Role:       f.Role,
	}
}

type taskRule struct {
	Action TaskAction
	Allow  func(e TaskEvidence) bool
	Deny   string
}

var taskRules = []taskRule{
	{
		Action: TaskActionView,
		Allow: func(e TaskEvidence) bool {
			return e.IsCreator || e.IsAssignee || e.Role.Valid()
		},
		Deny: ReasonTaskViewDenied,
	},
	{
		Action: TaskActionUpdate,
		Allow: func(e TaskEvidence) bool {
			return e.IsCreator || e.IsAssignee || e.Role.AtLeast(RoleMember)
		},
		Deny: ReasonTaskUpdateDenied,
	},
	{
		Action: TaskActionDelete,
		Allow: func(e TaskEvidence) bool {
			return e.IsCreator || e.Role.AtLeast(RoleAdmin)
		},
		Deny: ReasonTaskDeleteDenied,
	},
	{
		Action: TaskActionAssign,
		Allow: func(e TaskEvidence) bool {
			return e.IsCreator || e.Role.AtLeast(RoleAdmin)
		},
		Deny: ReasonTaskAssignDenied,
	},
}

// EvaluateTask resolves one task action against derived evidence.
func EvaluateTask(e TaskEvidence, action TaskAction) Check {
	for _, rule := range taskRules {
		if rule.Action != action {
			continue
		}
		if rule.Allow(e) {
			return Check{Allowed: true}
		}
		return Check{Allowed: false, Reason: rule.Deny}
	}
	return Check{Allowed: false, Reason: ReasonUnknownAction}
}

// ProjectEvidence is the derived view of ProjectFacts for one user.
type ProjectEvidence struct {
	IsOwner bool
	Role    Role
}

// EvidenceForProject derives the decision inputs for userID from a project snapshot.
func EvidenceForProject(f ProjectFacts, userID string) ProjectEvidence {
	return ProjectEvidence{
		IsOwner: f.OwnerID == userID,
		Role:    f.Role,
	}
}

type projectRule struct {
	Action ProjectAction
	Allow  func(e ProjectEvidence) bool
	Deny   string
}

var projectRules = []projectRule{
	{
		Action: ProjectActionView,
		Allow: func(e ProjectEvidence) bool {
			return e.Role.Valid()
		},
		Deny: ReasonProjectNotMember,
	},
	{
		Action: ProjectActionUpdate,
		Allow: func(e ProjectEvidence) bool {
			return e.IsOwner || e.Role == RoleAdmin
		},
		Deny: ReasonProjectUpdateDenied,
	},
	{
		Action: ProjectActionDelete,
		Allow: func(e ProjectEvidence) bool {
			return e.IsOwner
		},
		Deny: ReasonProjectDeleteDenied,
	},
	{
		Action: ProjectActionManageMembers,
		Allow: func(e ProjectEvidence) bool {
			return e.IsOwner || e.Role == RoleAdmin
		},
		Deny: ReasonProjectMembersDenied,
	},
	{
		Action: ProjectActionCreateTasks,
		Allow: func(e ProjectEvidence) bool {
			return e.Role.AtLeast(RoleMember)
		},
		Deny: ReasonProjectTasksDenied,
	},
}

// EvaluateProject resolves one project action against derived evidence.
func EvaluateProject(e ProjectEvidence, action ProjectAction) Check {
	for _, rule := range projectRules {
		if rule.Action != action {
			continue
		}
		if rule.Allow(e) {
			return Check{Allowed: true}
		}
		return Check{Allowed: false, Reason: rule.Deny}
	}
	return Check{Allowed: false, Reason: ReasonUnknownAction}
}

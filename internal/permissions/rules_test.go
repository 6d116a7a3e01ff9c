package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateTaskDecisionTable(t *testing.T) {
	cases := []struct {
		name       string
		evidence   TaskEvidence
		action     TaskAction
		allowed    bool
		denyReason string
	}{
		{"creator can view", TaskEvidence{IsCreator: true}, TaskActionView, true, ""},
		{"assignee can view", TaskEvidence{IsAssignee: true}, TaskActionView, true, ""},
		{"viewer role can view", TaskEvidence{Role: RoleViewer}, TaskActionView, true, ""},
		{"stranger cannot view", TaskEvidence{}, TaskActionView, false, ReasonTaskViewDenied},

		{"creator can update", TaskEvidence{IsCreator: true}, TaskActionUpdate, true, ""},
		{"assignee can update", TaskEvidence{IsAssignee: true}, TaskActionUpdate, true, ""},
		{"member role can update", TaskEvidence{Role: RoleMember}, TaskActionUpdate, true, ""},
		{"admin role can update", TaskEvidence{Role: RoleAdmin}, TaskActionUpdate, true, ""},
		{"owner role can update", TaskEvidence{Role: RoleOwner}, TaskActionUpdate, true, ""},
		{"viewer role cannot update", TaskEvidence{Role: RoleViewer}, TaskActionUpdate, false, ReasonTaskUpdateDenied},
		{"stranger cannot update", TaskEvidence{}, TaskActionUpdate, false, ReasonTaskUpdateDenied},

		{"creator can delete", TaskEvidence{IsCreator: true}, TaskActionDelete, true, ""},
		{"admin role can delete", TaskEvidence{Role: RoleAdmin}, TaskActionDelete, true, ""},
		{"owner role can delete", TaskEvidence{Role: RoleOwner}, TaskActionDelete, true, ""},
		{"member role cannot delete", TaskEvidence{Role: RoleMember}, TaskActionDelete, false, ReasonTaskDeleteDenied},
		{"viewer role cannot delete", TaskEvidence{Role: RoleViewer}, TaskActionDelete, false, ReasonTaskDeleteDenied},
		{"assignee alone cannot delete", TaskEvidence{IsAssignee: true}, TaskActionDelete, false, ReasonTaskDeleteDenied},

		{"creator can assign", TaskEvidence{IsCreator: true}, TaskActionAssign, true, ""},
		{"admin role can assign", TaskEvidence{Role: RoleAdmin}, TaskActionAssign, true, ""},
		{"owner role can assign", TaskEvidence{Role: RoleOwner}, TaskActionAssign, true, ""},
		{"member role cannot assign", TaskEvidence{Role: RoleMember}, TaskActionAssign, false, ReasonTaskAssignDenied},
		{"assignee alone cannot assign", TaskEvidence{IsAssignee: true}, TaskActionAssign, false, ReasonTaskAssignDenied},

		{"unknown action denied", TaskEvidence{IsCreator: true}, TaskAction("archive"), false, ReasonUnknownAction},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			check := EvaluateTask(tc.evidence, tc.action)
			assert.Equal(t, tc.allowed, check.Allowed)
			assert.Equal(t, tc.denyReason, check.Reason)
		})
	}
}

func TestEvaluateProjectDecisionTable(t *testing.T) {
	cases := []struct {
		name       string
		evidence   ProjectEvidence
		action     ProjectAction
		allowed    bool
		denyReason string
	}{
		{"any role can view", ProjectEvidence{Role: RoleViewer}, ProjectActionView, true, ""},
		{"non-member cannot view", ProjectEvidence{}, ProjectActionView, false, ReasonProjectNotMember},

		{"owner can update", ProjectEvidence{IsOwner: true, Role: RoleOwner}, ProjectActionUpdate, true, ""},
		{"admin can update", ProjectEvidence{Role: RoleAdmin}, ProjectActionUpdate, true, ""},
		{"member cannot update", ProjectEvidence{Role: RoleMember}, ProjectActionUpdate, false, ReasonProjectUpdateDenied},
		{"viewer cannot update", ProjectEvidence{Role: RoleViewer}, ProjectActionUpdate, false, ReasonProjectUpdateDenied},

		{"owner can delete", ProjectEvidence{IsOwner: true, Role: RoleOwner}, ProjectActionDelete, true, ""},
		{"admin cannot delete", ProjectEvidence{Role: RoleAdmin}, ProjectActionDelete, false, ReasonProjectDeleteDenied},

		{"owner can manage members", ProjectEvidence{IsOwner: true, Role: RoleOwner}, ProjectActionManageMembers, true, ""},
		{"admin can manage members", ProjectEvidence{Role: RoleAdmin}, ProjectActionManageMembers, true, ""},
		{"member cannot manage members", ProjectEvidence{Role: RoleMember}, ProjectActionManageMembers, false, ReasonProjectMembersDenied},

		{"member can create tasks", ProjectEvidence{Role: RoleMember}, ProjectActionCreateTasks, true, ""},
		{"admin can create tasks", ProjectEvidence{Role: RoleAdmin}, ProjectActionCreateTasks, true, ""},
		{"owner role can create tasks", ProjectEvidence{Role: RoleOwner}, ProjectActionCreateTasks, true, ""},
		{"viewer cannot create tasks", ProjectEvidence{Role: RoleViewer}, ProjectActionCreateTasks, false, ReasonProjectTasksDenied},
		{"non-member cannot create tasks", ProjectEvidence{}, ProjectActionCreateTasks, false, ReasonProjectTasksDenied},

		{"unknown action denied", ProjectEvidence{IsOwner: true}, ProjectAction("transfer"), false, ReasonUnknownAction},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			check := EvaluateProject(tc.evidence, tc.action)
			assert.Equal(t, tc.allowed, check.Allowed)
			assert.Equal(t, tc.denyReason, check.Reason)
		})
	}
}

// Widening a role from VIEWER through OWNER must never revoke a grant.
func TestRoleWideningIsMonotonic(t *testing.T) {
	ladder := []Role{RoleViewer, RoleMember, RoleAdmin, RoleOwner}

	projectActions := []ProjectAction{
		ProjectActionView,
		ProjectActionUpdate,
		ProjectActionDelete,
		ProjectActionManageMembers,
		ProjectActionCreateTasks,
	}
	for _, action := range projectActions {
		prev := false
		for _, role := range ladder {
			// Delete keys off project ownership; pair OWNER with IsOwner so
			// the ladder reflects a real owner membership row.
			e := ProjectEvidence{Role: role, IsOwner: role == RoleOwner}
			allowed := EvaluateProject(e, action).Allowed
			if prev {
				assert.True(t, allowed, "action %s revoked when widening to %s", action, role)
			}
			prev = allowed
		}
	}

	taskActions := []TaskAction{TaskActionView, TaskActionUpdate, TaskActionDelete, TaskActionAssign}
	for _, action := range taskActions {
		prev := false
		for _, role := range ladder {
			allowed := EvaluateTask(TaskEvidence{Role: role}, action).Allowed
			if prev {
				assert.True(t, allowed, "task action %s revoked when widening to %s", action, role)
			}
			prev = allowed
		}
	}
}

func TestEvidenceDerivation(t *testing.T) {
	facts := TaskFacts{CreatedByID: "user-a", AssigneeID: "user-b", ProjectID: "p1", Role: RoleMember}

	e := EvidenceForTask(facts, "user-a")
	assert.True(t, e.IsCreator)
	assert.False(t, e.IsAssignee)

	e = EvidenceForTask(facts, "user-b")
	assert.False(t, e.IsCreator)
	assert.True(t, e.IsAssignee)

	// An unassigned task must not treat an empty caller match as assignee.
	e = EvidenceForTask(TaskFacts{CreatedByID: "user-a"}, "")
	assert.False(t, e.IsAssignee)

	pe := EvidenceForProject(ProjectFacts{OwnerID: "user-a", Role: RoleOwner}, "user-a")
	assert.True(t, pe.IsOwner)
	pe = EvidenceForProject(ProjectFacts{OwnerID: "user-a"}, "user-b")
	assert.False(t, pe.IsOwner)
	assert.False(t, pe.Role.Valid())
}

package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCK STORE
// ============================================================================

type memberKey struct {
	projectID string
	userID    string
}

type mockStore struct {
	tasks    map[string]TaskFacts // facts minus Role, keyed by task id
	projects map[string]string    // project id -> owner id
	members  map[memberKey]Role   // membership rows

	taskErr    error
	projectErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		tasks:    make(map[string]TaskFacts),
		projects: make(map[string]string),
		members:  make(map[memberKey]Role),
	}
}

func (m *mockStore) TaskFacts(ctx context.Context, taskID, userID string) (TaskFacts, error) {
	if m.taskErr != nil {
		return TaskFacts{}, m.taskErr
	}
	facts, ok := m.tasks[taskID]
	if !ok {
		return TaskFacts{}, ErrTaskNotFound
	}
	if facts.ProjectID != "" {
		facts.Role = m.members[memberKey{facts.ProjectID, userID}]
	}
	return facts, nil
}

func (m *mockStore) ProjectFacts(ctx context.Context, projectID, userID string) (ProjectFacts, error) {
	if m.projectErr != nil {
		return ProjectFacts{}, m.projectErr
	}
	ownerID, ok := m.projects[projectID]
	if !ok {
		return ProjectFacts{}, ErrProjectNotFound
	}
	return ProjectFacts{OwnerID: ownerID, Role: m.members[memberKey{projectID, userID}]}, nil
}

func (m *mockStore) addProject(id, ownerID string) {
	m.projects[id] = ownerID
	m.members[memberKey{id, ownerID}] = RoleOwner
}

// ============================================================================
// RESOLVER
// ============================================================================

func TestPrivateTaskOnlyCreatorHasAccess(t *testing.T) {
	store := newMockStore()
	store.tasks["t1"] = TaskFacts{CreatedByID: "user-a"}
	svc := NewService(store)
	ctx := context.Background()

	check, err := svc.CanAccessTask(ctx, "user-b", "t1", TaskActionView)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, ReasonTaskViewDenied, check.Reason)

	check, err = svc.CanAccessTask(ctx, "user-a", "t1", TaskActionDelete)
	require.NoError(t, err)
	assert.True(t, check.Allowed)
	assert.Empty(t, check.Reason)
}

func TestProjectMemberCanCreateTasksButNotDelete(t *testing.T) {
	store := newMockStore()
	store.addProject("p1", "user-a")
	store.members[memberKey{"p1", "user-b"}] = RoleMember
	svc := NewService(store)
	ctx := context.Background()

	check, err := svc.CanAccessProject(ctx, "user-b", "p1", ProjectActionCreateTasks)
	require.NoError(t, err)
	assert.True(t, check.Allowed)

	check, err = svc.CanAccessProject(ctx, "user-b", "p1", ProjectActionDelete)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, ReasonProjectDeleteDenied, check.Reason)
}

func TestAssigneeOutsideProjectCanViewAndUpdateOnly(t *testing.T) {
	store := newMockStore()
	store.addProject("p1", "user-a")
	store.members[memberKey{"p1", "user-b"}] = RoleMember
	// Created by B inside p1, assigned to C who holds no membership.
	store.tasks["t2"] = TaskFacts{CreatedByID: "user-b", AssigneeID: "user-c", ProjectID: "p1"}
	svc := NewService(store)
	ctx := context.Background()

	check, err := svc.CanAccessTask(ctx, "user-c", "t2", TaskActionView)
	require.NoError(t, err)
	assert.True(t, check.Allowed)

	check, err = svc.CanAccessTask(ctx, "user-c", "t2", TaskActionUpdate)
	require.NoError(t, err)
	assert.True(t, check.Allowed)

	check, err = svc.CanAccessTask(ctx, "user-c", "t2", TaskActionDelete)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, ReasonTaskDeleteDenied, check.Reason)
}

func TestMissingTaskIsNotFoundNotDenied(t *testing.T) {
	svc := NewService(newMockStore())

	_, err := svc.CanAccessTask(context.Background(), "user-a", "ghost", TaskActionView)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestNonMemberProjectViewDenied(t *testing.T) {
	store := newMockStore()
	store.addProject("p1", "user-a")
	svc := NewService(store)

	check, err := svc.CanAccessProject(context.Background(), "user-d", "p1", ProjectActionView)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, ReasonProjectNotMember, check.Reason)
}

func TestResolverIsIdempotent(t *testing.T) {
	store := newMockStore()
	store.addProject("p1", "user-a")
	store.tasks["t1"] = TaskFacts{CreatedByID: "user-b", ProjectID: "p1"}
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.CanAccessTask(ctx, "user-a", "t1", TaskActionDelete)
	require.NoError(t, err)
	second, err := svc.CanAccessTask(ctx, "user-a", "t1", TaskActionDelete)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolverReadsCurrentState(t *testing.T) {
	store := newMockStore()
	store.addProject("p1", "user-a")
	store.tasks["t1"] = TaskFacts{CreatedByID: "user-b", ProjectID: "p1"}
	svc := NewService(store)
	ctx := context.Background()

	check, err := svc.CanAccessTask(ctx, "user-c", "t1", TaskActionView)
	require.NoError(t, err)
	assert.False(t, check.Allowed)

	// Membership granted between checks must be visible immediately.
	store.members[memberKey{"p1", "user-c"}] = RoleViewer
	check, err = svc.CanAccessTask(ctx, "user-c", "t1", TaskActionView)
	require.NoError(t, err)
	assert.True(t, check.Allowed)
}

func TestStoreFailurePropagates(t *testing.T) {
	store := newMockStore()
	store.taskErr = errors.New("connection reset")
	svc := NewService(store)

	_, err := svc.CanAccessTask(context.Background(), "user-a", "t1", TaskActionView)
	assert.EqualError(t, err, "connection reset")
}

// ============================================================================
// SUMMARIES
// ============================================================================

func TestTaskPermissionsSummaryMatchesSingleChecks(t *testing.T) {
	store := newMockStore()
	store.addProject("p1", "user-a")
	store.members[memberKey{"p1", "user-b"}] = RoleMember
	store.tasks["t2"] = TaskFacts{CreatedByID: "user-b", AssigneeID: "user-c", ProjectID: "p1"}
	svc := NewService(store)
	ctx := context.Background()

	for _, userID := range []string{"user-a", "user-b", "user-c", "user-d"} {
		perms, err := svc.TaskPermissions(ctx, userID, "t2")
		require.NoError(t, err)

		expected := map[TaskAction]bool{}
		for _, action := range []TaskAction{TaskActionView, TaskActionUpdate, TaskActionDelete, TaskActionAssign} {
			check, err := svc.CanAccessTask(ctx, userID, "t2", action)
			require.NoError(t, err)
			expected[action] = check.Allowed
		}
		assert.Equal(t, expected[TaskActionView], perms.CanView, "user %s", userID)
		assert.Equal(t, expected[TaskActionUpdate], perms.CanUpdate, "user %s", userID)
		assert.Equal(t, expected[TaskActionDelete], perms.CanDelete, "user %s", userID)
		assert.Equal(t, expected[TaskActionAssign], perms.CanAssign, "user %s", userID)
	}
}

func TestTaskPermissionsSummaryForCreator(t *testing.T) {
	store := newMockStore()
	store.addProject("p1", "user-a")
	store.members[memberKey{"p1", "user-b"}] = RoleMember
	store.tasks["t2"] = TaskFacts{CreatedByID: "user-b", AssigneeID: "user-c", ProjectID: "p1"}
	svc := NewService(store)

	perms, err := svc.TaskPermissions(context.Background(), "user-b", "t2")
	require.NoError(t, err)
	assert.Equal(t, TaskPermissions{CanView: true, CanUpdate: true, CanDelete: true, CanAssign: true}, perms)
}

func TestProjectPermissionsSummary(t *testing.T) {
	store := newMockStore()
	store.addProject("p1", "user-a")
	store.members[memberKey{"p1", "user-b"}] = RoleViewer
	svc := NewService(store)

	perms, err := svc.ProjectPermissions(context.Background(), "user-b", "p1")
	require.NoError(t, err)
	assert.Equal(t, ProjectPermissions{CanView: true}, perms)

	perms, err = svc.ProjectPermissions(context.Background(), "user-a", "p1")
	require.NoError(t, err)
	assert.Equal(t, ProjectPermissions{
		CanView:          true,
		CanUpdate:        true,
		CanDelete:        true,
		CanManageMembers: true,
		CanCreateTasks:   true,
	}, perms)
}

func TestSummaryForMissingResource(t *testing.T) {
	svc := NewService(newMockStore())

	_, err := svc.TaskPermissions(context.Background(), "user-a", "ghost")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.ProjectPermissions(context.Background(), "user-a", "ghost")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

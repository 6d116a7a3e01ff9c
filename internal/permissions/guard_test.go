package permissions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerDom92/task-manager-pro/internal/platform/httpx"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

func guardFixture(t *testing.T) (*Guard, *mockStore) {
	t.Helper()
	store := newMockStore()
	store.addProject("p1", "user-a")
	store.members[memberKey{"p1", "user-b"}] = RoleViewer
	store.tasks["t1"] = TaskFacts{CreatedByID: "user-a", ProjectID: "p1"}
	return NewGuard(NewService(store), nil), store
}

func TestCheckTaskRejectionCategories(t *testing.T) {
	guard, _ := guardFixture(t)
	ctx := context.Background()

	// No required action: unconditional pass-through.
	assert.NoError(t, guard.CheckTask(ctx, GuardInput{}, ""))

	// Missing caller identity is an authentication failure, not a denial.
	err := guard.CheckTask(ctx, GuardInput{ResourceID: "t1"}, TaskActionView)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Collection-level operations carry no resource id and pass through.
	assert.NoError(t, guard.CheckTask(ctx, GuardInput{CallerID: "user-a"}, TaskActionView))

	// Missing resource maps to not-found, never forbidden.
	err = guard.CheckTask(ctx, GuardInput{CallerID: "user-a", ResourceID: "ghost"}, TaskActionView)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// Denied action carries the resolver's reason.
	err = guard.CheckTask(ctx, GuardInput{CallerID: "user-c", ResourceID: "t1"}, TaskActionView)
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, ReasonTaskViewDenied, denied.Reason)

	// Allowed action proceeds.
	assert.NoError(t, guard.CheckTask(ctx, GuardInput{CallerID: "user-a", ResourceID: "t1"}, TaskActionDelete))
}

func TestCheckProjectRejectionCategories(t *testing.T) {
	guard, _ := guardFixture(t)
	ctx := context.Background()

	err := guard.CheckProject(ctx, GuardInput{CallerID: "user-a", ResourceID: "ghost"}, ProjectActionView)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	err = guard.CheckProject(ctx, GuardInput{CallerID: "user-b", ResourceID: "p1"}, ProjectActionDelete)
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, ReasonProjectDeleteDenied, denied.Reason)

	assert.NoError(t, guard.CheckProject(ctx, GuardInput{CallerID: "user-a", ResourceID: "p1"}, ProjectActionDelete))
}

func requestWithIdentity(t *testing.T, method, target, userID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if userID != "" {
		ctx := shared.ContextWithIdentity(req.Context(), shared.Identity{UserID: userID})
		req = req.WithContext(ctx)
	}
	return req
}

func TestRequireTaskMiddlewareStatusMapping(t *testing.T) {
	guard, _ := guardFixture(t)

	router := chi.NewRouter()
	router.With(guard.RequireTask(TaskActionDelete)).Delete("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		userID string
		taskID string
		status int
		detail string
	}{
		{"unauthenticated", "", "t1", http.StatusUnauthorized, "User not authenticated"},
		{"missing resource", "user-a", "ghost", http.StatusNotFound, ReasonTaskNotFound},
		{"denied", "user-b", "t1", http.StatusForbidden, ReasonTaskDeleteDenied},
		{"allowed", "user-a", "t1", http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := requestWithIdentity(t, http.MethodDelete, "/tasks/"+tc.taskID, tc.userID)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.detail != "" {
				var problem httpx.ProblemDetail
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
				assert.Equal(t, tc.detail, problem.Detail)
			}
		})
	}
}

func TestRequireProjectMiddlewareStatusMapping(t *testing.T) {
	guard, _ := guardFixture(t)

	router := chi.NewRouter()
	router.With(guard.RequireProject(ProjectActionView)).Get("/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := requestWithIdentity(t, http.MethodGet, "/projects/p1", "user-b")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = requestWithIdentity(t, http.MethodGet, "/projects/p1", "user-d")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = requestWithIdentity(t, http.MethodGet, "/projects/ghost", "user-b")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package users

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerDom92/task-manager-pro/internal/platform/db"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// ==== MOCK REPOSITORY ====

type mockStore struct {
	profiles map[string]Profile
	updates  []UpdateInput
}

func newMockStore(profiles ...Profile) *mockStore {
	m := &mockStore{profiles: make(map[string]Profile)}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockStore) List(_ context.Context, search string) ([]Profile, error) {
	var result []Profile
	for _, p := range m.profiles {
		if search == "" || strings.Contains(p.Email, search) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

func (m *mockStore) Get(_ context.Context, id string) (Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockStore) UpdateProfile(_ context.Context, id string, in UpdateInput) (Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, shared.ErrNotFound
	}
	m.updates = append(m.updates, in)
	if in.FirstName != nil {
		p.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}
	if in.Avatar != nil {
		p.Avatar = *in.Avatar
	}
	m.profiles[id] = p
	return p, nil
}

// ==== FIXTURE ====

func userRouter(t *testing.T, profiles ...Profile) (*chi.Mux, *mockStore) {
	t.Helper()
	store := newMockStore(profiles...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	router.Route("/users", NewHandler(logger, store).MountRoutes)
	return router, store
}

func requestAs(t *testing.T, method, target, userID, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := shared.ContextWithIdentity(req.Context(), shared.Identity{UserID: userID})
	return req.WithContext(ctx)
}

// ==== TESTS ====

func TestUpdateProfileSetsAvatar(t *testing.T) {
	router, store := userRouter(t, Profile{ID: "user-1", Email: "ana@example.com", CreatedAt: time.Now()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs(t, http.MethodPatch, "/users/me", "user-1",
		`{"firstName":"Ana","avatar":"https://cdn.example.com/ana.png"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var got Profile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "https://cdn.example.com/ana.png", got.Avatar)

	require.Len(t, store.updates, 1)
	require.NotNil(t, store.updates[0].Avatar)
	assert.Nil(t, store.updates[0].LastName)
}

func TestUpdateProfileLeavesAbsentFieldsAlone(t *testing.T) {
	router, store := userRouter(t, Profile{
		ID: "user-1", Email: "ana@example.com",
		FirstName: "Ana", Avatar: "https://cdn.example.com/ana.png",
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs(t, http.MethodPatch, "/users/me", "user-1", `{"lastName":"Lovelace"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	got := store.profiles["user-1"]
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, "https://cdn.example.com/ana.png", got.Avatar)
}

func TestGetUnknownUserNotFound(t *testing.T) {
	router, _ := userRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs(t, http.MethodGet, "/users/ghost", "user-1", ""))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileColumnsExistInSchema(t *testing.T) {
	ddl := db.TableDDL("users")
	require.NotEmpty(t, ddl, "users table missing from schema")

	for _, col := range regexp.MustCompile(`[a-z_]+`).FindAllString(profileColumns, -1) {
		require.Regexp(t, `(?m)^\s+`+col+`\s`, ddl, "column %s not declared in users DDL", col)
	}
}

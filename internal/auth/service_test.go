package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerDom92/task-manager-pro/internal/shared"
)

type mockAccounts struct {
	byEmail map[string]User
	byID    map[string]User

	createErr error
}

func newMockAccounts() *mockAccounts {
	return &mockAccounts{byEmail: make(map[string]User), byID: make(map[string]User)}
}

func (m *mockAccounts) CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string) (User, error) {
	if m.createErr != nil {
		return User{}, m.createErr
	}
	if _, exists := m.byEmail[email]; exists {
		return User{}, shared.ErrEmailTaken
	}
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.byEmail[email] = u
	m.byID[u.ID] = u
	return u, nil
}

func (m *mockAccounts) FindByEmail(ctx context.Context, email string) (User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockAccounts) FindByID(ctx context.Context, id string) (User, error) {
	u, ok := m.byID[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func serviceFixture(t *testing.T) (*Service, *mockAccounts, *TokenManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	tokens := NewTokenManager("test-secret", 15*time.Minute, 720*time.Hour, client)
	repo := newMockAccounts()
	return NewService(repo, tokens), repo, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, tokens := serviceFixture(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "Alice@Example.com", "s3cret-password", "Alice", "Smith")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	identity, err := tokens.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, user.Email, identity.Email)

	_, _, err = svc.Login(ctx, "alice@example.com", "s3cret-password")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret-password")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := serviceFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "bob@example.com", "s3cret-password", "", "")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "bob@example.com", "another-password", "", "")
	assert.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := serviceFixture(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "carol@example.com", "s3cret-password", "", "")
	require.NoError(t, err)

	refreshed, next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// Refresh tokens are single use: replaying the old one fails.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestVerifyRejectsGarbageAndForgedTokens(t *testing.T) {
	_, _, tokens := serviceFixture(t)

	_, err := tokens.Verify("not-a-jwt")
	assert.ErrorIs(t, err, shared.ErrInvalidToken)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	other := NewTokenManager("different-secret", 15*time.Minute, time.Hour, client)
	pair, err := other.Issue(context.Background(), "user-1", "x@example.com")
	require.NoError(t, err)

	_, err = tokens.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens := NewTokenManager("test-secret", time.Minute, time.Hour, client)
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }

	pair, err := tokens.Issue(context.Background(), "user-1", "x@example.com")
	require.NoError(t, err)

	_, err = tokens.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

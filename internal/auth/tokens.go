package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/FerDom92/task-manager-pro/internal/shared"
)

const refreshKeyPrefix = "refresh:"

// TokenManager issues HS256 access tokens and manages rotating refresh
// tokens stored in redis with a TTL.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	redis      *redis.Client
	now        func() time.Time
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration, redisClient *redis.Client) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		redis:      redisClient,
		now:        time.Now,
	}
}

// Issue creates an access/refresh pair for a user.
func (m *TokenManager) Issue(ctx context.Context, userID, email string) (TokenPair, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(m.accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: sign access token: %w", err)
	}

	refresh := uuid.NewString()
	if err := m.redis.Set(ctx, refreshKeyPrefix+refresh, userID, m.refreshTTL).Err(); err != nil {
		return TokenPair{}, fmt.Errorf("auth: store refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify parses an access token and returns the caller identity.
func (m *TokenManager) Verify(tokenString string) (shared.Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return shared.Identity{}, shared.ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return shared.Identity{}, shared.ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return shared.Identity{}, shared.ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return shared.Identity{UserID: sub, Email: email}, nil
}

// Redeem consumes a refresh token and returns the user id it belongs to.
// Tokens are single use: redeeming deletes the key so a replay fails.
func (m *TokenManager) Redeem(ctx context.Context, refreshToken string) (string, error) {
	key := refreshKeyPrefix + refreshToken
	userID, err := m.redis.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", shared.ErrInvalidToken
		}
		return "", err
	}
	return userID, nil
}

// Revoke invalidates a refresh token, e.g. on logout.
func (m *TokenManager) Revoke(ctx context.Context, refreshToken string) error {
	return m.redis.Del(ctx, refreshKeyPrefix+refreshToken).Err()
}

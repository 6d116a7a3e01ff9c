package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// Accounts is the persistence contract the service depends on.
type Accounts interface {
	CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo   Accounts
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Accounts, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates an account and issues the first token pair.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	user, err := s.repo.CreateUser(ctx, email, string(hash), firstName, lastName)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	pair, err := s.tokens.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	return user, pair, nil
}

// Login validates email/password credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return User{}, TokenPair{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, TokenPair{}, shared.ErrInvalidCredentials
	}
	pair, err := s.tokens.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh rotates a refresh token into a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (User, TokenPair, error) {
	userID, err := s.tokens.Redeem(ctx, refreshToken)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, TokenPair{}, shared.ErrInvalidToken
		}
		return User{}, TokenPair{}, err
	}
	pair, err := s.tokens.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	return user, pair, nil
}

// CurrentUser loads the account for a verified identity.
func (s *Service) CurrentUser(ctx context.Context, userID string) (User, error) {
	return s.repo.FindByID(ctx, userID)
}

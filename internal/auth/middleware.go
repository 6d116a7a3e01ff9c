package auth

import (
	"net/http"
	"strings"

	"github.com/FerDom92/task-manager-pro/internal/platform/httpx"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// Middleware verifies bearer tokens and attaches the caller identity.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs the auth middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireAuth rejects requests without a valid Authorization: Bearer
// token and stores the verified identity in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		identity, err := m.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

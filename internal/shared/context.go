package shared

import "context"

// Identity carries the verified caller identity attached by the auth middleware.
type Identity struct {
	UserID string
	Email  string
}

type identityContextKey struct{}

// ContextWithIdentity stores the caller identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the caller identity from context.
// The zero Identity is returned when no authenticated caller is present.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityContextKey{}).(Identity)
	return id
}

// UserIDFromContext is a shorthand for IdentityFromContext(ctx).UserID.
func UserIDFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).UserID
}

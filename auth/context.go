package auth

import "context"

type contextKey string

const identityContextKey contextKey = "auth_identity"

// NewContext returns a child context carrying the authenticated identity.
// The secret is stripped before storing.
func NewContext(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity.Public())
}

// FromContext returns the identity placed by Authenticate, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}

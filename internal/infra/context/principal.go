package context

import (
	"context"
)

const contextKeyPrincipal = contextKey("principal")

// PrincipalFromContext extracts the authenticated principal from the context.
// Returns the principal and true if present, or empty string and false if not present.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(contextKeyPrincipal).(string)

	return principal, ok
}

// WithPrincipal creates a new context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal, principal)
}

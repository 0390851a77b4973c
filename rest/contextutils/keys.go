package contextutils

import (
	"context"
)

// contextKey is the wrapper we use for the names of the keys we store in Contexts
type contextKey struct {
	name string
}

var (
	contextKeyUser = &contextKey{"user"}
	contextKeyRole = &contextKey{"role"}
)

// WithContextUser adds the authenticated user's id and role to the context
func WithContextUser(ctx context.Context, userID string, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, contextKeyUser, userID)
	ctx = context.WithValue(ctx, contextKeyRole, role)
	return ctx
}

// ContextUserID returns the user id stored in the context, or "" for an
// unauthenticated request.
func ContextUserID(ctx context.Context) string {
	return getContextKey(ctx, contextKeyUser)
}

// ContextUserRole returns the role stored in the context.
func ContextUserRole(ctx context.Context) string {
	return getContextKey(ctx, contextKeyRole)
}

func getContextKey(ctx context.Context, key *contextKey) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(key).(string); ok {
		return val
	}
	return ""
}

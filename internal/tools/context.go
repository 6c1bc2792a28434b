package tools

import "context"

type contextKey int

const userIDKey contextKey = iota

// WithUserID binds the authenticated customer's user ID to the context.
// Tool handlers that answer "my vehicles" style questions read it back with
// UserIDFromContext, so two concurrent sessions can never see each other's
// records.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the customer bound to the context, or false
// when no identity was attached.
func UserIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok
}

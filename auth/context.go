package auth

import "context"

type ctxKey string

const (
	userIDCtxKey    = ctxKey("userID")
	sessionIDCtxKey = ctxKey("sessionID")
)

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDCtxKey).(uint)
	return id, ok && id != 0
}

// WithSessionID stores the session id in context.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDCtxKey, sid)
}

// SessionIDFromContext extracts the session id.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDCtxKey).(string)
	return sid, ok && sid != ""
}

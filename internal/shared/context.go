package shared

import (
	"context"
	"strconv"
)

type sessionContextKey struct{}

type quarryContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithQuarry stores the active quarry id in context.
func ContextWithQuarry(ctx context.Context, quarryID int64) context.Context {
	return context.WithValue(ctx, quarryContextKey{}, quarryID)
}

// QuarryFromContext extracts the active quarry id, zero when unset.
func QuarryFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(quarryContextKey{}).(int64)
	return id
}

// ActorFromContext resolves the acting user id from the session, zero when
// the request is unauthenticated.
func ActorFromContext(ctx context.Context) int64 {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return 0
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// PrincipalFromContext extracts the principal from the request session.
// Anonymous requests yield a zero principal; callers that fail open on an
// unknown identity rely on that.
func PrincipalFromContext(ctx context.Context) Principal {
	return SessionFromContext(ctx).Principal()
}

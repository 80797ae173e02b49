package domain

import "context"

type contextKey int

const actorContextKey contextKey = iota

// DefaultActor is the audit identity used when no operator identity is
// available on the context.
const DefaultActor = "admin"

// WithActor returns a context carrying the acting administrator's identity.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext extracts the acting administrator's identity, falling back
// to DefaultActor.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorContextKey).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}

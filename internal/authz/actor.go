package authz

import (
	"context"

	"github.com/vidtube/backend/internal/store"
)

type ctxKey string

const actorKey ctxKey = "actor"

// WithActor stores the authenticated actor identity on the context.
func WithActor(ctx context.Context, actor store.ID) context.Context {
	if actor.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor, or the zero identity
// for anonymous requests.
func ActorFromContext(ctx context.Context) store.ID {
	if actor, ok := ctx.Value(actorKey).(store.ID); ok {
		return actor
	}
	return ""
}

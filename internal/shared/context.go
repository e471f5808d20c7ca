package shared

import (
	"context"

	"github.com/lodgelist/lodgelist/internal/core"
)

type actorContextKey struct{}

// ContextWithActor stores the resolved actor in context.
func ContextWithActor(ctx context.Context, actor core.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context, falling back to the
// anonymous guest when no auth middleware ran.
func ActorFromContext(ctx context.Context) core.Actor {
	actor, ok := ctx.Value(actorContextKey{}).(core.Actor)
	if !ok {
		return core.Anonymous()
	}
	return actor
}

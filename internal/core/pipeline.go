package core

import (
	"context"
	"fmt"
	"log/slog"
)

// Exec describes one validated execution: a named method, the calling actor,
// the raw input, the schema that gates it, and the business function to run
// once validation passes.
type Exec[I, O any] struct {
	Method  string
	Actor   *Actor
	Input   I
	Schema  Schema[I]
	Logger  *ServiceLogger
	Execute func(ctx context.Context, input I, actor Actor) (O, error)
}

// Run wraps a business operation with actor validation, input validation and
// uniform error translation. It never panics outward and never returns a Go
// error: every outcome, including programming mistakes inside Execute, lands
// in the envelope. Each exit path logs exactly once after the start line.
func Run[I, O any](ctx context.Context, exec Exec[I, O]) (res Result[O]) {
	log := exec.Logger

	defer func() {
		if r := recover(); r != nil {
			err := NewErrorWithDetails(CodeInternal, "internal error", fmt.Sprintf("panic: %v", r))
			log.Error(exec.Method+" panicked", slog.Any("error", err))
			res = Fail[O](err)
		}
	}()

	actorID, actorRole := "", Role("")
	if exec.Actor != nil {
		actorID, actorRole = exec.Actor.ID, exec.Actor.Role
	}
	log.Info(exec.Method+" start",
		slog.String("actor_id", actorID),
		slog.String("actor_role", string(actorRole)),
	)

	if exec.Actor == nil || !KnownRole(exec.Actor.Role) {
		err := NewError(CodeUnauthorized, "actor is missing or malformed")
		log.Error(exec.Method+" rejected actor", slog.Any("error", err))
		return Fail[O](err)
	}
	actor := *exec.Actor

	input := exec.Input
	if exec.Schema != nil {
		parsed, ferr := exec.Schema.Parse(ctx, input)
		if !ferr.Empty() {
			err := NewErrorWithDetails(CodeValidation, ferr.Message(), ferr)
			log.Error(exec.Method+" validation failed", slog.Any("error", err))
			return Fail[O](err)
		}
		input = parsed
	}

	out, execErr := exec.Execute(ctx, input, actor)
	if execErr != nil {
		// Typed failures pass through untouched so permission and not-found
		// signals keep their original code; anything else is demoted to
		// INTERNAL_ERROR with the cause preserved under details.
		err := AsServiceError(execErr)
		log.Error(exec.Method+" failed",
			slog.String("code", string(err.Code)),
			slog.Any("error", err),
		)
		return Fail[O](err)
	}

	log.Info(exec.Method + " end")
	return Ok(out)
}

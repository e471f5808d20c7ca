package core

import "context"

// PermissionTokens maps an entity service onto the evaluator's ANY/OWN grant
// model. Token names are entity-specific (for example
// "accommodations.update.any"); the evaluator itself never sees them.
type PermissionTokens struct {
	UpdateAny  string
	UpdateOwn  string
	DeleteAny  string
	DeleteOwn  string
	RestoreAny string
	RestoreOwn string

	// CreateRoles lists the roles allowed to create, in addition to ADMIN
	// and SUPER_ADMIN which are always allowed.
	CreateRoles []Role
}

// OwnerPolicy is the standard Policy implementation: it precomputes scope
// grants from the actor's token set and delegates every decision to
// Evaluate, logging each one as a permission event.
type OwnerPolicy[T Entity] struct {
	Name   string
	Tokens PermissionTokens
	Logger *ServiceLogger
}

// NewOwnerPolicy builds the standard policy for one entity service.
func NewOwnerPolicy[T Entity](name string, tokens PermissionTokens, logger *ServiceLogger) *OwnerPolicy[T] {
	return &OwnerPolicy[T]{Name: name, Tokens: tokens, Logger: logger}
}

func (p *OwnerPolicy[T]) grants(actor Actor, anyToken, ownToken string) ScopeGrants {
	return ScopeGrants{
		HasAny: anyToken != "" && actor.HasPermission(anyToken),
		HasOwn: ownToken != "" && actor.HasPermission(ownToken),
	}
}

func (p *OwnerPolicy[T]) decide(ctx context.Context, actor Actor, entity *T, action Action, grants ScopeGrants) *ServiceError {
	state := (*entity).PermissionState()
	decision := Evaluate(actor, state, action, grants)
	p.Logger.Permission(ctx, PermissionEvent{
		Permission: p.Name + "." + string(action),
		UserID:     actor.ID,
		Role:       actor.Role,
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
		Extra:      map[string]any{"entity_id": (*entity).EntityID()},
	})
	if !decision.Allowed {
		return Forbidden("not allowed to " + string(action) + " this " + p.Name)
	}
	return nil
}

// CanCreate allows admins, super admins and any configured creator role.
func (p *OwnerPolicy[T]) CanCreate(ctx context.Context, actor Actor) *ServiceError {
	allowed := actor.Role == RoleAdmin || actor.Role == RoleSuperAdmin
	if !allowed {
		for _, r := range p.Tokens.CreateRoles {
			if actor.Role == r {
				allowed = true
				break
			}
		}
	}
	reason := ReasonDenied
	if allowed {
		reason = Reason(actor.Role)
	}
	p.Logger.Permission(ctx, PermissionEvent{
		Permission: p.Name + "." + string(ActionCreate),
		UserID:     actor.ID,
		Role:       actor.Role,
		Allowed:    allowed,
		Reason:     reason,
	})
	if !allowed {
		return Forbidden("not allowed to create " + p.Name)
	}
	return nil
}

// CanView delegates to the evaluator's view state machine.
func (p *OwnerPolicy[T]) CanView(ctx context.Context, actor Actor, entity *T) *ServiceError {
	return p.decide(ctx, actor, entity, ActionView, ScopeGrants{})
}

// CanList allows everyone; list results are view-filtered per row.
func (p *OwnerPolicy[T]) CanList(ctx context.Context, actor Actor) *ServiceError { return nil }

// CanSearch allows everyone; search results are view-filtered per row.
func (p *OwnerPolicy[T]) CanSearch(ctx context.Context, actor Actor) *ServiceError { return nil }

// CanCount allows everyone.
func (p *OwnerPolicy[T]) CanCount(ctx context.Context, actor Actor) *ServiceError { return nil }

// CanUpdate resolves the update token pair.
func (p *OwnerPolicy[T]) CanUpdate(ctx context.Context, actor Actor, entity *T) *ServiceError {
	return p.decide(ctx, actor, entity, ActionUpdate, p.grants(actor, p.Tokens.UpdateAny, p.Tokens.UpdateOwn))
}

// CanSoftDelete resolves the delete token pair.
func (p *OwnerPolicy[T]) CanSoftDelete(ctx context.Context, actor Actor, entity *T) *ServiceError {
	return p.decide(ctx, actor, entity, ActionDelete, p.grants(actor, p.Tokens.DeleteAny, p.Tokens.DeleteOwn))
}

// CanHardDelete defers to the evaluator, which reserves hard deletes for
// super admins.
func (p *OwnerPolicy[T]) CanHardDelete(ctx context.Context, actor Actor, entity *T) *ServiceError {
	return p.decide(ctx, actor, entity, ActionHardDelete, ScopeGrants{})
}

// CanRestore resolves the restore token pair.
func (p *OwnerPolicy[T]) CanRestore(ctx context.Context, actor Actor, entity *T) *ServiceError {
	return p.decide(ctx, actor, entity, ActionRestore, p.grants(actor, p.Tokens.RestoreAny, p.Tokens.RestoreOwn))
}

// CanUpdateVisibility treats a visibility switch as an update.
func (p *OwnerPolicy[T]) CanUpdateVisibility(ctx context.Context, actor Actor, entity *T, visibility Visibility) *ServiceError {
	return p.decide(ctx, actor, entity, ActionUpdate, p.grants(actor, p.Tokens.UpdateAny, p.Tokens.UpdateOwn))
}

// CanModerate delegates to the evaluator's admin-only moderation rule.
func (p *OwnerPolicy[T]) CanModerate(ctx context.Context, actor Actor, entity *T, action Action) *ServiceError {
	return p.decide(ctx, actor, entity, action, ScopeGrants{})
}

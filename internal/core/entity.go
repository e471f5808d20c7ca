package core

import (
	"context"
	"fmt"
)

// Filter narrows model lookups by column/value pairs. Interpretation belongs
// to the model implementation.
type Filter map[string]any

// Page bounds a listing query.
type Page struct {
	Limit  int
	Offset int
}

// Entity is implemented by every persisted business type the kernel
// orchestrates.
type Entity interface {
	EntityID() string
	PermissionState() EntityState
}

// Model is the persistence capability the kernel consumes. A missing row is
// reported as (nil, nil); any returned error that is not a *ServiceError is
// treated as INTERNAL_ERROR by the pipeline.
type Model[T Entity, C, U any] interface {
	FindByID(ctx context.Context, id string) (*T, error)
	FindOne(ctx context.Context, filter Filter) (*T, error)
	FindAll(ctx context.Context, filter Filter, page Page) ([]T, int, error)
	Create(ctx context.Context, data C) (*T, error)
	Update(ctx context.Context, id string, data U) (*T, error)
	SetVisibility(ctx context.Context, id string, visibility Visibility) (*T, error)
	Moderate(ctx context.Context, id string, action Action) (*T, error)
	SoftDelete(ctx context.Context, id string) (int64, error)
	HardDelete(ctx context.Context, id string) (int64, error)
	Restore(ctx context.Context, id string) (int64, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Policy decides, per verb, whether the actor may proceed. Every method
// returns nil to allow or a *ServiceError (normally FORBIDDEN) to deny.
// Policies are injected into the generic service rather than inherited.
type Policy[T Entity] interface {
	CanCreate(ctx context.Context, actor Actor) *ServiceError
	CanView(ctx context.Context, actor Actor, entity *T) *ServiceError
	CanList(ctx context.Context, actor Actor) *ServiceError
	CanSearch(ctx context.Context, actor Actor) *ServiceError
	CanCount(ctx context.Context, actor Actor) *ServiceError
	CanUpdate(ctx context.Context, actor Actor, entity *T) *ServiceError
	CanSoftDelete(ctx context.Context, actor Actor, entity *T) *ServiceError
	CanHardDelete(ctx context.Context, actor Actor, entity *T) *ServiceError
	CanRestore(ctx context.Context, actor Actor, entity *T) *ServiceError
	CanUpdateVisibility(ctx context.Context, actor Actor, entity *T, visibility Visibility) *ServiceError
	CanModerate(ctx context.Context, actor Actor, entity *T, action Action) *ServiceError
}

// HookState carries values from a before hook to its matching after hook.
// State is threaded explicitly through the call chain, never parked on the
// service instance, so verbs stay reentrant under concurrent calls.
type HookState map[string]any

// Hooks are the optional lifecycle extension points around model calls.
// A nil function is a no-op. Hooks abort the verb by returning an error;
// a *ServiceError keeps its code, anything else becomes INTERNAL_ERROR.
type Hooks[T Entity, C, U any] struct {
	BeforeCreate func(ctx context.Context, input C, actor Actor) (C, error)
	AfterCreate  func(ctx context.Context, created *T, actor Actor) error

	BeforeUpdate func(ctx context.Context, current *T, input U, actor Actor) (U, error)
	AfterUpdate  func(ctx context.Context, updated *T, actor Actor) error

	BeforeSoftDelete func(ctx context.Context, target *T, actor Actor) (HookState, error)
	AfterSoftDelete  func(ctx context.Context, target *T, state HookState, actor Actor) error

	BeforeHardDelete func(ctx context.Context, target *T, actor Actor) (HookState, error)
	AfterHardDelete  func(ctx context.Context, target *T, state HookState, actor Actor) error

	AfterRestore func(ctx context.Context, restored *T, actor Actor) error
}

// DeleteResult reports how many rows a delete or restore touched. Repeating
// a soft delete is answered with a zero count, not an error.
type DeleteResult struct {
	Count int64 `json:"count"`
}

// PagedResult is the permission-filtered page a search returns. Total is
// adjusted for rows the actor may not view so it never disagrees with Items.
type PagedResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// CountResult wraps a count verb outcome.
type CountResult struct {
	Count int64 `json:"count"`
}

// SearchParams bound a search or count verb.
type SearchParams struct {
	Filter Filter
	Page   Page
}

// ServiceConfig assembles a generic entity service.
type ServiceConfig[T Entity, C, U any] struct {
	Name         string
	Model        Model[T, C, U]
	Policy       Policy[T]
	Hooks        Hooks[T, C, U]
	CreateSchema Schema[C]
	UpdateSchema Schema[U]
	Logger       *ServiceLogger
}

// Service supplies the canonical verbs over one entity type, composing the
// permission policy, lifecycle hooks and the injected model. All per-call
// state lives on the stack; the only instance state is configuration.
type Service[T Entity, C, U any] struct {
	name         string
	model        Model[T, C, U]
	policy       Policy[T]
	hooks        Hooks[T, C, U]
	createSchema Schema[C]
	updateSchema Schema[U]
	logger       *ServiceLogger
}

// NewService wires a Service from its configuration.
func NewService[T Entity, C, U any](cfg ServiceConfig[T, C, U]) *Service[T, C, U] {
	return &Service[T, C, U]{
		name:         cfg.Name,
		model:        cfg.Model,
		policy:       cfg.Policy,
		hooks:        cfg.Hooks,
		createSchema: cfg.CreateSchema,
		updateSchema: cfg.UpdateSchema,
		logger:       cfg.Logger,
	}
}

// Name returns the entity name the service was configured with.
func (s *Service[T, C, U]) Name() string { return s.name }

// Logger exposes the service logger for entity-specific verbs built on top.
func (s *Service[T, C, U]) Logger() *ServiceLogger { return s.logger }

// Model exposes the injected model for entity-specific verbs built on top.
func (s *Service[T, C, U]) Model() Model[T, C, U] { return s.model }

// fetch loads an entity by id, translating a missing row into NOT_FOUND. A
// nonexistent entity cannot be forbidden, only not found, so this always
// runs before any permission check.
func (s *Service[T, C, U]) fetch(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, NewError(CodeValidation, "id is required")
	}
	entity, err := s.model.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, NotFound(s.name)
	}
	return entity, nil
}

// Create validates input, checks the create policy and persists through the
// model, running the create hooks around the model call.
func (s *Service[T, C, U]) Create(ctx context.Context, actor Actor, input C) Result[T] {
	return Run(ctx, Exec[C, T]{
		Method: s.name + ".create",
		Actor:  &actor,
		Input:  input,
		Schema: s.createSchema,
		Logger: s.logger,
		Execute: func(ctx context.Context, in C, actor Actor) (T, error) {
			var zero T
			if err := s.policy.CanCreate(ctx, actor); err != nil {
				return zero, err
			}
			if s.hooks.BeforeCreate != nil {
				var err error
				if in, err = s.hooks.BeforeCreate(ctx, in, actor); err != nil {
					return zero, err
				}
			}
			created, err := s.model.Create(ctx, in)
			if err != nil {
				return zero, err
			}
			if created == nil {
				return zero, fmt.Errorf("%s: model returned no entity on create", s.name)
			}
			if s.hooks.AfterCreate != nil {
				if err := s.hooks.AfterCreate(ctx, created, actor); err != nil {
					return zero, err
				}
			}
			return *created, nil
		},
	})
}

// GetByID fetches one entity and checks the view policy against its state.
func (s *Service[T, C, U]) GetByID(ctx context.Context, actor Actor, id string) Result[T] {
	return Run(ctx, Exec[string, T]{
		Method: s.name + ".getById",
		Actor:  &actor,
		Input:  id,
		Logger: s.logger,
		Execute: func(ctx context.Context, id string, actor Actor) (T, error) {
			var zero T
			entity, err := s.fetch(ctx, id)
			if err != nil {
				return zero, err
			}
			if err := s.policy.CanView(ctx, actor, entity); err != nil {
				return zero, err
			}
			return *entity, nil
		},
	})
}

// FieldLookup identifies a unique-field fetch.
type FieldLookup struct {
	Field string `validate:"required"`
	Value string `validate:"required"`
}

// GetByField fetches one entity by a unique field, with NOT_FOUND translated
// before the view policy runs.
func (s *Service[T, C, U]) GetByField(ctx context.Context, actor Actor, lookup FieldLookup) Result[T] {
	return Run(ctx, Exec[FieldLookup, T]{
		Method: s.name + ".getByField",
		Actor:  &actor,
		Input:  lookup,
		Schema: NewStructSchema[FieldLookup](nil),
		Logger: s.logger,
		Execute: func(ctx context.Context, lookup FieldLookup, actor Actor) (T, error) {
			var zero T
			entity, err := s.model.FindOne(ctx, Filter{lookup.Field: lookup.Value})
			if err != nil {
				return zero, err
			}
			if entity == nil {
				return zero, NotFound(s.name)
			}
			if err := s.policy.CanView(ctx, actor, entity); err != nil {
				return zero, err
			}
			return *entity, nil
		},
	})
}

// Update loads the target first so the policy can inspect its current state,
// then applies the update hooks and the model mutation. Denial happens
// before any mutation is observable.
func (s *Service[T, C, U]) Update(ctx context.Context, actor Actor, id string, input U) Result[T] {
	return Run(ctx, Exec[U, T]{
		Method: s.name + ".update",
		Actor:  &actor,
		Input:  input,
		Schema: s.updateSchema,
		Logger: s.logger,
		Execute: func(ctx context.Context, in U, actor Actor) (T, error) {
			var zero T
			current, err := s.fetch(ctx, id)
			if err != nil {
				return zero, err
			}
			if err := s.policy.CanUpdate(ctx, actor, current); err != nil {
				return zero, err
			}
			if s.hooks.BeforeUpdate != nil {
				if in, err = s.hooks.BeforeUpdate(ctx, current, in, actor); err != nil {
					return zero, err
				}
			}
			updated, err := s.model.Update(ctx, id, in)
			if err != nil {
				return zero, err
			}
			if updated == nil {
				return zero, NotFound(s.name)
			}
			if s.hooks.AfterUpdate != nil {
				if err := s.hooks.AfterUpdate(ctx, updated, actor); err != nil {
					return zero, err
				}
			}
			return *updated, nil
		},
	})
}

// SoftDelete marks the target deleted. Deleting an already-deleted entity is
// idempotent: it answers {count: 0} before the policy runs and without
// touching the model again.
func (s *Service[T, C, U]) SoftDelete(ctx context.Context, actor Actor, id string) Result[DeleteResult] {
	return Run(ctx, Exec[string, DeleteResult]{
		Method: s.name + ".softDelete",
		Actor:  &actor,
		Input:  id,
		Logger: s.logger,
		Execute: func(ctx context.Context, id string, actor Actor) (DeleteResult, error) {
			target, err := s.fetch(ctx, id)
			if err != nil {
				return DeleteResult{}, err
			}
			if (*target).PermissionState().DeletedAt != nil {
				return DeleteResult{Count: 0}, nil
			}
			if err := s.policy.CanSoftDelete(ctx, actor, target); err != nil {
				return DeleteResult{}, err
			}
			var state HookState
			if s.hooks.BeforeSoftDelete != nil {
				if state, err = s.hooks.BeforeSoftDelete(ctx, target, actor); err != nil {
					return DeleteResult{}, err
				}
			}
			count, err := s.model.SoftDelete(ctx, id)
			if err != nil {
				return DeleteResult{}, err
			}
			if s.hooks.AfterSoftDelete != nil {
				if err := s.hooks.AfterSoftDelete(ctx, target, state, actor); err != nil {
					return DeleteResult{}, err
				}
			}
			return DeleteResult{Count: count}, nil
		},
	})
}

// HardDelete removes the row permanently. The policy gate keeps this to
// super admins.
func (s *Service[T, C, U]) HardDelete(ctx context.Context, actor Actor, id string) Result[DeleteResult] {
	return Run(ctx, Exec[string, DeleteResult]{
		Method: s.name + ".hardDelete",
		Actor:  &actor,
		Input:  id,
		Logger: s.logger,
		Execute: func(ctx context.Context, id string, actor Actor) (DeleteResult, error) {
			target, err := s.fetch(ctx, id)
			if err != nil {
				return DeleteResult{}, err
			}
			if err := s.policy.CanHardDelete(ctx, actor, target); err != nil {
				return DeleteResult{}, err
			}
			var state HookState
			if s.hooks.BeforeHardDelete != nil {
				if state, err = s.hooks.BeforeHardDelete(ctx, target, actor); err != nil {
					return DeleteResult{}, err
				}
			}
			count, err := s.model.HardDelete(ctx, id)
			if err != nil {
				return DeleteResult{}, err
			}
			if s.hooks.AfterHardDelete != nil {
				if err := s.hooks.AfterHardDelete(ctx, target, state, actor); err != nil {
					return DeleteResult{}, err
				}
			}
			return DeleteResult{Count: count}, nil
		},
	})
}

// Restore clears the soft-delete marker.
func (s *Service[T, C, U]) Restore(ctx context.Context, actor Actor, id string) Result[DeleteResult] {
	return Run(ctx, Exec[string, DeleteResult]{
		Method: s.name + ".restore",
		Actor:  &actor,
		Input:  id,
		Logger: s.logger,
		Execute: func(ctx context.Context, id string, actor Actor) (DeleteResult, error) {
			target, err := s.fetch(ctx, id)
			if err != nil {
				return DeleteResult{}, err
			}
			if err := s.policy.CanRestore(ctx, actor, target); err != nil {
				return DeleteResult{}, err
			}
			count, err := s.model.Restore(ctx, id)
			if err != nil {
				return DeleteResult{}, err
			}
			if count > 0 && s.hooks.AfterRestore != nil {
				restored, err := s.model.FindByID(ctx, id)
				if err != nil {
					return DeleteResult{}, err
				}
				if restored != nil {
					if err := s.hooks.AfterRestore(ctx, restored, actor); err != nil {
						return DeleteResult{}, err
					}
				}
			}
			return DeleteResult{Count: count}, nil
		},
	})
}

// Search lists entities and filters the page by the view policy per row so
// the permission engine stays the single source of truth. Total is reduced
// by the rows removed from the current page only; rows the actor cannot
// view on other pages are still counted, so Total is an upper bound on the
// visible result set, not an exact count.
func (s *Service[T, C, U]) Search(ctx context.Context, actor Actor, params SearchParams) Result[PagedResult[T]] {
	return Run(ctx, Exec[SearchParams, PagedResult[T]]{
		Method: s.name + ".search",
		Actor:  &actor,
		Input:  params,
		Logger: s.logger,
		Execute: func(ctx context.Context, params SearchParams, actor Actor) (PagedResult[T], error) {
			if err := s.policy.CanSearch(ctx, actor); err != nil {
				return PagedResult[T]{}, err
			}
			page := params.Page
			if page.Limit <= 0 {
				page.Limit = 20
			}
			if page.Offset < 0 {
				page.Offset = 0
			}
			items, total, err := s.model.FindAll(ctx, params.Filter, page)
			if err != nil {
				return PagedResult[T]{}, err
			}
			visible := make([]T, 0, len(items))
			for i := range items {
				if s.policy.CanView(ctx, actor, &items[i]) == nil {
					visible = append(visible, items[i])
				}
			}
			total -= len(items) - len(visible)
			if total < len(visible) {
				total = len(visible)
			}
			return PagedResult[T]{Items: visible, Total: total}, nil
		},
	})
}

// Count reports how many entities match the filter, gated by the count
// policy.
func (s *Service[T, C, U]) Count(ctx context.Context, actor Actor, filter Filter) Result[CountResult] {
	return Run(ctx, Exec[Filter, CountResult]{
		Method: s.name + ".count",
		Actor:  &actor,
		Input:  filter,
		Logger: s.logger,
		Execute: func(ctx context.Context, filter Filter, actor Actor) (CountResult, error) {
			if err := s.policy.CanCount(ctx, actor); err != nil {
				return CountResult{}, err
			}
			count, err := s.model.Count(ctx, filter)
			if err != nil {
				return CountResult{}, err
			}
			return CountResult{Count: count}, nil
		},
	})
}

// UpdateVisibility switches the entity's audience scope after the dedicated
// policy check.
func (s *Service[T, C, U]) UpdateVisibility(ctx context.Context, actor Actor, id string, visibility Visibility) Result[T] {
	return Run(ctx, Exec[Visibility, T]{
		Method: s.name + ".updateVisibility",
		Actor:  &actor,
		Input:  visibility,
		Logger: s.logger,
		Execute: func(ctx context.Context, visibility Visibility, actor Actor) (T, error) {
			var zero T
			switch visibility {
			case VisibilityPublic, VisibilityPrivate, VisibilityRestricted:
			default:
				return zero, NewError(CodeValidation, "visibility must be PUBLIC, PRIVATE or RESTRICTED")
			}
			current, err := s.fetch(ctx, id)
			if err != nil {
				return zero, err
			}
			if err := s.policy.CanUpdateVisibility(ctx, actor, current, visibility); err != nil {
				return zero, err
			}
			updated, err := s.model.SetVisibility(ctx, id, visibility)
			if err != nil {
				return zero, err
			}
			if updated == nil {
				return zero, NotFound(s.name)
			}
			return *updated, nil
		},
	})
}

// Moderate applies one of the admin-only actions (approve, reject, feature,
// publish) through the model.
func (s *Service[T, C, U]) Moderate(ctx context.Context, actor Actor, id string, action Action) Result[T] {
	return Run(ctx, Exec[Action, T]{
		Method: s.name + "." + string(action),
		Actor:  &actor,
		Input:  action,
		Logger: s.logger,
		Execute: func(ctx context.Context, action Action, actor Actor) (T, error) {
			var zero T
			switch action {
			case ActionApprove, ActionReject, ActionFeature, ActionPublish:
			default:
				return zero, NewError(CodeValidation, "unsupported moderation action")
			}
			current, err := s.fetch(ctx, id)
			if err != nil {
				return zero, err
			}
			if err := s.policy.CanModerate(ctx, actor, current, action); err != nil {
				return zero, err
			}
			updated, err := s.model.Moderate(ctx, id, action)
			if err != nil {
				return zero, err
			}
			if updated == nil {
				return zero, NotFound(s.name)
			}
			return *updated, nil
		},
	})
}

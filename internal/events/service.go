package events

import (
	"context"

	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/shared"
)

// Service exposes the event verbs. Hosts create events for their
// destinations; the update hook keeps the schedule consistent when only one
// end of it changes.
type Service struct {
	*core.Service[Event, CreateInput, UpdateInput]
}

// NewService assembles the events service.
func NewService(model core.Model[Event, CreateInput, UpdateInput], logger *core.ServiceLogger) *Service {
	policy := core.NewOwnerPolicy[Event]("events", core.PermissionTokens{
		UpdateAny:   shared.PermEventsUpdateAny,
		UpdateOwn:   shared.PermEventsUpdateOwn,
		DeleteAny:   shared.PermEventsDeleteAny,
		DeleteOwn:   shared.PermEventsDeleteOwn,
		RestoreAny:  shared.PermEventsRestoreAny,
		RestoreOwn:  shared.PermEventsRestoreOwn,
		CreateRoles: []core.Role{core.RoleHost},
	}, logger)

	hooks := core.Hooks[Event, CreateInput, UpdateInput]{
		BeforeCreate: func(ctx context.Context, input CreateInput, actor core.Actor) (CreateInput, error) {
			input.OwnerID = actor.ID
			input.Slug = shared.Slugify(input.Title)
			return input, nil
		},
		BeforeUpdate: func(ctx context.Context, current *Event, input UpdateInput, actor core.Actor) (UpdateInput, error) {
			starts := current.StartsAt
			if input.StartsAt != nil {
				starts = *input.StartsAt
			}
			ends := current.EndsAt
			if input.EndsAt != nil {
				ends = *input.EndsAt
			}
			if !ends.After(starts) {
				return input, core.NewError(core.CodeValidation, "ends_at must be after starts_at")
			}
			return input, nil
		},
	}

	return &Service{
		Service: core.NewService(core.ServiceConfig[Event, CreateInput, UpdateInput]{
			Name:         "events",
			Model:        model,
			Policy:       policy,
			Hooks:        hooks,
			CreateSchema: core.NewStructSchema[CreateInput](nil),
			UpdateSchema: core.NewStructSchema[UpdateInput](nil),
			Logger:       logger,
		}),
	}
}

// GetBySlug resolves an event by its URL slug.
func (s *Service) GetBySlug(ctx context.Context, actor core.Actor, slug string) core.Result[Event] {
	return s.GetByField(ctx, actor, core.FieldLookup{Field: "slug", Value: slug})
}

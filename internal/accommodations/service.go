package accommodations

import (
	"context"

	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/shared"
)

// Enqueuer schedules the background refresh of a destination's listing
// counter after a listing changes.
type Enqueuer interface {
	EnqueueDestinationRecount(ctx context.Context, destinationID string) error
}

// Service exposes the listing verbs. It is the generic entity service with an
// owner policy, slug derivation on create and recount jobs after every
// mutation that changes a destination's live listing count.
type Service struct {
	*core.Service[Accommodation, CreateInput, UpdateInput]
}

// NewService assembles the accommodations service.
func NewService(model core.Model[Accommodation, CreateInput, UpdateInput], enqueuer Enqueuer, logger *core.ServiceLogger) *Service {
	policy := core.NewOwnerPolicy[Accommodation]("accommodations", core.PermissionTokens{
		UpdateAny:   shared.PermAccommodationsUpdateAny,
		UpdateOwn:   shared.PermAccommodationsUpdateOwn,
		DeleteAny:   shared.PermAccommodationsDeleteAny,
		DeleteOwn:   shared.PermAccommodationsDeleteOwn,
		RestoreAny:  shared.PermAccommodationsRestoreAny,
		RestoreOwn:  shared.PermAccommodationsRestoreOwn,
		CreateRoles: []core.Role{core.RoleHost},
	}, logger)

	recount := func(ctx context.Context, destinationID string) {
		if enqueuer == nil {
			return
		}
		if err := enqueuer.EnqueueDestinationRecount(ctx, destinationID); err != nil {
			// The counter is eventually consistent; a failed enqueue must not
			// fail the verb that already committed.
			logger.Warn("destination recount enqueue failed",
				"destination_id", destinationID, "error", err)
		}
	}

	hooks := core.Hooks[Accommodation, CreateInput, UpdateInput]{
		BeforeCreate: func(ctx context.Context, input CreateInput, actor core.Actor) (CreateInput, error) {
			input.OwnerID = actor.ID
			input.Slug = shared.Slugify(input.Name)
			return input, nil
		},
		AfterCreate: func(ctx context.Context, created *Accommodation, actor core.Actor) error {
			recount(ctx, created.DestinationID)
			return nil
		},
		AfterSoftDelete: func(ctx context.Context, target *Accommodation, state core.HookState, actor core.Actor) error {
			recount(ctx, target.DestinationID)
			return nil
		},
		AfterHardDelete: func(ctx context.Context, target *Accommodation, state core.HookState, actor core.Actor) error {
			recount(ctx, target.DestinationID)
			return nil
		},
		AfterRestore: func(ctx context.Context, restored *Accommodation, actor core.Actor) error {
			recount(ctx, restored.DestinationID)
			return nil
		},
	}

	return &Service{
		Service: core.NewService(core.ServiceConfig[Accommodation, CreateInput, UpdateInput]{
			Name:         "accommodations",
			Model:        model,
			Policy:       policy,
			Hooks:        hooks,
			CreateSchema: core.NewStructSchema[CreateInput](nil),
			UpdateSchema: core.NewStructSchema[UpdateInput](nil),
			Logger:       logger,
		}),
	}
}

// GetBySlug resolves a listing by its URL slug.
func (s *Service) GetBySlug(ctx context.Context, actor core.Actor, slug string) core.Result[Accommodation] {
	return s.GetByField(ctx, actor, core.FieldLookup{Field: "slug", Value: slug})
}

package destinations

import (
	"context"

	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/shared"
)

// Service exposes the destination verbs. Destinations are curated content:
// only admins create or change them, and there is no OWN permission scope.
type Service struct {
	*core.Service[Destination, CreateInput, UpdateInput]
}

// NewService assembles the destinations service.
func NewService(model core.Model[Destination, CreateInput, UpdateInput], logger *core.ServiceLogger) *Service {
	policy := core.NewOwnerPolicy[Destination]("destinations", core.PermissionTokens{
		UpdateAny:  shared.PermDestinationsUpdateAny,
		DeleteAny:  shared.PermDestinationsDeleteAny,
		RestoreAny: shared.PermDestinationsRestoreAny,
	}, logger)

	hooks := core.Hooks[Destination, CreateInput, UpdateInput]{
		BeforeCreate: func(ctx context.Context, input CreateInput, actor core.Actor) (CreateInput, error) {
			input.Slug = shared.Slugify(input.Name)
			return input, nil
		},
	}

	return &Service{
		Service: core.NewService(core.ServiceConfig[Destination, CreateInput, UpdateInput]{
			Name:         "destinations",
			Model:        model,
			Policy:       policy,
			Hooks:        hooks,
			CreateSchema: core.NewStructSchema[CreateInput](nil),
			UpdateSchema: core.NewStructSchema[UpdateInput](nil),
			Logger:       logger,
		}),
	}
}

// GetBySlug resolves a destination by its URL slug.
func (s *Service) GetBySlug(ctx context.Context, actor core.Actor, slug string) core.Result[Destination] {
	return s.GetByField(ctx, actor, core.FieldLookup{Field: "slug", Value: slug})
}

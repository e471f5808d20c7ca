package posts

import (
	"context"

	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/shared"
)

// Service exposes the post verbs. Any signed-in role may write posts, and
// editing the content of an approved post sends it back to review.
type Service struct {
	*core.Service[Post, CreateInput, UpdateInput]
}

// NewService assembles the posts service.
func NewService(model core.Model[Post, CreateInput, UpdateInput], logger *core.ServiceLogger) *Service {
	policy := core.NewOwnerPolicy[Post]("posts", core.PermissionTokens{
		UpdateAny:   shared.PermPostsUpdateAny,
		UpdateOwn:   shared.PermPostsUpdateOwn,
		DeleteAny:   shared.PermPostsDeleteAny,
		DeleteOwn:   shared.PermPostsDeleteOwn,
		RestoreAny:  shared.PermPostsRestoreAny,
		RestoreOwn:  shared.PermPostsRestoreOwn,
		CreateRoles: []core.Role{core.RoleUser, core.RoleHost},
	}, logger)

	hooks := core.Hooks[Post, CreateInput, UpdateInput]{
		BeforeCreate: func(ctx context.Context, input CreateInput, actor core.Actor) (CreateInput, error) {
			input.AuthorID = actor.ID
			input.Slug = shared.Slugify(input.Title)
			return input, nil
		},
		BeforeUpdate: func(ctx context.Context, current *Post, input UpdateInput, actor core.Actor) (UpdateInput, error) {
			contentChanged := input.Title != nil || input.Body != nil
			if contentChanged && current.Moderation == core.ModerationApproved {
				input.resetModeration = true
			}
			return input, nil
		},
	}

	return &Service{
		Service: core.NewService(core.ServiceConfig[Post, CreateInput, UpdateInput]{
			Name:         "posts",
			Model:        model,
			Policy:       policy,
			Hooks:        hooks,
			CreateSchema: core.NewStructSchema[CreateInput](nil),
			UpdateSchema: core.NewStructSchema[UpdateInput](nil),
			Logger:       logger,
		}),
	}
}

// GetBySlug resolves a post by its URL slug.
func (s *Service) GetBySlug(ctx context.Context, actor core.Actor, slug string) core.Result[Post] {
	return s.GetByField(ctx, actor, core.FieldLookup{Field: "slug", Value: slug})
}

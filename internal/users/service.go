package users

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/shared"
)

// accountPolicy adapts the standard owner policy to accounts: registration
// is open to anyone, while browsing the account list is admin-only. Viewing
// stays with the evaluator, which keeps PRIVATE profiles to their owner.
type accountPolicy struct {
	*core.OwnerPolicy[User]
}

func (p accountPolicy) CanCreate(ctx context.Context, actor core.Actor) *core.ServiceError {
	return nil
}

func (p accountPolicy) CanSearch(ctx context.Context, actor core.Actor) *core.ServiceError {
	if actor.Role == core.RoleAdmin || actor.Role == core.RoleSuperAdmin {
		return nil
	}
	return core.Forbidden("not allowed to list accounts")
}

func (p accountPolicy) CanCount(ctx context.Context, actor core.Actor) *core.ServiceError {
	return p.CanSearch(ctx, actor)
}

// Service exposes the account verbs.
type Service struct {
	*core.Service[User, CreateInput, UpdateInput]
}

// NewService assembles the users service.
func NewService(model core.Model[User, CreateInput, UpdateInput], logger *core.ServiceLogger) *Service {
	policy := accountPolicy{
		OwnerPolicy: core.NewOwnerPolicy[User]("users", core.PermissionTokens{
			UpdateAny: shared.PermUsersUpdateAny,
			UpdateOwn: shared.PermUsersUpdateOwn,
			DeleteAny: shared.PermUsersDeleteAny,
		}, logger),
	}

	hooks := core.Hooks[User, CreateInput, UpdateInput]{
		BeforeCreate: func(ctx context.Context, input CreateInput, actor core.Actor) (CreateInput, error) {
			hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
			if err != nil {
				return input, err
			}
			input.PasswordHash = string(hash)
			input.Password = ""
			return input, nil
		},
	}

	return &Service{
		Service: core.NewService(core.ServiceConfig[User, CreateInput, UpdateInput]{
			Name:         "users",
			Model:        model,
			Policy:       policy,
			Hooks:        hooks,
			CreateSchema: core.NewStructSchema[CreateInput](nil),
			UpdateSchema: core.NewStructSchema[UpdateInput](nil),
			Logger:       logger,
		}),
	}
}

// GetByEmail resolves an account by email.
func (s *Service) GetByEmail(ctx context.Context, actor core.Actor, email string) core.Result[User] {
	return s.GetByField(ctx, actor, core.FieldLookup{Field: "email", Value: email})
}

// Package users implements the account entity service.
package users

import (
	"time"

	"github.com/lodgelist/lodgelist/internal/core"
)

// User is a platform account. PasswordHash never crosses the API boundary.
type User struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	Name         string               `json:"name"`
	Role         core.Role            `json:"role"`
	PasswordHash string               `json:"-"`
	Active       bool                 `json:"active"`
	Lifecycle    core.LifecycleState  `json:"lifecycle_state"`
	Moderation   core.ModerationState `json:"moderation_state"`
	Visibility   core.Visibility      `json:"visibility"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	DeletedAt    *time.Time           `json:"deleted_at,omitempty"`
}

// EntityID implements core.Entity.
func (u User) EntityID() string { return u.ID }

// PermissionState implements core.Entity. An account owns itself, so the
// OWN scope resolves to "my own profile".
func (u User) PermissionState() core.EntityState {
	return core.EntityState{
		Lifecycle:  u.Lifecycle,
		Moderation: u.Moderation,
		Visibility: u.Visibility,
		OwnerID:    u.ID,
		DeletedAt:  u.DeletedAt,
	}
}

// CreateInput is the payload for registering an account. Password arrives in
// clear and is hashed by the create hook before it reaches the repository.
type CreateInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=USER HOST"`

	// PasswordHash is filled by the create hook from Password.
	PasswordHash string `json:"-"`
}

// UpdateInput is a partial profile update. Role and password changes go
// through dedicated flows, not here.
type UpdateInput struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=120"`
}

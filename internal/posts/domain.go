// Package posts implements the community post entity service: travel
// stories and guides written by users and hosts, published after review.
package posts

import (
	"time"

	"github.com/lodgelist/lodgelist/internal/core"
)

// Post is a community-authored article, optionally tied to a destination.
type Post struct {
	ID            string               `json:"id"`
	AuthorID      string               `json:"author_id"`
	DestinationID *string              `json:"destination_id,omitempty"`
	Title         string               `json:"title"`
	Slug          string               `json:"slug"`
	Body          string               `json:"body"`
	Tags          []string             `json:"tags"`
	Lifecycle     core.LifecycleState  `json:"lifecycle_state"`
	Moderation    core.ModerationState `json:"moderation_state"`
	Visibility    core.Visibility      `json:"visibility"`
	Featured      bool                 `json:"featured"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	DeletedAt     *time.Time           `json:"deleted_at,omitempty"`
}

// EntityID implements core.Entity.
func (p Post) EntityID() string { return p.ID }

// PermissionState implements core.Entity.
func (p Post) PermissionState() core.EntityState {
	return core.EntityState{
		Lifecycle:  p.Lifecycle,
		Moderation: p.Moderation,
		Visibility: p.Visibility,
		OwnerID:    p.AuthorID,
		DeletedAt:  p.DeletedAt,
	}
}

// CreateInput is the payload for writing a post. Posts enter review as
// DRAFT/PENDING and go public once published and approved.
type CreateInput struct {
	DestinationID *string  `json:"destination_id" validate:"omitempty,uuid"`
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Body          string   `json:"body" validate:"required,min=10"`
	Tags          []string `json:"tags" validate:"max=10,dive,min=1,max=40"`
	Visibility    string   `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE RESTRICTED"`

	// AuthorID and Slug are stamped by the create hook (from the actor and
	// Title respectively), never client-supplied.
	AuthorID string `json:"-"`
	Slug     string `json:"-"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title *string   `json:"title" validate:"omitempty,min=3,max=200"`
	Body  *string   `json:"body" validate:"omitempty,min=10"`
	Tags  *[]string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`

	// resetModeration is set by the update hook when a content edit sends
	// an approved post back to review.
	resetModeration bool
}

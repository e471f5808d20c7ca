// Package events implements the event entity service: happenings hosted
// inside a destination, from wine tastings to festivals.
package events

import (
	"time"

	"github.com/lodgelist/lodgelist/internal/core"
)

// Event is a scheduled happening tied to a destination.
type Event struct {
	ID            string               `json:"id"`
	DestinationID string               `json:"destination_id"`
	OwnerID       string               `json:"owner_id"`
	Title         string               `json:"title"`
	Slug          string               `json:"slug"`
	Description   string               `json:"description,omitempty"`
	Venue         string               `json:"venue,omitempty"`
	StartsAt      time.Time            `json:"starts_at"`
	EndsAt        time.Time            `json:"ends_at"`
	Capacity      int                  `json:"capacity"`
	Lifecycle     core.LifecycleState  `json:"lifecycle_state"`
	Moderation    core.ModerationState `json:"moderation_state"`
	Visibility    core.Visibility      `json:"visibility"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	DeletedAt     *time.Time           `json:"deleted_at,omitempty"`
}

// EntityID implements core.Entity.
func (e Event) EntityID() string { return e.ID }

// PermissionState implements core.Entity.
func (e Event) PermissionState() core.EntityState {
	return core.EntityState{
		Lifecycle:  e.Lifecycle,
		Moderation: e.Moderation,
		Visibility: e.Visibility,
		OwnerID:    e.OwnerID,
		DeletedAt:  e.DeletedAt,
	}
}

// CreateInput is the payload for creating an event. The schedule must be
// internally consistent: an event cannot end before it starts.
type CreateInput struct {
	DestinationID string    `json:"destination_id" validate:"required,uuid"`
	Title         string    `json:"title" validate:"required,min=3,max=160"`
	Description   string    `json:"description" validate:"max=4000"`
	Venue         string    `json:"venue" validate:"max=200"`
	StartsAt      time.Time `json:"starts_at" validate:"required"`
	EndsAt        time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Capacity      int       `json:"capacity" validate:"required,min=1,max=100000"`

	// OwnerID and Slug are stamped by the create hook (from the actor and
	// Title respectively), never client-supplied.
	OwnerID string `json:"-"`
	Slug    string `json:"-"`
}

// UpdateInput is a partial update; nil fields are left untouched. Schedule
// consistency across both ends is re-checked by the update hook, which sees
// the current record.
type UpdateInput struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=160"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	Venue       *string    `json:"venue" validate:"omitempty,max=200"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=1,max=100000"`
}

// Package destinations implements the destination entity service: the
// geographic areas listings and events are grouped under.
package destinations

import (
	"time"

	"github.com/lodgelist/lodgelist/internal/core"
)

// Destination is a curated area with a denormalized count of its live
// listings. The counter is refreshed by a background job, never inline.
type Destination struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Slug               string               `json:"slug"`
	Country            string               `json:"country"`
	Region             string               `json:"region,omitempty"`
	Description        string               `json:"description,omitempty"`
	AccommodationCount int64                `json:"accommodation_count"`
	Lifecycle          core.LifecycleState  `json:"lifecycle_state"`
	Moderation         core.ModerationState `json:"moderation_state"`
	Visibility         core.Visibility      `json:"visibility"`
	Featured           bool                 `json:"featured"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	DeletedAt          *time.Time           `json:"deleted_at,omitempty"`
}

// EntityID implements core.Entity.
func (d Destination) EntityID() string { return d.ID }

// PermissionState implements core.Entity. Destinations are curated by the
// platform, so the owner is whoever created the record.
func (d Destination) PermissionState() core.EntityState {
	return core.EntityState{
		Lifecycle:  d.Lifecycle,
		Moderation: d.Moderation,
		Visibility: d.Visibility,
		DeletedAt:  d.DeletedAt,
	}
}

// CreateInput is the payload for creating a destination.
type CreateInput struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Country     string `json:"country" validate:"required,iso3166_1_alpha2"`
	Region      string `json:"region" validate:"max=120"`
	Description string `json:"description" validate:"max=4000"`

	// Slug is derived from Name by the create hook, never client-supplied.
	Slug string `json:"-"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=120"`
	Region      *string `json:"region" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
}

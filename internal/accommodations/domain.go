// Package accommodations implements the listing entity service: stays
// offered by hosts inside a destination.
package accommodations

import (
	"time"

	"github.com/lodgelist/lodgelist/internal/core"
)

// Accommodation is a bookable stay listed by a host.
type Accommodation struct {
	ID            string               `json:"id"`
	DestinationID string               `json:"destination_id"`
	OwnerID       string               `json:"owner_id"`
	Name          string               `json:"name"`
	Slug          string               `json:"slug"`
	Summary       string               `json:"summary"`
	PricePerNight float64              `json:"price_per_night"`
	MaxGuests     int                  `json:"max_guests"`
	Amenities     []string             `json:"amenities"`
	Lifecycle     core.LifecycleState  `json:"lifecycle_state"`
	Moderation    core.ModerationState `json:"moderation_state"`
	Visibility    core.Visibility      `json:"visibility"`
	Featured      bool                 `json:"featured"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	DeletedAt     *time.Time           `json:"deleted_at,omitempty"`
}

// EntityID implements core.Entity.
func (a Accommodation) EntityID() string { return a.ID }

// PermissionState implements core.Entity.
func (a Accommodation) PermissionState() core.EntityState {
	return core.EntityState{
		Lifecycle:  a.Lifecycle,
		Moderation: a.Moderation,
		Visibility: a.Visibility,
		OwnerID:    a.OwnerID,
		DeletedAt:  a.DeletedAt,
	}
}

// CreateInput is the payload for creating a listing. New listings start in
// DRAFT/PENDING until published and approved.
type CreateInput struct {
	DestinationID string   `json:"destination_id" validate:"required,uuid"`
	Name          string   `json:"name" validate:"required,min=3,max=160"`
	Summary       string   `json:"summary" validate:"max=2000"`
	PricePerNight float64  `json:"price_per_night" validate:"required,gt=0"`
	MaxGuests     int      `json:"max_guests" validate:"required,min=1,max=64"`
	Amenities     []string `json:"amenities" validate:"max=50,dive,min=1,max=80"`
	Visibility    string   `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE RESTRICTED"`

	// OwnerID and Slug are stamped by the create hook (from the actor and
	// Name respectively), never client-supplied.
	OwnerID string `json:"-"`
	Slug    string `json:"-"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name          *string   `json:"name" validate:"omitempty,min=3,max=160"`
	Summary       *string   `json:"summary" validate:"omitempty,max=2000"`
	PricePerNight *float64  `json:"price_per_night" validate:"omitempty,gt=0"`
	MaxGuests     *int      `json:"max_guests" validate:"omitempty,min=1,max=64"`
	Amenities     *[]string `json:"amenities" validate:"omitempty,max=50,dive,min=1,max=80"`
}

package shared

import "github.com/lodgelist/lodgelist/internal/core"

// Capability tokens per entity, checked by exact membership. The OWN/ANY
// pairs feed the evaluator's scope grants.
const (
	PermAccommodationsUpdateAny  = "accommodations.update.any"
	PermAccommodationsUpdateOwn  = "accommodations.update.own"
	PermAccommodationsDeleteAny  = "accommodations.delete.any"
	PermAccommodationsDeleteOwn  = "accommodations.delete.own"
	PermAccommodationsRestoreAny = "accommodations.restore.any"
	PermAccommodationsRestoreOwn = "accommodations.restore.own"

	PermDestinationsUpdateAny  = "destinations.update.any"
	PermDestinationsDeleteAny  = "destinations.delete.any"
	PermDestinationsRestoreAny = "destinations.restore.any"

	PermEventsUpdateAny  = "events.update.any"
	PermEventsUpdateOwn  = "events.update.own"
	PermEventsDeleteAny  = "events.delete.any"
	PermEventsDeleteOwn  = "events.delete.own"
	PermEventsRestoreAny = "events.restore.any"
	PermEventsRestoreOwn = "events.restore.own"

	PermPostsUpdateAny  = "posts.update.any"
	PermPostsUpdateOwn  = "posts.update.own"
	PermPostsDeleteAny  = "posts.delete.any"
	PermPostsDeleteOwn  = "posts.delete.own"
	PermPostsRestoreAny = "posts.restore.any"
	PermPostsRestoreOwn = "posts.restore.own"

	PermUsersUpdateAny = "users.update.any"
	PermUsersUpdateOwn = "users.update.own"
	PermUsersDeleteAny = "users.delete.any"
)

// DefaultPermissions returns the token set granted to a role at login.
// Tokens only unlock the OWN/ANY scopes; the evaluator still applies
// lifecycle, moderation and ownership rules per entity.
func DefaultPermissions(role core.Role) []string {
	switch role {
	case core.RoleHost:
		return []string{
			PermAccommodationsUpdateOwn, PermAccommodationsDeleteOwn, PermAccommodationsRestoreOwn,
			PermEventsUpdateOwn, PermEventsDeleteOwn, PermEventsRestoreOwn,
			PermPostsUpdateOwn, PermPostsDeleteOwn, PermPostsRestoreOwn,
			PermUsersUpdateOwn,
		}
	case core.RoleUser:
		return []string{
			PermPostsUpdateOwn, PermPostsDeleteOwn,
			PermUsersUpdateOwn,
		}
	case core.RoleAdmin, core.RoleSuperAdmin:
		return []string{
			PermAccommodationsUpdateAny, PermAccommodationsDeleteAny, PermAccommodationsRestoreAny,
			PermDestinationsUpdateAny, PermDestinationsDeleteAny, PermDestinationsRestoreAny,
			PermEventsUpdateAny, PermEventsDeleteAny, PermEventsRestoreAny,
			PermPostsUpdateAny, PermPostsDeleteAny, PermPostsRestoreAny,
			PermUsersUpdateAny, PermUsersDeleteAny,
		}
	}
	return nil
}

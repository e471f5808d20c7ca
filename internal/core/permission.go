package core

import "time"

// Role identifies the privilege tier of an actor. Roles are a closed set with
// no implied total order; every action decides which roles qualify.
type Role string

const (
	RoleGuest      Role = "GUEST"
	RoleUser       Role = "USER"
	RoleHost       Role = "HOST"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// KnownRole reports whether r belongs to the closed role set.
func KnownRole(r Role) bool {
	switch r {
	case RoleGuest, RoleUser, RoleHost, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Actor is the caller identity for one operation. The kernel only reads it.
// An empty ID with RoleGuest denotes an anonymous caller.
type Actor struct {
	ID          string
	Role        Role
	Permissions []string
}

// Anonymous returns the public, unauthenticated actor.
func Anonymous() Actor {
	return Actor{Role: RoleGuest}
}

// HasPermission checks exact membership of a capability token.
func (a Actor) HasPermission(token string) bool {
	for _, p := range a.Permissions {
		if p == token {
			return true
		}
	}
	return false
}

// LifecycleState tracks creation/retirement of an entity.
type LifecycleState string

const (
	LifecycleDraft    LifecycleState = "DRAFT"
	LifecycleActive   LifecycleState = "ACTIVE"
	LifecycleArchived LifecycleState = "ARCHIVED"
)

// ModerationState tracks content review.
type ModerationState string

const (
	ModerationPending  ModerationState = "PENDING"
	ModerationApproved ModerationState = "APPROVED"
	ModerationRejected ModerationState = "REJECTED"
)

// Visibility tracks audience scoping.
type Visibility string

const (
	VisibilityPublic     Visibility = "PUBLIC"
	VisibilityPrivate    Visibility = "PRIVATE"
	VisibilityRestricted Visibility = "RESTRICTED"
)

// EntityState is the minimal entity snapshot the evaluator needs. The four
// axes are independent: ARCHIVED does not imply REJECTED and the evaluator
// must not assume correlations between them.
type EntityState struct {
	Lifecycle  LifecycleState
	Moderation ModerationState
	Visibility Visibility
	OwnerID    string
	DeletedAt  *time.Time
}

// Action enumerates every operation the evaluator decides on. Adding an
// action requires an explicit rule branch, never a default allow.
type Action string

const (
	ActionView       Action = "view"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionRestore    Action = "restore"
	ActionHardDelete Action = "hardDelete"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionFeature    Action = "feature"
	ActionPublish    Action = "publish"
	ActionCreate     Action = "create"
	ActionList       Action = "list"
	ActionSearch     Action = "search"
	ActionCount      Action = "count"
)

// Reason explains a permission decision. Both allows and denials carry one;
// logs and callers depend on the reason, not just the boolean.
type Reason string

const (
	ReasonSuperAdmin    Reason = "SUPER_ADMIN"
	ReasonAdmin         Reason = "ADMIN"
	ReasonOwner         Reason = "OWNER"
	ReasonPublicAccess  Reason = "PUBLIC_ACCESS"
	ReasonArchived      Reason = "ARCHIVED"
	ReasonDraft         Reason = "DRAFT"
	ReasonRejected      Reason = "REJECTED"
	ReasonPending       Reason = "PENDING"
	ReasonPrivate       Reason = "PRIVATE"
	ReasonRestricted    Reason = "RESTRICTED"
	ReasonDeleted       Reason = "DELETED"
	ReasonNotSuperAdmin Reason = "NOT_SUPER_ADMIN"
	ReasonNotAdmin      Reason = "NOT_ADMIN"
	ReasonDenied        Reason = "DENIED"
)

// Decision is the evaluator outcome.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow(reason Reason) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// ScopeGrants are pre-computed by the calling policy from the actor's
// permission tokens crossed with the action's ANY/OWN token pair. The
// evaluator never sees token names, which keeps it entity-agnostic.
type ScopeGrants struct {
	HasAny bool
	HasOwn bool
}

// Evaluate decides whether actor may perform action on an entity in the
// given state. It is pure and total: every input combination yields a
// defined Decision and denial is a value, never an error.
//
// Rules are evaluated in order; the first match wins. Order encodes
// precedence: super-admin bypass sits above the hard-delete and soft-delete
// guards on purpose.
func Evaluate(actor Actor, entity EntityState, action Action, grants ScopeGrants) Decision {
	isOwner := actor.ID != "" && actor.ID == entity.OwnerID

	// Rule 1: super admin bypasses everything, including delete guards.
	if actor.Role == RoleSuperAdmin {
		return allow(ReasonSuperAdmin)
	}

	// Rule 2: hard delete is irreversible and reserved for super admins.
	if action == ActionHardDelete {
		return deny(ReasonNotSuperAdmin)
	}

	// Rule 3: a soft-deleted entity is opaque to every action except restore.
	if entity.DeletedAt != nil && action != ActionRestore {
		return deny(ReasonDeleted)
	}

	// Rule 4: restoring an archived entity needs an explicit grant.
	if entity.Lifecycle == LifecycleArchived && action == ActionRestore {
		if grants.HasAny {
			return allow(ReasonAdmin)
		}
		if grants.HasOwn && isOwner {
			return allow(ReasonOwner)
		}
		return deny(ReasonArchived)
	}

	// Rule 5: moderation actions are admin-only regardless of ownership.
	switch action {
	case ActionApprove, ActionReject, ActionFeature, ActionPublish:
		if actor.Role == RoleAdmin {
			return allow(ReasonAdmin)
		}
		return deny(ReasonNotAdmin)
	}

	// Rule 6: mutations resolve through the ANY/OWN grant pair.
	switch action {
	case ActionUpdate, ActionDelete, ActionRestore:
		if grants.HasAny {
			return allow(ReasonAdmin)
		}
		if grants.HasOwn && isOwner {
			return allow(ReasonOwner)
		}
		return deny(ReasonDenied)
	}

	if action == ActionView {
		return evaluateView(actor, entity, isOwner)
	}

	// Rule 8: no rule matched. Explicit fallback, never implicit allow.
	return deny(ReasonDenied)
}

// evaluateView walks the lifecycle/moderation/visibility state machine for
// the non-deleted case (rule 3 already handled soft deletion).
func evaluateView(actor Actor, entity EntityState, isOwner bool) Decision {
	adminOrOwner := func(denied Reason) Decision {
		if actor.Role == RoleAdmin {
			return allow(ReasonAdmin)
		}
		if isOwner {
			return allow(ReasonOwner)
		}
		return deny(denied)
	}

	switch {
	case entity.Lifecycle == LifecycleArchived:
		return adminOrOwner(ReasonArchived)
	case entity.Lifecycle == LifecycleDraft:
		return adminOrOwner(ReasonDraft)
	case entity.Moderation == ModerationRejected:
		return adminOrOwner(ReasonRejected)
	case entity.Lifecycle == LifecycleActive && entity.Moderation == ModerationApproved:
		switch entity.Visibility {
		case VisibilityPublic:
			return allow(ReasonPublicAccess)
		case VisibilityPrivate:
			return adminOrOwner(ReasonPrivate)
		case VisibilityRestricted:
			return adminOrOwner(ReasonRestricted)
		}
		return deny(ReasonDenied)
	case entity.Lifecycle == LifecycleActive && entity.Moderation == ModerationPending:
		// RESTRICTED+PENDING behaves like PRIVATE+PENDING: admin or owner only.
		return adminOrOwner(ReasonPending)
	}

	return deny(ReasonDenied)
}

package auth

import "github.com/google/uuid"

// Role identifies a capability an authenticated principal holds.
type Role string

const (
	// RoleRenter can request and cancel bookings on plots.
	RoleRenter Role = "renter"
	// RoleOwner can list plots and approve or reject bookings on them.
	RoleOwner Role = "owner"
	// RoleAdmin can override booking state and resolve disputes.
	RoleAdmin Role = "admin"
	// RoleSystem is granted to internal callers such as event consumers.
	RoleSystem Role = "system"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	switch r {
	case RoleRenter, RoleOwner, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// RoleSet is the set of roles held by an acting principal.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles, ignoring unknown ones.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.IsValid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// ParseRoleSet builds a RoleSet from raw string claims, ignoring unknown ones.
func ParseRoleSet(raw []string) RoleSet {
	set := make(RoleSet, len(raw))
	for _, s := range raw {
		r := Role(s)
		if r.IsValid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// Has reports whether the set contains the given role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// HasAny reports whether the set contains at least one of the given roles.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Slice returns the roles as a sorted-insensitive string slice for claims.
func (s RoleSet) Slice() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	return out
}

// Actor is the acting principal for an application operation.
type Actor struct {
	ID    uuid.UUID
	Roles RoleSet
}

// SystemActor returns the internal principal used by event consumers.
func SystemActor() Actor {
	return Actor{ID: uuid.Nil, Roles: NewRoleSet(RoleSystem)}
}

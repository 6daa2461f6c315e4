package domain

import (
	"fmt"
	"strings"
)

// Role is the fixed category of a platform account.
// This is a value object: only the three constants below are valid.
type Role string

// Valid roles
const (
	RoleMember        Role = "MEMBER"
	RoleMentor        Role = "MENTOR"
	RoleAdministrator Role = "ADMINISTRATOR"
)

// Wire spellings used by the GraphQL API
const (
	wireMember        = "USER"
	wireMentor        = "MENTOR"
	wireAdministrator = "ADMIN"
)

// AllRoles lists every valid role in ascending privilege order.
func AllRoles() []Role {
	return []Role{RoleMember, RoleMentor, RoleAdministrator}
}

// ParseRole accepts either the canonical or the wire spelling of a role,
// case-insensitively. Anything else is rejected.
func ParseRole(value string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(RoleMember), wireMember:
		return RoleMember, nil
	case string(RoleMentor):
		return RoleMentor, nil
	case string(RoleAdministrator), wireAdministrator:
		return RoleAdministrator, nil
	default:
		return "", fmt.Errorf("invalid role %q: must be MEMBER, MENTOR, or ADMINISTRATOR", value)
	}
}

// Validate checks if the role is one of the closed enumeration
func (r Role) Validate() error {
	switch r {
	case RoleMember, RoleMentor, RoleAdministrator:
		return nil
	default:
		return fmt.Errorf("invalid role %q: must be MEMBER, MENTOR, or ADMINISTRATOR", string(r))
	}
}

// String returns the canonical spelling
func (r Role) String() string {
	return string(r)
}

// Wire returns the spelling the API expects in requests.
func (r Role) Wire() string {
	switch r {
	case RoleMember:
		return wireMember
	case RoleMentor:
		return wireMentor
	case RoleAdministrator:
		return wireAdministrator
	default:
		return string(r)
	}
}

// Label returns a human-friendly name for display.
func (r Role) Label() string {
	switch r {
	case RoleMember:
		return "Member"
	case RoleMentor:
		return "Mentor"
	case RoleAdministrator:
		return "Administrator"
	default:
		return "Unknown"
	}
}

// RoleSet is an unordered set of roles. The empty set means
// "any authenticated role".
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is in the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// IsEmpty reports whether the set places no role restriction.
func (s RoleSet) IsEmpty() bool {
	return len(s) == 0
}

// Roles returns the members in privilege order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles() {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

package domain

import "fmt"

// Role is the closed set of user categories governing access.
type Role string

const (
	RoleStudent     Role = "STUDENT"
	RoleCompany     Role = "COMPANY"
	RoleSchoolAdmin Role = "SCHOOL_ADMIN"
)

// AllRoles returns every known role in a stable order.
func AllRoles() []Role {
	return []Role{RoleStudent, RoleCompany, RoleSchoolAdmin}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleSchoolAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts a raw string into a Role. Matching is exact.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// RoleSet is the set of roles permitted on an endpoint.
// An empty set admits any authenticated role.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Allows reports whether r passes the set. Unknown roles never pass, even
// against an empty set.
func (s RoleSet) Allows(r Role) bool {
	if !r.Valid() {
		return false
	}
	if len(s) == 0 {
		return true
	}
	_, ok := s[r]
	return ok
}

// Roles returns the members of the set in AllRoles order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles() {
		if _, ok := s[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

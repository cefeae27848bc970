package models

import "fmt"

// Role is the closed set of roles a principal can hold.
// Employee and manager are disjoint; neither implies the other.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// Roles returns every role in declaration order
func Roles() []Role {
	return []Role{RoleEmployee, RoleManager}
}

// Valid reports whether r is a member of the closed role set
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a raw string into a Role, rejecting anything outside the closed set
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

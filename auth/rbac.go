package auth

import (
	"fmt"
	"strings"

	"github.com/Sumit07M/bg-verification-project/models"
)

// RoleSet is the statically declared set of roles allowed to reach an operation.
// Membership is exact; there is no hierarchy between roles.
type RoleSet struct {
	roles []models.Role
}

// Allow builds a RoleSet. It panics on a role outside the closed set because
// allowed-role sets are declared at program start, like a regexp.MustCompile.
func Allow(roles ...models.Role) RoleSet {
	set := RoleSet{roles: make([]models.Role, 0, len(roles))}
	for _, r := range roles {
		if !r.Valid() {
			panic(fmt.Sprintf("auth: invalid role %q in allowed set", r))
		}
		if !set.Permits(r) {
			set.roles = append(set.roles, r)
		}
	}
	return set
}

// Permits reports whether r is a member of the set
func (s RoleSet) Permits(r models.Role) bool {
	for _, allowed := range s.roles {
		if allowed == r {
			return true
		}
	}
	return false
}

// Roles returns a copy of the members
func (s RoleSet) Roles() []models.Role {
	out := make([]models.Role, len(s.roles))
	copy(out, s.roles)
	return out
}

// Strings returns the members as strings, for logging
func (s RoleSet) Strings() []string {
	out := make([]string, len(s.roles))
	for i, r := range s.roles {
		out[i] = r.String()
	}
	return out
}

// String implements fmt.Stringer
func (s RoleSet) String() string {
	return "{" + strings.Join(s.Strings(), ",") + "}"
}

// Authorize decides whether principal may reach an operation guarded by allowed.
// A nil principal means authentication never ran and yields ErrUnauthenticated,
// which is distinct from ErrForbidden for a known principal with the wrong role.
func Authorize(principal *models.Principal, allowed RoleSet) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	if !allowed.Permits(principal.Role) {
		return fmt.Errorf("%w: role %q not in %s", ErrForbidden, principal.Role, allowed)
	}
	return nil
}

package auth

import (
	"strings"

	"github.com/spec-kit/backoffice-console/internal/domain"
)

// Resolver decides whether a set of user roles satisfies the roles a
// resource declares. It is the only place the role precedence lives.
type Resolver struct {
	// OpenDefault is returned when either role set is empty and the user is
	// not an administrator. true makes undeclared resources public to any
	// signed-in user.
	OpenDefault bool
}

// NewResolver returns a resolver with the given open default.
func NewResolver(openDefault bool) Resolver {
	return Resolver{OpenDefault: openDefault}
}

var (
	sellerScopes = []string{domain.RoleSeller, domain.TagContentManagement, domain.TagProductManagement}
	userScopes   = []string{domain.RoleUser, domain.TagPublic}
)

// Resolve applies the role precedence, first match wins:
// administrators always pass; empty sets fall back to OpenDefault;
// operators pass everything except user-management; sellers and users pass
// only their scopes; any other role needs a direct intersection.
func (r Resolver) Resolve(userRoles, requiredRoles []string) bool {
	user := newRoleSet(userRoles)
	if user.has(domain.RoleSuperAdmin) || user.has(domain.RoleAdmin) {
		return true
	}

	required := newRoleSet(requiredRoles)
	if len(user) == 0 || len(required) == 0 {
		return r.OpenDefault
	}

	switch {
	case user.has(domain.RoleOperator):
		return !required.has(domain.TagUserManagement)
	case user.has(domain.RoleSeller):
		return required.hasAny(sellerScopes...)
	case user.has(domain.RoleUser):
		return required.hasAny(userScopes...)
	default:
		return required.intersects(user)
	}
}

type roleSet map[string]struct{}

func newRoleSet(roles []string) roleSet {
	set := make(roleSet, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		set[role] = struct{}{}
	}
	return set
}

func (s roleSet) has(role string) bool {
	_, ok := s[role]
	return ok
}

func (s roleSet) hasAny(roles ...string) bool {
	for _, role := range roles {
		if s.has(role) {
			return true
		}
	}
	return false
}

func (s roleSet) intersects(other roleSet) bool {
	for role := range other {
		if s.has(role) {
			return true
		}
	}
	return false
}

// Package authz evaluates access decisions for protected views.
//
// Decide is a pure function of (session, requirement): no I/O, no side
// effects, and it never fails — malformed or absent input always maps to
// a deny variant. Role and zone values are already normalized to ints by
// the time they reach this package (see consoleauth.ProfileFromResponse),
// so comparison here is plain equality.
package authz

import (
	"github.com/ispkit/consoleauth"
)

// Decide evaluates a session against a view's requirement.
//
// Order matters: a session with an in-flight login is pending, not
// denied — rendering a denial during a legitimate login would flash
// "access denied" at the user. The administrative role overrides any
// zone restriction: admins are zone-omniscient.
func Decide(s consoleauth.Session, req consoleauth.Requirement) consoleauth.Decision {
	if s.Loading {
		return consoleauth.DecisionPending
	}
	if s.User == nil {
		return consoleauth.DecisionDenyUnauthenticated
	}
	if len(req.Roles) > 0 && !hasRole(req.Roles, s.User.Role) {
		return consoleauth.DecisionDenyRole
	}
	if req.Zone != 0 && s.User.Zone != req.Zone && s.User.Role != consoleauth.RoleAdmin {
		return consoleauth.DecisionDenyZone
	}
	return consoleauth.DecisionAllow
}

func hasRole(roles []int, role int) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

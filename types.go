package consoleauth

import "net/url"

// Well-known role and zone identifiers.
//
// Role 1 is the administrative role; it is zone-omniscient and overrides
// any zone restriction. Zone 1 is the administrative/global zone — a user
// assigned to it sees records from every zone.
const (
	RoleAdmin = 1
	// RoleUser is the role assigned when the auth backend omits one.
	RoleUser = 3

	ZoneGlobal = 1
	// ZoneUnassigned is the least-privileged zone default, used when the
	// auth backend omits the zone. It matches no real zone, so a user
	// carrying it sees nothing until an operator assigns a zone.
	ZoneUnassigned = 0
)

// UserProfile is the normalized identity of an authenticated operator.
// Role and Zone are always integers here; coercion from the backend's
// loosely-typed payload happens once, in ProfileFromResponse.
type UserProfile struct {
	Username    string   `json:"username"`
	Role        int      `json:"role"`
	Zone        int      `json:"id_zone"`
	Permissions []string `json:"permissions,omitempty"`
}

// Session is the record of the current authenticated identity.
//
// Invariant: User is non-nil only if Token is non-empty. Loading is true
// only while a login or logout is in flight; observers must treat such a
// session as pending, never as denied.
type Session struct {
	Token   string
	User    *UserProfile
	Loading bool
}

// Authenticated reports whether the session carries a logged-in user.
func (s Session) Authenticated() bool { return s.User != nil }

// Requirement is the access rule a protected view declares at wiring time.
// An empty Roles set means no role restriction; Zone == 0 means no zone
// restriction.
type Requirement struct {
	Roles []int
	Zone  int
}

// Decision is the outcome of evaluating a Session against a Requirement.
type Decision int

const (
	// DecisionPending means the session has an in-flight operation; the
	// caller must wait, not render a denial.
	DecisionPending Decision = iota
	DecisionAllow
	DecisionDenyUnauthenticated
	DecisionDenyRole
	DecisionDenyZone
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllow:
		return "allow"
	case DecisionDenyUnauthenticated:
		return "deny_unauthenticated"
	case DecisionDenyRole:
		return "deny_role"
	case DecisionDenyZone:
		return "deny_zone"
	default:
		return "unknown"
	}
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool { return d == DecisionAllow }

// Scope is the data-visibility scope derived from a session. A global
// scope means "no zone filter"; otherwise every list/query/mutation must
// be restricted to exactly ZoneID.
//
// Scope is a UI-visibility rule, not a security boundary; real isolation
// must be enforced by the backend that receives the zone parameter.
type Scope struct {
	ZoneID int
	Global bool
}

// Allows reports whether a record in the given zone is addressable under
// this scope.
func (s Scope) Allows(zoneID int) bool {
	return s.Global || s.ZoneID == zoneID
}

// Query writes the zone filter into q the way the console backend expects
// it. Global scopes add nothing.
func (s Scope) Query(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if !s.Global {
		q.Set("id_zone", itoa(s.ZoneID))
	}
	return q
}

// LoginResponse is the raw payload from the auth backend's login
// operation. Role and Zone are kept untyped because the backend is known
// to return them sometimes as numbers and sometimes as numeric strings;
// ProfileFromResponse is the single place that coerces them.
type LoginResponse struct {
	Message     string   `json:"message"`
	Token       string   `json:"token,omitempty"`
	Role        any      `json:"id_role,omitempty"`
	Zone        any      `json:"id_zone,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// ListOptions holds pagination parameters for record listings.
type ListOptions struct {
	Page     int
	PageSize int
}

// Package scope derives the data-visibility scope from a session.
//
// Every list, query or mutation against subscriber or operator records
// must carry the scope returned by For. The preferred design pushes the
// zone id to the backend as a query parameter (Scope.Query); client-side
// filtering alone does not isolate anything when the bearer token is
// shared, so the records service applies the rule on both sides.
package scope

import (
	"github.com/ispkit/consoleauth"
)

// For computes the scope for a session. A user in the global zone sees
// and mutates records from every zone; everyone else is pinned to
// exactly their own zone. Unauthenticated and pending sessions get the
// zero scope, which matches no records.
func For(s consoleauth.Session) consoleauth.Scope {
	if s.Loading || s.User == nil {
		return consoleauth.Scope{}
	}
	if s.User.Zone == consoleauth.ZoneGlobal {
		return consoleauth.Scope{ZoneID: s.User.Zone, Global: true}
	}
	return consoleauth.Scope{ZoneID: s.User.Zone}
}

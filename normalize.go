package consoleauth

import (
	"encoding/json"
	"strconv"
)

// CoerceID converts a loosely-typed identifier from the backend into an
// int. The backend returns role and zone sometimes as JSON numbers and
// sometimes as numeric strings; both must compare equal downstream, so
// the conversion happens here and nowhere else. Absent or unparseable
// values map to fallback.
func CoerceID(v any, fallback int) int {
	switch t := v.(type) {
	case nil:
		return fallback
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return fallback
}

// ProfileFromResponse builds the normalized UserProfile from a raw login
// payload. fallbackZone is the zone assigned when the backend omits one;
// see authn.WithLegacyZoneDefault for the policy choice.
func ProfileFromResponse(username string, resp *LoginResponse, fallbackZone int) UserProfile {
	p := UserProfile{
		Username: username,
		Role:     CoerceID(resp.Role, RoleUser),
		Zone:     CoerceID(resp.Zone, fallbackZone),
	}
	if len(resp.Permissions) > 0 {
		p.Permissions = append([]string(nil), resp.Permissions...)
	}
	return p
}

func itoa(n int) string { return strconv.Itoa(n) }

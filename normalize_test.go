package consoleauth

import (
	"encoding/json"
	"testing"
)

func TestCoerceID(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		fallback int
		want     int
	}{
		{"int", 3, 9, 3},
		{"int32", int32(2), 9, 2},
		{"int64", int64(5), 9, 5},
		{"float64 from json", float64(1), 9, 1},
		{"json.Number", json.Number("4"), 9, 4},
		{"numeric string", "2", 9, 2},
		{"garbage string", "abc", 9, 9},
		{"empty string", "", 9, 9},
		{"nil", nil, 9, 9},
		{"bool", true, 9, 9},
		{"float truncates", 2.7, 9, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoerceID(tt.in, tt.fallback); got != tt.want {
				t.Errorf("CoerceID(%#v, %d) = %d, want %d", tt.in, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestProfileFromResponse(t *testing.T) {
	resp := &LoginResponse{
		Role:        "1",
		Zone:        float64(2),
		Permissions: []string{"clients.read", "clients.write"},
	}
	p := ProfileFromResponse("ana", resp, ZoneUnassigned)
	if p.Username != "ana" {
		t.Errorf("Username = %q, want ana", p.Username)
	}
	if p.Role != RoleAdmin {
		t.Errorf("Role = %d, want %d", p.Role, RoleAdmin)
	}
	if p.Zone != 2 {
		t.Errorf("Zone = %d, want 2", p.Zone)
	}
	if len(p.Permissions) != 2 {
		t.Errorf("Permissions = %v, want two entries", p.Permissions)
	}
}

func TestProfileFromResponse_Defaults(t *testing.T) {
	p := ProfileFromResponse("bob", &LoginResponse{}, ZoneUnassigned)
	if p.Role != RoleUser {
		t.Errorf("missing role should default to %d, got %d", RoleUser, p.Role)
	}
	if p.Zone != ZoneUnassigned {
		t.Errorf("missing zone should default to %d, got %d", ZoneUnassigned, p.Zone)
	}
}

func TestProfileFromResponse_LegacyZoneFallback(t *testing.T) {
	p := ProfileFromResponse("bob", &LoginResponse{}, ZoneGlobal)
	if p.Zone != ZoneGlobal {
		t.Errorf("fallback zone should apply when response omits zone, got %d", p.Zone)
	}
}

func TestSessionAuthenticated(t *testing.T) {
	var s Session
	if s.Authenticated() {
		t.Error("zero session should not be authenticated")
	}
	s.User = &UserProfile{Username: "ana"}
	s.Token = "tok"
	if !s.Authenticated() {
		t.Error("session with user and token should be authenticated")
	}
}

func TestScopeQuery(t *testing.T) {
	sc := Scope{ZoneID: 4}
	q := sc.Query(nil)
	if got := q.Get("id_zone"); got != "4" {
		t.Errorf("id_zone = %q, want 4", got)
	}

	global := Scope{ZoneID: ZoneGlobal, Global: true}
	if q := global.Query(nil); q.Get("id_zone") != "" {
		t.Error("global scope should not constrain the query")
	}
}

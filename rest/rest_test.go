package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ispkit/consoleauth"
)

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["username"] != "alice" || creds["password"] != "s3cret" {
			t.Errorf("unexpected credentials %v", creds)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":     "Login successful",
			"id_role":     1,
			"id_zone":     2,
			"permissions": []string{"users:write"},
			"token":       "srv-token",
		})
	}))
	defer srv.Close()

	b := New(srv.URL)
	resp, err := b.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.Token != "srv-token" {
		t.Errorf("Token = %q, want srv-token", resp.Token)
	}
	if consoleauth.CoerceID(resp.Role, 0) != 1 || consoleauth.CoerceID(resp.Zone, 0) != 2 {
		t.Errorf("raw role/zone mismatch: %v / %v", resp.Role, resp.Zone)
	}
	if len(resp.Permissions) != 1 || resp.Permissions[0] != "users:write" {
		t.Errorf("permissions mismatch: %v", resp.Permissions)
	}
}

func TestLogin_StringRoleSurvivesDecoding(t *testing.T) {
	// The backend is known to return id_role/id_zone as numeric strings;
	// the raw payload must keep them untouched for boundary coercion.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Login successful","id_role":"3","id_zone":"2"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Login(context.Background(), "bob", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if _, ok := resp.Role.(string); !ok {
		t.Errorf("Role should decode as string, got %T", resp.Role)
	}
	if consoleauth.CoerceID(resp.Role, 0) != 3 {
		t.Errorf("coerced role = %d, want 3", consoleauth.CoerceID(resp.Role, 0))
	}
}

func TestLogin_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, consoleauth.ErrCredentialsInvalid) {
		t.Fatalf("err = %v, want ErrCredentialsInvalid", err)
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, consoleauth.ErrCredentialsInvalid) {
		t.Fatalf("err = %v, want ErrCredentialsInvalid", err)
	}
}

func TestLogin_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "alice", "pw")
	if !errors.Is(err, consoleauth.ErrBackendUnreachable) {
		t.Fatalf("err = %v, want ErrBackendUnreachable", err)
	}
}

func TestLogin_Unreachable(t *testing.T) {
	b := New("http://127.0.0.1:1")
	_, err := b.Login(context.Background(), "alice", "pw")
	if !errors.Is(err, consoleauth.ErrBackendUnreachable) {
		t.Fatalf("err = %v, want ErrBackendUnreachable", err)
	}
}

func TestReportError(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/error" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = body["message"]
	}))
	defer srv.Close()

	if err := New(srv.URL).ReportError(context.Background(), "login blew up"); err != nil {
		t.Fatalf("ReportError returned error: %v", err)
	}
	if got != "login blew up" {
		t.Errorf("reported message = %q", got)
	}
}

func TestLogout_NoEndpoint(t *testing.T) {
	// No server at all: logout must still succeed, it is client-only.
	if err := New("http://127.0.0.1:1").Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
}

// Package rest implements consoleauth.AuthBackend against the console's
// HTTP API.
//
// The login contract is POST /auth/login with a JSON credential pair; a
// successful response carries message "Login successful" plus optional
// id_role, id_zone, permissions and token fields. The API has no logout
// endpoint — sign-out is client-only — and exposes a best-effort error
// sink at POST /auth/error.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ispkit/consoleauth"
)

// successMessage is the backend's login success marker.
const successMessage = "Login successful"

// Backend implements consoleauth.AuthBackend over HTTP.
type Backend struct {
	baseURL    string
	httpClient *http.Client
}

var _ consoleauth.AuthBackend = (*Backend)(nil)

// Option configures the Backend.
type Option func(*Backend)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Backend) { b.httpClient = c }
}

// New creates a REST auth backend for the given base URL.
func New(baseURL string, opts ...Option) *Backend {
	b := &Backend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for the raw login payload.
func (b *Backend) Login(ctx context.Context, username, password string) (*consoleauth.LoginResponse, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("consoleauth/rest: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("consoleauth/rest: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", consoleauth.ErrBackendUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", consoleauth.ErrBackendUnreachable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: backend returned %d", consoleauth.ErrCredentialsInvalid, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: backend returned %d", consoleauth.ErrBackendUnreachable, resp.StatusCode)
	}

	var payload consoleauth.LoginResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", consoleauth.ErrBackendUnreachable, err)
	}
	if payload.Message != successMessage {
		return nil, fmt.Errorf("%w: %s", consoleauth.ErrCredentialsInvalid, payload.Message)
	}
	return &payload, nil
}

// Logout is a local no-op: the API has no logout endpoint, so sign-out
// consists entirely of clearing client state.
func (b *Backend) Logout(_ context.Context) error { return nil }

// ReportError posts a message to the backend's error sink. The caller
// treats this as fire-and-forget; any failure here is the caller's to
// swallow.
func (b *Backend) ReportError(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return fmt.Errorf("consoleauth/rest: encode error report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/auth/error", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("consoleauth/rest: create error report: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("consoleauth/rest: send error report: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("consoleauth/rest: error sink returned %d", resp.StatusCode)
	}
	return nil
}

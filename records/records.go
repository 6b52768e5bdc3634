// Package records provides zone-scoped access to the console's
// subscriber and operator records.
//
// Every operation derives its data-visibility scope from the request
// context (placed there by a route guard) and enforces it on both sides
// of the backend call: the zone filter is pushed down as a parameter,
// and returned rows are filtered again so a backend that ignores the
// parameter cannot widen what the caller sees. Mutations addressing a
// record outside the scope fail with ErrZoneForbidden before the
// backend is ever called. This is a visibility rule, not a security
// boundary — the backend must enforce real isolation itself.
package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/ispkit/consoleauth"
	"github.com/ispkit/consoleauth/audit"
)

// ErrZoneForbidden means the operation addressed a record outside the
// caller's zone scope.
var ErrZoneForbidden = errors.New("consoleauth/records: record outside caller's zone")

// Subscriber is a client record in the console.
type Subscriber struct {
	IDNumber string `json:"id_number"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Status   string `json:"status"`
	ZoneID   int    `json:"id_zone"`
}

// Operator is an operator (console user) record.
type Operator struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     int    `json:"id_role"`
	ZoneID   int    `json:"id_zone"`
}

// Backend defines the contract for the console's record API.
// The scope's zone filter travels to the backend as a parameter; see
// consoleauth.Scope.Query for the wire form.
type Backend interface {
	ListSubscribers(ctx context.Context, scope consoleauth.Scope, opts consoleauth.ListOptions) ([]*Subscriber, int, error)
	GetSubscriber(ctx context.Context, idNumber string) (*Subscriber, error)
	CreateSubscriber(ctx context.Context, sub *Subscriber) error
	UpdateSubscriberStatus(ctx context.Context, idNumber, status string) error
	DeleteSubscriber(ctx context.Context, idNumber string) error

	ListOperators(ctx context.Context, scope consoleauth.Scope, opts consoleauth.ListOptions) ([]*Operator, int, error)
	CreateOperator(ctx context.Context, op *Operator) error
	UpdateOperator(ctx context.Context, op *Operator) error
	DeleteOperator(ctx context.Context, id int, zoneID int) error
}

// Service enforces zone scoping over a pluggable backend.
type Service struct {
	backend Backend
	audit   *audit.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithAudit records scope violations to the audit log.
func WithAudit(l *audit.Logger) Option {
	return func(s *Service) { s.audit = l }
}

// New creates a record service over the given backend.
func New(backend Backend, opts ...Option) *Service {
	s := &Service{backend: backend}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListSubscribers returns the subscribers visible under the caller's
// scope, paginated.
func (s *Service) ListSubscribers(ctx context.Context, opts consoleauth.ListOptions) ([]*Subscriber, int, error) {
	sc := consoleauth.ScopeFromContext(ctx)
	subs, total, err := s.backend.ListSubscribers(ctx, sc, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("consoleauth/records: %w", err)
	}
	if sc.Global {
		return subs, total, nil
	}
	// Filter again locally: a backend that ignored the zone parameter
	// must not widen visibility.
	filtered := subs[:0]
	for _, sub := range subs {
		if sc.Allows(sub.ZoneID) {
			filtered = append(filtered, sub)
		}
	}
	if len(filtered) != len(subs) {
		total -= len(subs) - len(filtered)
	}
	return filtered, total, nil
}

// GetSubscriber returns a single subscriber if it is within scope.
func (s *Service) GetSubscriber(ctx context.Context, idNumber string) (*Subscriber, error) {
	if idNumber == "" {
		return nil, fmt.Errorf("consoleauth/records: idNumber cannot be empty")
	}
	sub, err := s.backend.GetSubscriber(ctx, idNumber)
	if err != nil {
		return nil, fmt.Errorf("consoleauth/records: %w", err)
	}
	if err := s.checkZone(ctx, sub.ZoneID); err != nil {
		return nil, err
	}
	return sub, nil
}

// CreateSubscriber creates a subscriber inside the caller's scope.
// Non-global callers may only create records in their own zone.
func (s *Service) CreateSubscriber(ctx context.Context, sub *Subscriber) error {
	if err := s.checkZone(ctx, sub.ZoneID); err != nil {
		return err
	}
	if err := s.backend.CreateSubscriber(ctx, sub); err != nil {
		return fmt.Errorf("consoleauth/records: %w", err)
	}
	return nil
}

// UpdateSubscriberStatus changes a subscriber's status after verifying
// the record is within scope.
func (s *Service) UpdateSubscriberStatus(ctx context.Context, idNumber, status string) error {
	if _, err := s.GetSubscriber(ctx, idNumber); err != nil {
		return err
	}
	if err := s.backend.UpdateSubscriberStatus(ctx, idNumber, status); err != nil {
		return fmt.Errorf("consoleauth/records: %w", err)
	}
	return nil
}

// DeleteSubscriber removes a subscriber after verifying the record is
// within scope.
func (s *Service) DeleteSubscriber(ctx context.Context, idNumber string) error {
	if _, err := s.GetSubscriber(ctx, idNumber); err != nil {
		return err
	}
	if err := s.backend.DeleteSubscriber(ctx, idNumber); err != nil {
		return fmt.Errorf("consoleauth/records: %w", err)
	}
	return nil
}

// ListOperators returns the operators visible under the caller's scope.
func (s *Service) ListOperators(ctx context.Context, opts consoleauth.ListOptions) ([]*Operator, int, error) {
	sc := consoleauth.ScopeFromContext(ctx)
	ops, total, err := s.backend.ListOperators(ctx, sc, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("consoleauth/records: %w", err)
	}
	if sc.Global {
		return ops, total, nil
	}
	filtered := ops[:0]
	for _, op := range ops {
		if sc.Allows(op.ZoneID) {
			filtered = append(filtered, op)
		}
	}
	if len(filtered) != len(ops) {
		total -= len(ops) - len(filtered)
	}
	return filtered, total, nil
}

// CreateOperator creates an operator account inside the caller's scope.
func (s *Service) CreateOperator(ctx context.Context, op *Operator) error {
	if err := s.checkZone(ctx, op.ZoneID); err != nil {
		return err
	}
	if err := s.backend.CreateOperator(ctx, op); err != nil {
		return fmt.Errorf("consoleauth/records: %w", err)
	}
	return nil
}

// UpdateOperator updates an operator account inside the caller's scope.
func (s *Service) UpdateOperator(ctx context.Context, op *Operator) error {
	if err := s.checkZone(ctx, op.ZoneID); err != nil {
		return err
	}
	if err := s.backend.UpdateOperator(ctx, op); err != nil {
		return fmt.Errorf("consoleauth/records: %w", err)
	}
	return nil
}

// DeleteOperator removes an operator account inside the caller's scope.
func (s *Service) DeleteOperator(ctx context.Context, id int, zoneID int) error {
	if err := s.checkZone(ctx, zoneID); err != nil {
		return err
	}
	if err := s.backend.DeleteOperator(ctx, id, zoneID); err != nil {
		return fmt.Errorf("consoleauth/records: %w", err)
	}
	return nil
}

// checkZone rejects operations addressing a zone outside the caller's
// scope.
func (s *Service) checkZone(ctx context.Context, zoneID int) error {
	sc := consoleauth.ScopeFromContext(ctx)
	if sc.Allows(zoneID) {
		return nil
	}
	if s.audit != nil {
		sess := consoleauth.SessionFromContext(ctx)
		e := audit.Event{
			Action: audit.ActionScopeViolation,
			Zone:   zoneID,
			Result: "denied",
		}
		if sess.User != nil {
			e.Username = sess.User.Username
			e.Role = sess.User.Role
		}
		s.audit.Log(e)
	}
	return ErrZoneForbidden
}

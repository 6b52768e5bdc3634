package records

import (
	"context"
	"errors"
	"testing"

	"github.com/ispkit/consoleauth"
	"github.com/ispkit/consoleauth/audit"
)

// mockBackend implements Backend for testing.
type mockBackend struct {
	subscribers []*Subscriber
	operators   []*Operator
	lastScope   consoleauth.Scope
	statusCalls int
	deleteCalls int
	shouldFail  bool
}

func (m *mockBackend) ListSubscribers(ctx context.Context, scope consoleauth.Scope, opts consoleauth.ListOptions) ([]*Subscriber, int, error) {
	if m.shouldFail {
		return nil, 0, errors.New("list failed")
	}
	m.lastScope = scope
	return m.subscribers, len(m.subscribers), nil
}

func (m *mockBackend) GetSubscriber(ctx context.Context, idNumber string) (*Subscriber, error) {
	for _, s := range m.subscribers {
		if s.IDNumber == idNumber {
			return s, nil
		}
	}
	return nil, errors.New("subscriber not found")
}

func (m *mockBackend) CreateSubscriber(ctx context.Context, sub *Subscriber) error {
	m.subscribers = append(m.subscribers, sub)
	return nil
}

func (m *mockBackend) UpdateSubscriberStatus(ctx context.Context, idNumber, status string) error {
	m.statusCalls++
	return nil
}

func (m *mockBackend) DeleteSubscriber(ctx context.Context, idNumber string) error {
	m.deleteCalls++
	return nil
}

func (m *mockBackend) ListOperators(ctx context.Context, scope consoleauth.Scope, opts consoleauth.ListOptions) ([]*Operator, int, error) {
	m.lastScope = scope
	return m.operators, len(m.operators), nil
}

func (m *mockBackend) CreateOperator(ctx context.Context, op *Operator) error { return nil }
func (m *mockBackend) UpdateOperator(ctx context.Context, op *Operator) error { return nil }
func (m *mockBackend) DeleteOperator(ctx context.Context, id int, zoneID int) error {
	m.deleteCalls++
	return nil
}

func scoped(zoneID int, global bool) context.Context {
	return consoleauth.WithScope(context.Background(), consoleauth.Scope{ZoneID: zoneID, Global: global})
}

func TestListSubscribers_PushesZoneToBackend(t *testing.T) {
	backend := &mockBackend{subscribers: []*Subscriber{
		{IDNumber: "100", Name: "Ana", ZoneID: 2},
	}}
	svc := New(backend)

	subs, total, err := svc.ListSubscribers(scoped(2, false), consoleauth.ListOptions{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListSubscribers returned error: %v", err)
	}
	if backend.lastScope.ZoneID != 2 || backend.lastScope.Global {
		t.Errorf("scope not pushed to backend: %+v", backend.lastScope)
	}
	if len(subs) != 1 || total != 1 {
		t.Errorf("got %d/%d, want 1/1", len(subs), total)
	}
}

func TestListSubscribers_FiltersBackendOverreach(t *testing.T) {
	// A backend that ignores the zone parameter must not widen what the
	// caller sees.
	backend := &mockBackend{subscribers: []*Subscriber{
		{IDNumber: "100", ZoneID: 2},
		{IDNumber: "200", ZoneID: 5},
		{IDNumber: "300", ZoneID: 2},
	}}
	svc := New(backend)

	subs, total, err := svc.ListSubscribers(scoped(2, false), consoleauth.ListOptions{})
	if err != nil {
		t.Fatalf("ListSubscribers returned error: %v", err)
	}
	if len(subs) != 2 || total != 2 {
		t.Fatalf("got %d/%d rows, want 2/2 after filtering", len(subs), total)
	}
	for _, s := range subs {
		if s.ZoneID != 2 {
			t.Errorf("row from zone %d leaked through", s.ZoneID)
		}
	}
}

func TestListSubscribers_GlobalSeesAll(t *testing.T) {
	backend := &mockBackend{subscribers: []*Subscriber{
		{IDNumber: "100", ZoneID: 2},
		{IDNumber: "200", ZoneID: 5},
	}}
	svc := New(backend)

	subs, _, err := svc.ListSubscribers(scoped(1, true), consoleauth.ListOptions{})
	if err != nil {
		t.Fatalf("ListSubscribers returned error: %v", err)
	}
	if len(subs) != 2 {
		t.Errorf("global scope should see all zones, got %d rows", len(subs))
	}
}

func TestListSubscribers_NoScopeSeesNothing(t *testing.T) {
	// A context without a guard-provided scope matches no records.
	backend := &mockBackend{subscribers: []*Subscriber{{IDNumber: "100", ZoneID: 2}}}
	svc := New(backend)

	subs, _, err := svc.ListSubscribers(context.Background(), consoleauth.ListOptions{})
	if err != nil {
		t.Fatalf("ListSubscribers returned error: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("scopeless context should see nothing, got %d rows", len(subs))
	}
}

func TestGetSubscriber_CrossZoneDenied(t *testing.T) {
	backend := &mockBackend{subscribers: []*Subscriber{{IDNumber: "100", ZoneID: 5}}}
	svc := New(backend)

	_, err := svc.GetSubscriber(scoped(2, false), "100")
	if !errors.Is(err, ErrZoneForbidden) {
		t.Fatalf("err = %v, want ErrZoneForbidden", err)
	}
}

func TestUpdateSubscriberStatus_CrossZoneDeniedBeforeBackend(t *testing.T) {
	backend := &mockBackend{subscribers: []*Subscriber{{IDNumber: "100", ZoneID: 5}}}
	svc := New(backend)

	err := svc.UpdateSubscriberStatus(scoped(2, false), "100", "suspended")
	if !errors.Is(err, ErrZoneForbidden) {
		t.Fatalf("err = %v, want ErrZoneForbidden", err)
	}
	if backend.statusCalls != 0 {
		t.Error("backend mutation must not run for an out-of-scope record")
	}
}

func TestUpdateSubscriberStatus_InZone(t *testing.T) {
	backend := &mockBackend{subscribers: []*Subscriber{{IDNumber: "100", ZoneID: 2}}}
	svc := New(backend)

	if err := svc.UpdateSubscriberStatus(scoped(2, false), "100", "suspended"); err != nil {
		t.Fatalf("UpdateSubscriberStatus returned error: %v", err)
	}
	if backend.statusCalls != 1 {
		t.Error("backend mutation should have run")
	}
}

func TestDeleteSubscriber_GlobalCanCrossZones(t *testing.T) {
	backend := &mockBackend{subscribers: []*Subscriber{{IDNumber: "100", ZoneID: 5}}}
	svc := New(backend)

	if err := svc.DeleteSubscriber(scoped(1, true), "100"); err != nil {
		t.Fatalf("DeleteSubscriber returned error: %v", err)
	}
	if backend.deleteCalls != 1 {
		t.Error("global scope should be able to delete across zones")
	}
}

func TestCreateOperator_CrossZoneDenied(t *testing.T) {
	backend := &mockBackend{}
	svc := New(backend)

	err := svc.CreateOperator(scoped(2, false), &Operator{Username: "eve", Role: 3, ZoneID: 5})
	if !errors.Is(err, ErrZoneForbidden) {
		t.Fatalf("err = %v, want ErrZoneForbidden", err)
	}
}

func TestScopeViolation_Audited(t *testing.T) {
	events := make(chan audit.Event, 1)
	logger := audit.New(10, audit.WithHandler(func(e audit.Event) { events <- e }))

	backend := &mockBackend{}
	svc := New(backend, WithAudit(logger))

	ctx := scoped(2, false)
	ctx = consoleauth.WithSession(ctx, consoleauth.Session{
		Token: "tok",
		User:  &consoleauth.UserProfile{Username: "eve", Role: 3, Zone: 2},
	})
	_ = svc.CreateOperator(ctx, &Operator{Username: "x", ZoneID: 5})
	_ = logger.Close()

	e := <-events
	if e.Action != audit.ActionScopeViolation || e.Username != "eve" || e.Zone != 5 {
		t.Errorf("unexpected audit event %+v", e)
	}
}

func TestGetSubscriber_EmptyID(t *testing.T) {
	svc := New(&mockBackend{})
	if _, err := svc.GetSubscriber(scoped(2, false), ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}

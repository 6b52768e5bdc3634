package metrics

import "testing"

// promauto panics on duplicate registration, so only one test may build
// an enabled Metrics against the default registry.
func TestEnabled(t *testing.T) {
	m := New(true)

	m.RecordLogin()
	m.RecordLoginFailure("credentials")
	m.RecordLoginFailure("transport")
	m.RecordDecision("allow", 0.001)
	m.RecordDecision("deny_role", 0.002)
	m.RecordStoreFailure("save")
	m.RecordRestore("hit")
	m.RecordRestore("miss")

	if !m.enabled {
		t.Error("metrics should be enabled")
	}
}

func TestDisabledIsNoOp(t *testing.T) {
	m := New(false)

	// Every recorder must be callable without having registered anything.
	m.RecordLogin()
	m.RecordLoginFailure("credentials")
	m.RecordDecision("allow", 0.001)
	m.RecordStoreFailure("restore")
	m.RecordRestore("error")

	if m.enabled {
		t.Error("metrics should be disabled")
	}
	if m.loginsTotal != nil {
		t.Error("disabled metrics should not allocate collectors")
	}
}

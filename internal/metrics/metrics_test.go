package metrics

import "testing"

func TestNewRegistersWithoutPanicking(t *testing.T) {
	m := New()
	if m.Registry == nil {
		t.Fatal("expected a non-nil registry")
	}

	m.ActiveGames.Inc()
	m.MovesProcessed.WithLabelValues("mister_x").Inc()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("unexpected error gathering metrics: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected at least one registered metric family")
	}
}

func TestRepeatedConstructionDoesNotCollide(t *testing.T) {
	// Constructing Metrics twice must not panic with a duplicate-collector
	// registration error: each New() call owns its own registry.
	_ = New()
	_ = New()
}

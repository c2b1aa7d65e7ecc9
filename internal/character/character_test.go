package character

import (
	"testing"

	"github.com/scotlandyard/server/internal/mapmodel"
)

func TestDetectiveStartsAtStartStation(t *testing.T) {
	d := NewDetective("red", 5, DefaultRules)
	if d.CurrentStation() != 5 {
		t.Errorf("expected start station 5, got %d", d.CurrentStation())
	}
	if len(d.ActionHistory()) != 0 {
		t.Error("expected empty history initially")
	}
}

func TestDetectiveRemainingTicketsDecrementOnAppend(t *testing.T) {
	rules := Rules{InitialTaxi: 2, InitialBus: 1, InitialUnderground: 1}
	d := NewDetective("red", 1, rules)

	d.Append(2, mapmodel.DetectiveTaxi)
	if d.RemainingTaxi() != 1 {
		t.Errorf("expected 1 remaining taxi ticket, got %d", d.RemainingTaxi())
	}
	if d.CurrentStation() != 2 {
		t.Errorf("expected current station 2, got %d", d.CurrentStation())
	}

	d.Append(3, mapmodel.DetectiveTaxi)
	if d.RemainingTaxi() != 0 {
		t.Errorf("expected 0 remaining taxi tickets, got %d", d.RemainingTaxi())
	}
	if d.CanPerform(mapmodel.DetectiveTaxi) {
		t.Error("expected CanPerform(taxi) to be false with no tickets left")
	}
}

func TestDetectiveTrimToOverwriteSemantics(t *testing.T) {
	d := NewDetective("red", 1, DefaultRules)
	d.Append(2, mapmodel.DetectiveTaxi) // round 0

	d.TrimTo(0) // resubmitting within round 0 should drop the speculative entry
	if d.CurrentStation() != 1 {
		t.Errorf("expected TrimTo to revert to station 1, got %d", d.CurrentStation())
	}

	d.Append(2, mapmodel.DetectiveTaxi)
	d.TrimTo(1) // history length (1) does not exceed round (1): nothing to trim
	if d.CurrentStation() != 2 {
		t.Errorf("expected history to survive TrimTo(1), got station %d", d.CurrentStation())
	}
}

func TestMisterXRemainingHiddenAndDouble(t *testing.T) {
	rules := Rules{InitialHidden: 2, InitialDouble: 1}
	x := NewMisterX(1, rules)

	x.Append(MisterXMove{Station: 2, Action: mapmodel.MisterXHidden})
	if x.RemainingHidden() != 1 {
		t.Errorf("expected 1 remaining hidden token, got %d", x.RemainingHidden())
	}

	x.Append(
		MisterXMove{Station: 3, Action: mapmodel.MisterXTaxi},
		MisterXMove{Station: 4, Action: mapmodel.MisterXBus},
	)
	if x.RemainingDouble() != 0 {
		t.Errorf("expected 0 remaining double-move tokens after a double step, got %d", x.RemainingDouble())
	}
	if x.CurrentStation() != 4 {
		t.Errorf("expected current station 4 after the double step, got %d", x.CurrentStation())
	}
}

func TestMisterXCanPerformGatesHiddenOnly(t *testing.T) {
	x := NewMisterX(1, Rules{InitialHidden: 0})
	if x.CanPerform(mapmodel.MisterXHidden) {
		t.Error("expected CanPerform(hidden) false with zero hidden tokens")
	}
	if !x.CanPerform(mapmodel.MisterXTaxi) {
		t.Error("expected CanPerform(taxi) true regardless of hidden tokens")
	}
}

func TestMisterXTrimToDropsLastStep(t *testing.T) {
	x := NewMisterX(1, DefaultRules)
	x.Append(MisterXMove{Station: 2, Action: mapmodel.MisterXTaxi})

	x.TrimTo(0)
	if x.CurrentStation() != 1 {
		t.Errorf("expected TrimTo to revert to start station, got %d", x.CurrentStation())
	}
}

func TestMisterXAbilitiesReflectsRemainingHidden(t *testing.T) {
	x := NewMisterX(1, Rules{InitialHidden: 2})
	x.Append(MisterXMove{Station: 2, Action: mapmodel.MisterXHidden})

	if x.Abilities().Hidden != 1 {
		t.Errorf("expected Abilities().Hidden == 1, got %d", x.Abilities().Hidden)
	}
}

// Package character holds per-role player state: current station, move
// history, and the remaining-resource bookkeeping that governs which moves
// are legal. Detective and Mister X are two concrete types with parallel
// method sets (CurrentStation, ActionHistory, CanPerform, Append, TrimTo)
// rather than an inheritance hierarchy. No shared Go interface is declared:
// ActionHistory, CanPerform and Append take or return role-specific types.
package character

import "github.com/scotlandyard/server/internal/mapmodel"

// Rules carries the injected, overridable game constants (spec.md §6.3 /
// §9 design note: "global constants must be injected, not compiled in").
type Rules struct {
	InitialTaxi        int
	InitialBus         int
	InitialUnderground int
	InitialHidden      int
	InitialDouble      int
}

// DefaultRules are the production constants from spec.md §6.3.
var DefaultRules = Rules{
	InitialTaxi:        10,
	InitialBus:         8,
	InitialUnderground: 4,
	InitialHidden:      2,
	InitialDouble:      2,
}

// DetectiveHistoryEntry is one accepted move in a detective's history.
type DetectiveHistoryEntry struct {
	Station uint8
	Action  mapmodel.DetectiveAction
}

// Detective tracks one detective's starting station, color and move history.
type Detective struct {
	Color   string
	Start   uint8
	History []DetectiveHistoryEntry
	rules   Rules
}

// NewDetective creates a detective at its starting station under the given rules.
func NewDetective(color string, start uint8, rules Rules) *Detective {
	return &Detective{Color: color, Start: start, rules: rules}
}

// CurrentStation is the detective's last history entry's station, or its
// start station if it has not moved yet.
func (d *Detective) CurrentStation() uint8 {
	if len(d.History) == 0 {
		return d.Start
	}
	return d.History[len(d.History)-1].Station
}

// ActionHistory returns the ordered actions taken so far.
func (d *Detective) ActionHistory() []DetectiveHistoryEntry {
	return append([]DetectiveHistoryEntry(nil), d.History...)
}

func (d *Detective) usedCount(action mapmodel.DetectiveAction) int {
	n := 0
	for _, h := range d.History {
		if h.Action == action {
			n++
		}
	}
	return n
}

// RemainingTaxi, RemainingBus, RemainingUnderground are the derived per-mode
// ticket counters: initial count minus usage in history.
func (d *Detective) RemainingTaxi() int {
	return d.rules.InitialTaxi - d.usedCount(mapmodel.DetectiveTaxi)
}

func (d *Detective) RemainingBus() int {
	return d.rules.InitialBus - d.usedCount(mapmodel.DetectiveBus)
}

func (d *Detective) RemainingUnderground() int {
	return d.rules.InitialUnderground - d.usedCount(mapmodel.DetectiveUnderground)
}

// RemainingTickets packages the three counters for mapmodel.ValidDetectiveMoves.
func (d *Detective) RemainingTickets() mapmodel.RemainingTickets {
	return mapmodel.RemainingTickets{
		Taxi:        d.RemainingTaxi(),
		Bus:         d.RemainingBus(),
		Underground: d.RemainingUnderground(),
	}
}

// CanPerform reports whether the detective has a ticket left for the given action.
func (d *Detective) CanPerform(action mapmodel.DetectiveAction) bool {
	switch action {
	case mapmodel.DetectiveTaxi:
		return d.RemainingTaxi() > 0
	case mapmodel.DetectiveBus:
		return d.RemainingBus() > 0
	case mapmodel.DetectiveUnderground:
		return d.RemainingUnderground() > 0
	default:
		return false
	}
}

// Append records an accepted move.
func (d *Detective) Append(station uint8, action mapmodel.DetectiveAction) {
	d.History = append(d.History, DetectiveHistoryEntry{Station: station, Action: action})
}

// TrimTo drops the last history entry iff its length exceeds round, supporting
// overwrite semantics when a player resubmits a move within the same turn.
func (d *Detective) TrimTo(round int) {
	if len(d.History) > round {
		d.History = d.History[:len(d.History)-1]
	}
}

// MisterXMove is one half-move: a destination station and the action used to
// reach it.
type MisterXMove struct {
	Station uint8
	Action  mapmodel.MisterXAction
}

// MisterXStep is one round's worth of Mister X movement: either a single move
// or, when a double-move token is spent, two back-to-back moves.
type MisterXStep struct {
	Moves []MisterXMove // length 1 or 2
}

// MisterX tracks Mister X's starting station and move history.
type MisterX struct {
	Start   uint8
	History []MisterXStep
	rules   Rules
}

// NewMisterX creates Mister X at its starting station under the given rules.
func NewMisterX(start uint8, rules Rules) *MisterX {
	return &MisterX{Start: start, rules: rules}
}

// CurrentStation is the destination of the last recorded move, or the start
// station if Mister X has not moved yet.
func (x *MisterX) CurrentStation() uint8 {
	if len(x.History) == 0 {
		return x.Start
	}
	last := x.History[len(x.History)-1]
	return last.Moves[len(last.Moves)-1].Station
}

// ActionHistory returns the ordered steps taken so far.
func (x *MisterX) ActionHistory() []MisterXStep {
	return append([]MisterXStep(nil), x.History...)
}

// RemainingHidden is the initial hidden-token count minus every hidden move
// used across all steps (a double step can spend up to two).
func (x *MisterX) RemainingHidden() int {
	used := 0
	for _, step := range x.History {
		for _, mv := range step.Moves {
			if mv.Action == mapmodel.MisterXHidden {
				used++
			}
		}
	}
	return x.rules.InitialHidden - used
}

// RemainingDouble is the initial double-move token count minus the number of
// two-move steps taken.
func (x *MisterX) RemainingDouble() int {
	used := 0
	for _, step := range x.History {
		if len(step.Moves) == 2 {
			used++
		}
	}
	return x.rules.InitialDouble - used
}

// CanPerform reports whether Mister X may use the given action right now.
// Ordinary transport actions are always available; hidden requires a
// remaining hidden token.
func (x *MisterX) CanPerform(action mapmodel.MisterXAction) bool {
	if action == mapmodel.MisterXHidden {
		return x.RemainingHidden() > 0
	}
	return true
}

// Append records an accepted step (one or two moves).
func (x *MisterX) Append(moves ...MisterXMove) {
	x.History = append(x.History, MisterXStep{Moves: append([]MisterXMove(nil), moves...)})
}

// TrimTo drops the last history entry iff its length exceeds round.
func (x *MisterX) TrimTo(round int) {
	if len(x.History) > round {
		x.History = x.History[:len(x.History)-1]
	}
}

// Abilities packages Mister X's current ability counters for
// mapmodel.ValidMisterXMoves.
func (x *MisterX) Abilities() mapmodel.Abilities {
	return mapmodel.Abilities{Hidden: x.RemainingHidden()}
}

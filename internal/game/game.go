// Package game implements the per-lobby game-session state machine: move
// validation against the transport graph, round cadence, termination
// detection, replay construction, and event emission to an abstract
// listener. It holds no knowledge of the wire protocol or the network layer.
package game

import (
	"errors"
	"fmt"

	"github.com/scotlandyard/server/internal/character"
	"github.com/scotlandyard/server/internal/mapmodel"
)

// Role identifies whose turn it is.
type Role string

const (
	RoleMisterX   Role = "mister_x"
	RoleDetective Role = "detective"
)

var (
	// ErrInvalidMove is returned by MoveMisterX/MoveDetective when the
	// submitted move fails validation; the move is not appended. A tentative
	// move submitted earlier in the same turn has already been discarded by
	// TrimTo, which runs before validation.
	ErrInvalidMove = errors.New("invalid move")
	// ErrNotAllMoved is returned by EndMove when not every required actor
	// has moved yet.
	ErrNotAllMoved = errors.New("not all players have moved")
	// ErrUnknownColor is returned when a detective color does not exist in
	// this game.
	ErrUnknownColor = errors.New("unknown detective color")
	// ErrGameEnded is returned by any mutating operation once the game has
	// terminated.
	ErrGameEnded = errors.New("game has ended")
)

// Listener receives every observable event from a session. The session
// performs its state mutation, invokes the corresponding listener method,
// then returns — listener calls are always sequential with the mutation
// that triggered them. The connection dispatcher is the sole implementation
// in production; tests substitute a recording fake.
type Listener interface {
	OnGameStarted()
	OnRoundStarted(role Role)
	OnMoveEnded()
	OnGameState(snapshot Snapshot, revealX bool)
	OnGameEnded(replay Replay)
}

// NoopListener implements Listener with no-ops, useful as an embeddable base
// for fakes that only care about a subset of events.
type NoopListener struct{}

func (NoopListener) OnGameStarted()                      {}
func (NoopListener) OnRoundStarted(Role)                  {}
func (NoopListener) OnMoveEnded()                         {}
func (NoopListener) OnGameState(Snapshot, bool)           {}
func (NoopListener) OnGameEnded(Replay)                   {}

// PlayerSnapshot is one detective's public state at a point in time.
type PlayerSnapshot struct {
	Color             string
	Station           uint8
	AvailableTaxi     int
	AvailableBus      int
	AvailableUnderground int
}

// MisterXSnapshot is Mister X's state. The session always fills Station; it
// is a pointer so the dispatcher's listener can blank it (nil) in the view
// sent to detectives when the round is not a reveal round.
type MisterXSnapshot struct {
	Station        *uint8
	RemainingDouble int
	RemainingHidden int
	Moves          []mapmodel.MisterXAction // flattened actions across all steps so far
}

// Snapshot is the full internal game state at a point in time; the
// dispatcher's listener implementation derives role-filtered views from it.
type Snapshot struct {
	Players  []PlayerSnapshot
	MisterX  MisterXSnapshot
	Round    int
}

// Game is the per-lobby state machine.
type Game struct {
	ID         string
	Map        *mapmodel.Map
	Rules      character.Rules
	ActiveRole Role
	Round      int
	Detectives []*character.Detective
	MisterX    *character.MisterX
	Listener   Listener
	ended      bool
	winner     Role
}

// New constructs a Game in its initial state (active role Mister X, round 0).
// Detectives and misterX must already be positioned at their starting
// stations; roles and starts are assigned by the registry (§4.4), not here.
func New(id string, m *mapmodel.Map, rules character.Rules, detectives []*character.Detective, misterX *character.MisterX, listener Listener) *Game {
	return &Game{
		ID:         id,
		Map:        m,
		Rules:      rules,
		ActiveRole: RoleMisterX,
		Round:      0,
		Detectives: detectives,
		MisterX:    misterX,
		Listener:   listener,
	}
}

func (g *Game) detectiveByColor(color string) (*character.Detective, bool) {
	for _, d := range g.Detectives {
		if d.Color == color {
			return d, true
		}
	}
	return nil, false
}

// revealX reports whether the round currently in play reveals Mister X's
// station. The round counter does not advance until the detectives' end_move
// (see EndMove's RoleDetective case), so Mister X's turn and the following
// detectives' turn both read the same, unincremented round index: a reveal
// round shows his station on both halves of that round, per spec.md §4.3.3.
func (g *Game) revealX() bool {
	rounds := g.Map.Rounds()
	if g.Round < 0 || g.Round >= len(rounds) {
		return false
	}
	return rounds[g.Round].RevealX
}

func (g *Game) snapshot() Snapshot {
	players := make([]PlayerSnapshot, 0, len(g.Detectives))
	for _, d := range g.Detectives {
		players = append(players, PlayerSnapshot{
			Color:                d.Color,
			Station:              d.CurrentStation(),
			AvailableTaxi:        d.RemainingTaxi(),
			AvailableBus:         d.RemainingBus(),
			AvailableUnderground: d.RemainingUnderground(),
		})
	}
	station := g.MisterX.CurrentStation()
	var moves []mapmodel.MisterXAction
	for _, step := range g.MisterX.ActionHistory() {
		for _, mv := range step.Moves {
			moves = append(moves, mv.Action)
		}
	}
	return Snapshot{
		Players: players,
		MisterX: MisterXSnapshot{
			Station:         &station,
			RemainingDouble: g.MisterX.RemainingDouble(),
			RemainingHidden: g.MisterX.RemainingHidden(),
			Moves:           moves,
		},
		Round: g.Round,
	}
}

// Start emits GameStarted, then starts the opening Mister X round.
func (g *Game) Start() {
	g.Listener.OnGameStarted()
	g.startRound(RoleMisterX)
}

func (g *Game) startRound(role Role) {
	g.ActiveRole = role
	g.Listener.OnRoundStarted(role)
	g.Listener.OnGameState(g.snapshot(), g.revealX())
}

// MoveMisterX validates and, on success, appends a Mister X step of one or
// two moves. It never emits a listener event on success (spec.md §4.3.3
// step 6): the broadcast happens on the detectives' subsequent move or on
// end_move.
func (g *Game) MoveMisterX(moves []mapmodel.MisterXMove) error {
	if g.ended {
		return ErrGameEnded
	}
	if len(moves) != 1 && len(moves) != 2 {
		return fmt.Errorf("%w: must submit 1 or 2 moves", ErrInvalidMove)
	}

	g.MisterX.TrimTo(g.Round)

	for _, mv := range moves {
		if !g.MisterX.CanPerform(mv.Action) {
			return fmt.Errorf("%w: no remaining ability for %s", ErrInvalidMove, mv.Action)
		}
	}
	if len(moves) == 2 && g.MisterX.RemainingDouble() <= 0 {
		return fmt.Errorf("%w: no remaining double-move tokens", ErrInvalidMove)
	}

	from := g.MisterX.CurrentStation()
	for _, mv := range moves {
		if !g.Map.HasEdge(from, mv.Station, mv.Action.Matches) {
			return fmt.Errorf("%w: no edge %d->%d for %s", ErrInvalidMove, from, mv.Station, mv.Action)
		}
		from = mv.Station
	}

	xMoves := make([]character.MisterXMove, len(moves))
	for i, mv := range moves {
		xMoves[i] = character.MisterXMove{Station: mv.Station, Action: mv.Action}
	}
	g.MisterX.Append(xMoves...)
	return nil
}

// MoveDetective validates and, on success, appends one detective move and
// emits GameState.
func (g *Game) MoveDetective(color string, station uint8, action mapmodel.DetectiveAction) error {
	if g.ended {
		return ErrGameEnded
	}
	d, ok := g.detectiveByColor(color)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColor, color)
	}

	d.TrimTo(g.Round)

	if !d.CanPerform(action) {
		return fmt.Errorf("%w: no remaining tickets for %s", ErrInvalidMove, action)
	}
	if !g.Map.HasEdge(d.CurrentStation(), station, action.Matches) {
		return fmt.Errorf("%w: no edge %d->%d for %s", ErrInvalidMove, d.CurrentStation(), station, action)
	}

	d.Append(station, action)
	g.Listener.OnGameState(g.snapshot(), g.revealX())
	return nil
}

// EndMove enforces that every required actor has advanced this round, then
// transitions the state machine. It returns whether the game terminated.
func (g *Game) EndMove() (bool, error) {
	if g.ended {
		return true, ErrGameEnded
	}

	switch g.ActiveRole {
	case RoleDetective:
		for _, d := range g.Detectives {
			if len(d.ActionHistory()) > g.Round {
				continue
			}
			if len(g.Map.ValidDetectiveMoves(d.CurrentStation(), d.RemainingTickets())) == 0 {
				continue // stuck detective may pass
			}
			return false, ErrNotAllMoved
		}
	case RoleMisterX:
		if len(g.MisterX.ActionHistory()) <= g.Round {
			return false, ErrNotAllMoved
		}
	}

	g.Listener.OnMoveEnded()

	if g.captured() {
		g.endGame(RoleDetective)
		return true, nil
	}

	if g.ActiveRole == RoleDetective {
		g.Round++
		if g.Round == g.Map.RoundCount() {
			g.endGame(RoleMisterX)
			return true, nil
		}
		g.startRound(RoleMisterX)
		return false, nil
	}

	g.startRound(RoleDetective)
	return false, nil
}

func (g *Game) captured() bool {
	x := g.MisterX.CurrentStation()
	for _, d := range g.Detectives {
		if d.CurrentStation() == x {
			return true
		}
	}
	return false
}

func (g *Game) endGame(winner Role) {
	g.ended = true
	g.winner = winner
	replay := g.buildReplay(winner)
	g.Listener.OnGameEnded(replay)
	g.Listener.OnGameState(g.snapshot(), true)
}

// Ended reports whether the game has terminated.
func (g *Game) Ended() bool { return g.ended }

// Winner is only meaningful once Ended() is true.
func (g *Game) Winner() Role { return g.winner }

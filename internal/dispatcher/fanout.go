package dispatcher

import (
	"github.com/scotlandyard/server/internal/game"
	"github.com/scotlandyard/server/internal/protocol"
)

// fanout is the session's event listener implementation (spec.md §4.3.2,
// §4.5): it knows which connection is Mister X and splits OnGameState into a
// full view for him and a station-blanked view for detectives unless the
// round is a reveal round or the game has ended.
type fanout struct {
	misterX    *Connection
	detectives []*Connection // same order as game.Game.Detectives
}

func (f *fanout) all() []*Connection {
	out := make([]*Connection, 0, len(f.detectives)+1)
	out = append(out, f.misterX)
	out = append(out, f.detectives...)
	return out
}

func (f *fanout) broadcast(typ string, payload any) {
	frame, err := protocol.Encode(typ, payload)
	if err != nil {
		return
	}
	for _, c := range f.all() {
		c.Send(frame)
	}
}

func (f *fanout) OnGameStarted() {
	frame, err := protocol.Encode(protocol.TypeGameStarted, protocol.GameStartedPayload{Role: string(game.RoleMisterX)})
	if err == nil {
		f.misterX.Send(frame)
	}
	detFrame, err := protocol.Encode(protocol.TypeGameStarted, protocol.GameStartedPayload{Role: string(game.RoleDetective)})
	if err == nil {
		for _, c := range f.detectives {
			c.Send(detFrame)
		}
	}
}

func (f *fanout) OnRoundStarted(role game.Role) {
	f.broadcast(protocol.TypeStartMove, protocol.StartMovePayload{Role: string(role)})
}

func (f *fanout) OnMoveEnded() {
	f.broadcast(protocol.TypeEndMove, nil)
}

func (f *fanout) OnGameState(snapshot game.Snapshot, revealX bool) {
	players := make([]protocol.PlayerState, 0, len(snapshot.Players))
	for _, p := range snapshot.Players {
		players = append(players, protocol.PlayerState{
			Color:     p.Color,
			StationID: p.Station,
			AvailableTransport: protocol.AvailableTransport{
				Taxi:        p.AvailableTaxi,
				Bus:         p.AvailableBus,
				Underground: p.AvailableUnderground,
			},
		})
	}
	moves := make([]string, 0, len(snapshot.MisterX.Moves))
	for _, m := range snapshot.MisterX.Moves {
		moves = append(moves, string(m))
	}
	abilities := protocol.MisterXAbilities{
		DoubleMove: snapshot.MisterX.RemainingDouble,
		Hidden:     snapshot.MisterX.RemainingHidden,
	}

	full := protocol.GameStatePayload{
		Players: players,
		MisterX: protocol.MisterXState{
			StationID: snapshot.MisterX.Station,
			Abilities: abilities,
			Moves:     moves,
		},
		Round: uint8(snapshot.Round),
	}
	if frame, err := protocol.Encode(protocol.TypeGameState, full); err == nil {
		f.misterX.Send(frame)
	}

	blanked := full
	blanked.MisterX.StationID = nil
	detFrame, err := protocol.Encode(protocol.TypeGameState, blanked)
	if err != nil {
		return
	}
	revealFrame, err := protocol.Encode(protocol.TypeGameState, full)
	if err != nil {
		return
	}
	for _, c := range f.detectives {
		if revealX {
			c.Send(revealFrame)
		} else {
			c.Send(detFrame)
		}
	}
}

func (f *fanout) OnGameEnded(replay game.Replay) {
	f.broadcast(protocol.TypeGameEnded, protocol.GameEndedPayload{Winner: string(replay.Winner)})
}

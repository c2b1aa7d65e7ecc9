package game

// ReplayActor identifies who performed a replay action.
type ReplayActor string

const (
	ActorMisterX   ReplayActor = "mister_x"
	ActorDetective ReplayActor = "detective"
)

// ReplayAction is one flattened move in the reconstructable trajectory: a
// Mister X double-step contributes two consecutive ReplayActions.
type ReplayAction struct {
	Actor   ReplayActor
	Color   string // empty for Mister X
	Station uint8
	Mode    string // mapmodel.MisterXAction or mapmodel.DetectiveAction, as a string
}

// Replay is the terminal artifact: a sequence of actions that reconstructs
// the full trajectory, plus enough starting metadata to replay it against a
// fresh session.
type Replay struct {
	Actions        []ReplayAction
	MisterXStart   uint8
	DetectiveStart map[string]uint8
	Winner         Role
}

// buildReplay walks every detective's and Mister X's history in lockstep,
// round by round: Mister X's entry first (flattened), then each detective's
// entry in declaration order, per spec.md §4.3.4.
func (g *Game) buildReplay(winner Role) Replay {
	maxLen := len(g.MisterX.ActionHistory())
	for _, d := range g.Detectives {
		if n := len(d.ActionHistory()); n > maxLen {
			maxLen = n
		}
	}

	var actions []ReplayAction
	xHistory := g.MisterX.ActionHistory()
	for i := 0; i < maxLen; i++ {
		if i < len(xHistory) {
			for _, mv := range xHistory[i].Moves {
				actions = append(actions, ReplayAction{
					Actor:   ActorMisterX,
					Station: mv.Station,
					Mode:    string(mv.Action),
				})
			}
		}
		for _, d := range g.Detectives {
			h := d.ActionHistory()
			if i < len(h) {
				actions = append(actions, ReplayAction{
					Actor:   ActorDetective,
					Color:   d.Color,
					Station: h[i].Station,
					Mode:    string(h[i].Action),
				})
			}
		}
	}

	starts := make(map[string]uint8, len(g.Detectives))
	for _, d := range g.Detectives {
		starts[d.Color] = d.Start
	}

	return Replay{
		Actions:        actions,
		MisterXStart:   g.MisterX.Start,
		DetectiveStart: starts,
		Winner:         winner,
	}
}

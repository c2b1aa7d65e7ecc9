// Package mapmodel holds the immutable transport graph a game is played on:
// stations, typed edges between them, and the round schedule that governs when
// Mister X's position is revealed.
package mapmodel

import "sort"

// TransportMode is a kind of edge on the map. Water is only ever traversable
// through Mister X's hidden action.
type TransportMode string

const (
	Taxi        TransportMode = "taxi"
	Bus         TransportMode = "bus"
	Underground TransportMode = "underground"
	Water       TransportMode = "water"
)

// DetectiveAction is a move a detective can submit.
type DetectiveAction string

const (
	DetectiveTaxi        DetectiveAction = "taxi"
	DetectiveBus         DetectiveAction = "bus"
	DetectiveUnderground DetectiveAction = "underground"
)

// MisterXAction is a move Mister X can submit.
type MisterXAction string

const (
	MisterXTaxi        MisterXAction = "taxi"
	MisterXBus         MisterXAction = "bus"
	MisterXUnderground MisterXAction = "underground"
	MisterXHidden      MisterXAction = "hidden"
)

// Matches reports whether a detective action is satisfied by a traversed edge mode.
// Detective actions never match a water edge.
func (a DetectiveAction) Matches(mode TransportMode) bool {
	return mode != Water && string(a) == string(mode)
}

// Matches reports whether a Mister X action is satisfied by a traversed edge mode.
// Hidden matches every mode, including water.
func (a MisterXAction) Matches(mode TransportMode) bool {
	if a == MisterXHidden {
		return true
	}
	return mode != Water && string(a) == string(mode)
}

// Station is a node on the transport map.
type Station struct {
	ID    uint8           `json:"id"`
	PosX  float64         `json:"pos_x"`
	PosY  float64         `json:"pos_y"`
	Types []TransportMode `json:"types"`
}

// Edge is an undirected connection between two stations over one transport mode.
// Parallel edges of different modes between the same pair of stations are allowed.
type Edge struct {
	From uint8         `json:"from"`
	To   uint8         `json:"to"`
	Mode TransportMode `json:"mode"`
}

// Round describes one entry in the round schedule.
type Round struct {
	Index    int  `json:"index"`
	RevealX  bool `json:"reveal_x"`
}

// Abilities bounds the hidden-move tokens available when computing Mister X's
// legal moves; it mirrors character.MisterX's derived hidden counter without
// importing the character package (mapmodel sits below it). Double-move
// tokens are not part of it: they do not change which single moves are legal.
type Abilities struct {
	Hidden int
}

// Map is the immutable, read-only transport graph plus round schedule.
type Map struct {
	stations map[uint8]Station
	edges    []Edge
	byStation map[uint8][]Edge
	rounds   []Round
}

// New builds a Map from stations, edges and a round schedule. The caller owns
// the slices; New does not mutate them.
func New(stations []Station, edges []Edge, rounds []Round) *Map {
	m := &Map{
		stations:  make(map[uint8]Station, len(stations)),
		edges:     append([]Edge(nil), edges...),
		byStation: make(map[uint8][]Edge),
		rounds:    append([]Round(nil), rounds...),
	}
	for _, s := range stations {
		m.stations[s.ID] = s
	}
	for _, e := range m.edges {
		m.byStation[e.From] = append(m.byStation[e.From], e)
		m.byStation[e.To] = append(m.byStation[e.To], e)
	}
	return m
}

// AllStations returns every station, ordered by id.
func (m *Map) AllStations() []Station {
	out := make([]Station, 0, len(m.stations))
	for _, s := range m.stations {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllEdges returns every edge in declaration order.
func (m *Map) AllEdges() []Edge {
	return append([]Edge(nil), m.edges...)
}

// Rounds returns the round schedule in index order.
func (m *Map) Rounds() []Round {
	return append([]Round(nil), m.rounds...)
}

// RoundCount is the number of rounds in the schedule.
func (m *Map) RoundCount() int {
	return len(m.rounds)
}

// HasStation reports whether the given id is a known station.
func (m *Map) HasStation(id uint8) bool {
	_, ok := m.stations[id]
	return ok
}

func (m *Map) neighbor(edge Edge, from uint8) (uint8, bool) {
	switch from {
	case edge.From:
		return edge.To, true
	case edge.To:
		return edge.From, true
	default:
		return 0, false
	}
}

// HasEdge reports whether an edge exists between from and to (in either
// orientation) whose mode is matched by the given matcher (a DetectiveAction
// or MisterXAction).
func (m *Map) HasEdge(from, to uint8, matches func(TransportMode) bool) bool {
	for _, e := range m.byStation[from] {
		nb, ok := m.neighbor(e, from)
		if !ok || nb != to {
			continue
		}
		if matches(e.Mode) {
			return true
		}
	}
	return false
}

// MisterXMove pairs a destination station with the action Mister X used to
// reach it.
type MisterXMove struct {
	Station uint8
	Action  MisterXAction
}

// DetectiveMove pairs a destination station with the action a detective used
// to reach it.
type DetectiveMove struct {
	Station uint8
	Action  DetectiveAction
}

// ValidMisterXMoves enumerates every (station, action) pair Mister X may move
// to from `from`. A water edge yields a hidden move, gated on abilities.Hidden
// > 0. Every other neighbor yields its natural mode, and additionally a hidden
// variant masking that mode whenever abilities.Hidden > 0 (see DESIGN.md for
// the resolved open question on hidden-token masking).
func (m *Map) ValidMisterXMoves(from uint8, abilities Abilities) []MisterXMove {
	var out []MisterXMove
	seen := make(map[MisterXMove]bool)
	add := func(mv MisterXMove) {
		if !seen[mv] {
			seen[mv] = true
			out = append(out, mv)
		}
	}
	for _, e := range m.byStation[from] {
		nb, ok := m.neighbor(e, from)
		if !ok {
			continue
		}
		switch e.Mode {
		case Water:
			if abilities.Hidden > 0 {
				add(MisterXMove{Station: nb, Action: MisterXHidden})
			}
		case Taxi:
			add(MisterXMove{Station: nb, Action: MisterXTaxi})
			if abilities.Hidden > 0 {
				add(MisterXMove{Station: nb, Action: MisterXHidden})
			}
		case Bus:
			add(MisterXMove{Station: nb, Action: MisterXBus})
			if abilities.Hidden > 0 {
				add(MisterXMove{Station: nb, Action: MisterXHidden})
			}
		case Underground:
			add(MisterXMove{Station: nb, Action: MisterXUnderground})
			if abilities.Hidden > 0 {
				add(MisterXMove{Station: nb, Action: MisterXHidden})
			}
		}
	}
	return out
}

// RemainingTickets is the detective's per-mode ticket counters, passed by the
// character package so mapmodel never needs to know about DetectiveState.
type RemainingTickets struct {
	Taxi        int
	Bus         int
	Underground int
}

// ValidDetectiveMoves enumerates every (station, action) pair the detective
// may move to from `from`, gated on remaining ticket counts. Water edges are
// never yielded to detectives.
func (m *Map) ValidDetectiveMoves(from uint8, transport RemainingTickets) []DetectiveMove {
	var out []DetectiveMove
	seen := make(map[DetectiveMove]bool)
	add := func(mv DetectiveMove) {
		if !seen[mv] {
			seen[mv] = true
			out = append(out, mv)
		}
	}
	for _, e := range m.byStation[from] {
		nb, ok := m.neighbor(e, from)
		if !ok {
			continue
		}
		switch e.Mode {
		case Taxi:
			if transport.Taxi > 0 {
				add(DetectiveMove{Station: nb, Action: DetectiveTaxi})
			}
		case Bus:
			if transport.Bus > 0 {
				add(DetectiveMove{Station: nb, Action: DetectiveBus})
			}
		case Underground:
			if transport.Underground > 0 {
				add(DetectiveMove{Station: nb, Action: DetectiveUnderground})
			}
		}
	}
	return out
}

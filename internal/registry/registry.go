// Package registry holds the two process-wide keyed containers the
// dispatcher promotes connections through: pre-game lobbies accumulating
// joiners, and live games. It mirrors the teacher's internal/sessions
// manager (a mutex-guarded map keyed by a generated uuid) generalized to
// two registries with a promotion step between them.
package registry

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/scotlandyard/server/internal/character"
	"github.com/scotlandyard/server/internal/game"
	"github.com/scotlandyard/server/internal/mapmodel"
)

var (
	ErrUnknownLobby      = errors.New("unknown lobby")
	ErrUnknownGame       = errors.New("unknown game")
	ErrNotEnoughPlayers  = errors.New("not enough players")
)

// DefaultColorPalette is the detective color assignment order (spec.md §6.3).
var DefaultColorPalette = []string{"red", "blue", "green", "yellow", "purple"}

// Member is the minimal connection-facing shape the registry needs to track
// lobby membership; the dispatcher's Connection satisfies this.
type Member interface {
	ID() string
}

// Lobby is a pre-game container accumulating joining connections.
type Lobby struct {
	ID            string
	NumDetectives int
	Members       []Member
}

// Source abstracts the two external collaborators the registry needs at
// promotion time (spec.md §1): a map provider and a random source. Both are
// concrete values; tests supply a fixture map and a seeded *rand.Rand.
type Source struct {
	Map    *mapmodel.Map
	Rules  character.Rules
	Rand   *rand.Rand
	// MisterXPool and DetectivePool are the curated, disjoint starting
	// station pools (spec.md §6.3); tests override both.
	MisterXPool   []uint8
	DetectivePool []uint8
}

// Registry owns the lobbies and games maps under a single coarse lock, per
// spec.md §9 ("a single coarse lock is sufficient at expected scale") and
// spec.md §5 ("guarded by a single process-wide mutex acquired by the
// dispatcher for the duration of each packet's handling"). None of the
// methods below acquire the lock themselves: the dispatcher calls Lock once
// per packet, performs every registry lookup and mutation the packet needs,
// then calls Unlock — this is what keeps an entire packet's handling,
// including the game move it triggers, one atomic step (spec.md §5's
// ordering guarantee).
type Registry struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby
	games   map[string]*game.Game
	source  Source
}

// New creates an empty registry bound to the given map/rules/random source.
func New(source Source) *Registry {
	return &Registry{
		lobbies: make(map[string]*Lobby),
		games:   make(map[string]*game.Game),
		source:  source,
	}
}

// CreateLobby generates a fresh id and inserts an empty lobby. Caller must
// hold the registry lock.
func (r *Registry) CreateLobby(numDetectives int) string {
	id := uuid.NewString()
	r.lobbies[id] = &Lobby{ID: id, NumDetectives: numDetectives}
	return id
}

// JoinLobby appends a connection to a lobby's membership. Caller must hold
// the registry lock.
func (r *Registry) JoinLobby(lobbyID string, member Member) error {
	lobby, ok := r.lobbies[lobbyID]
	if !ok {
		return ErrUnknownLobby
	}
	lobby.Members = append(lobby.Members, member)
	return nil
}

// GetLobby returns the lobby for id, or ErrUnknownLobby. Caller must hold
// the registry lock.
func (r *Registry) GetLobby(id string) (*Lobby, error) {
	lobby, ok := r.lobbies[id]
	if !ok {
		return nil, ErrUnknownLobby
	}
	return lobby, nil
}

// CloseLobby removes a lobby without promoting it. Caller must hold the
// registry lock.
func (r *Registry) CloseLobby(id string) {
	delete(r.lobbies, id)
}

// GetGame returns the game for id, or ErrUnknownGame. Caller must hold the
// registry lock.
func (r *Registry) GetGame(id string) (*game.Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, ErrUnknownGame
	}
	return g, nil
}

// CloseGame removes a terminated game. Caller must hold the registry lock.
func (r *Registry) CloseGame(id string) {
	delete(r.games, id)
}

// Lock and Unlock expose the registry's coarse lock so the dispatcher can
// serialize an entire packet's handling — registry mutation and game move
// application — under one critical section, per spec.md §5.
func (r *Registry) Lock()   { r.mu.Lock() }
func (r *Registry) Unlock() { r.mu.Unlock() }

// Promote requires at least two members, draws roles and starting stations,
// and moves the lobby into the games map under the same id (I6: a lobby id
// and a game id never coexist). Caller must hold the registry lock.
func (r *Registry) Promote(lobbyID string, listener game.Listener) (*game.Game, []Member, error) {
	lobby, ok := r.lobbies[lobbyID]
	if !ok {
		return nil, nil, ErrUnknownLobby
	}
	if len(lobby.Members) < 2 {
		return nil, nil, ErrNotEnoughPlayers
	}

	n := lobby.NumDetectives
	if n <= 0 || n > len(DefaultColorPalette) {
		n = len(lobby.Members) - 1
		if n > len(DefaultColorPalette) {
			n = len(DefaultColorPalette)
		}
	}

	xIndex := r.source.Rand.Intn(len(lobby.Members))
	misterXMember := lobby.Members[xIndex]

	stationSet, err := drawDistinct(r.source.Rand, r.source.MisterXPool, r.source.DetectivePool, n+1)
	if err != nil {
		return nil, nil, err
	}

	misterX := character.NewMisterX(stationSet[0], r.source.Rules)

	detectives := make([]*character.Detective, 0, n)
	detectiveMembers := make([]Member, 0, n)
	di := 0
	for _, m := range lobby.Members {
		if m == misterXMember {
			continue
		}
		if di >= n {
			break
		}
		detectives = append(detectives, character.NewDetective(DefaultColorPalette[di], stationSet[di+1], r.source.Rules))
		detectiveMembers = append(detectiveMembers, m)
		di++
	}

	g := game.New(lobbyID, r.source.Map, r.source.Rules, detectives, misterX, listener)

	r.games[lobbyID] = g
	delete(r.lobbies, lobbyID)

	ordered := append([]Member{misterXMember}, detectiveMembers...)
	return g, ordered, nil
}

// drawDistinct draws count distinct stations, one from misterXPool and the
// rest from detectivePool, without replacement within each pool.
func drawDistinct(r *rand.Rand, misterXPool, detectivePool []uint8, count int) ([]uint8, error) {
	if count < 1 {
		return nil, errors.New("registry: count must be >= 1")
	}
	if len(misterXPool) < 1 {
		return nil, errors.New("registry: mister x starting pool is empty")
	}
	if len(detectivePool) < count-1 {
		return nil, errors.New("registry: detective starting pool too small")
	}

	out := make([]uint8, 0, count)
	out = append(out, misterXPool[r.Intn(len(misterXPool))])

	perm := r.Perm(len(detectivePool))
	for i := 0; i < count-1; i++ {
		out = append(out, detectivePool[perm[i]])
	}
	return out, nil
}

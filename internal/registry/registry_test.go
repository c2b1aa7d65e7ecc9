package registry

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/scotlandyard/server/internal/character"
	"github.com/scotlandyard/server/internal/game"
	"github.com/scotlandyard/server/internal/mapmodel"
)

type fakeMember struct{ id string }

func (f fakeMember) ID() string { return f.id }

func testSource() Source {
	stations := []mapmodel.Station{{ID: 100}, {ID: 101}, {ID: 102}}
	edges := []mapmodel.Edge{
		{From: 100, To: 101, Mode: mapmodel.Taxi},
		{From: 101, To: 102, Mode: mapmodel.Taxi},
	}
	m := mapmodel.New(stations, edges, mapmodel.DefaultRounds())
	return Source{
		Map:           m,
		Rules:         character.DefaultRules,
		Rand:          rand.New(rand.NewSource(1)),
		MisterXPool:   []uint8{100},
		DetectivePool: []uint8{101, 102},
	}
}

func TestCreateAndJoinLobby(t *testing.T) {
	r := New(testSource())
	id := r.CreateLobby(1)

	if err := r.JoinLobby(id, fakeMember{"a"}); err != nil {
		t.Fatalf("unexpected error joining: %v", err)
	}

	lobby, err := r.GetLobby(id)
	if err != nil {
		t.Fatalf("unexpected error getting lobby: %v", err)
	}
	if len(lobby.Members) != 1 {
		t.Errorf("expected 1 member, got %d", len(lobby.Members))
	}
}

func TestJoinUnknownLobby(t *testing.T) {
	r := New(testSource())
	err := r.JoinLobby("nope", fakeMember{"a"})
	if !errors.Is(err, ErrUnknownLobby) {
		t.Fatalf("expected ErrUnknownLobby, got %v", err)
	}
}

func TestPromoteRequiresTwoMembers(t *testing.T) {
	r := New(testSource())
	id := r.CreateLobby(1)
	r.JoinLobby(id, fakeMember{"a"})

	_, _, err := r.Promote(id, game.NoopListener{})
	if !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
}

func TestPromoteUnknownLobby(t *testing.T) {
	r := New(testSource())
	_, _, err := r.Promote("nope", game.NoopListener{})
	if !errors.Is(err, ErrUnknownLobby) {
		t.Fatalf("expected ErrUnknownLobby, got %v", err)
	}
}

func TestPromoteMovesLobbyIntoGames(t *testing.T) {
	r := New(testSource())
	id := r.CreateLobby(1)
	r.JoinLobby(id, fakeMember{"a"})
	r.JoinLobby(id, fakeMember{"b"})

	g, members, err := r.Promote(id, game.NoopListener{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 ordered members (mister x first), got %d", len(members))
	}
	if g.ID != id {
		t.Errorf("expected game id to reuse the lobby id, got %s", g.ID)
	}

	if _, err := r.GetLobby(id); !errors.Is(err, ErrUnknownLobby) {
		t.Error("expected the lobby to be gone after promotion")
	}
	if _, err := r.GetGame(id); err != nil {
		t.Errorf("expected the game to be retrievable under the same id: %v", err)
	}
}

func TestGetGameUnknown(t *testing.T) {
	r := New(testSource())
	_, err := r.GetGame("nope")
	if !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}
}

func TestCloseGameRemovesIt(t *testing.T) {
	r := New(testSource())
	id := r.CreateLobby(1)
	r.JoinLobby(id, fakeMember{"a"})
	r.JoinLobby(id, fakeMember{"b"})
	r.Promote(id, game.NoopListener{})

	r.CloseGame(id)
	if _, err := r.GetGame(id); !errors.Is(err, ErrUnknownGame) {
		t.Error("expected the game to be gone after CloseGame")
	}
}

func TestDrawDistinctRespectsPoolSizes(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	_, err := drawDistinct(r, []uint8{100}, []uint8{101}, 3)
	if err == nil {
		t.Error("expected an error when the detective pool is too small for the requested count")
	}
}

package dispatcher

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scotlandyard/server/internal/character"
	"github.com/scotlandyard/server/internal/mapmodel"
	"github.com/scotlandyard/server/internal/protocol"
	"github.com/scotlandyard/server/internal/registry"
)

func testSource() registry.Source {
	stations := []mapmodel.Station{{ID: 100}, {ID: 101}, {ID: 102}}
	edges := []mapmodel.Edge{
		{From: 100, To: 101, Mode: mapmodel.Taxi},
		{From: 101, To: 102, Mode: mapmodel.Taxi},
	}
	m := mapmodel.New(stations, edges, mapmodel.DefaultRounds())
	return registry.Source{
		Map:           m,
		Rules:         character.DefaultRules,
		Rand:          rand.New(rand.NewSource(1)),
		MisterXPool:   []uint8{100},
		DetectivePool: []uint8{101, 102},
	}
}

func setupTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	reg := registry.New(testSource())
	s := New(reg, nil, 16)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	server := httptest.NewServer(mux)
	return server, server.Close
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	frame, err := protocol.Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recv(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	env, err := protocol.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestCreateAndJoinGame(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	creator := dial(t, server)
	defer creator.Close()
	send(t, creator, protocol.TypeCreateGame, protocol.CreateGamePayload{NumberOfDetectives: 1})

	env := recv(t, creator)
	if env.Type != protocol.TypeGame {
		t.Fatalf("expected a game packet, got %s", env.Type)
	}
	var gamePayload protocol.GamePayload
	if err := json.Unmarshal(env.Payload, &gamePayload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if gamePayload.ID == "" {
		t.Fatal("expected a non-empty lobby id")
	}

	joiner := dial(t, server)
	defer joiner.Close()
	send(t, joiner, protocol.TypeJoinGame, protocol.JoinGamePayload{ID: gamePayload.ID})
}

func TestJoinUnknownGameReturnsError(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	conn := dial(t, server)
	defer conn.Close()
	send(t, conn, protocol.TypeJoinGame, protocol.JoinGamePayload{ID: "nonexistent"})

	env := recv(t, conn)
	if env.Type != protocol.TypeError {
		t.Fatalf("expected an error packet, got %s", env.Type)
	}
}

func TestStartGameBelowMinimumPlayersErrors(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	conn := dial(t, server)
	defer conn.Close()
	send(t, conn, protocol.TypeCreateGame, protocol.CreateGamePayload{NumberOfDetectives: 1})
	gameEnv := recv(t, conn)
	var gamePayload protocol.GamePayload
	json.Unmarshal(gameEnv.Payload, &gamePayload)

	send(t, conn, protocol.TypeJoinGame, protocol.JoinGamePayload{ID: gamePayload.ID})
	send(t, conn, protocol.TypeStartGame, nil)

	env := recv(t, conn)
	if env.Type != protocol.TypeError {
		t.Fatalf("expected an error packet for a single-member lobby, got %s", env.Type)
	}
}

func TestFullGameLifecycleReachesGameStarted(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	a := dial(t, server)
	defer a.Close()
	send(t, a, protocol.TypeCreateGame, protocol.CreateGamePayload{NumberOfDetectives: 1})
	gameEnv := recv(t, a)
	var gamePayload protocol.GamePayload
	json.Unmarshal(gameEnv.Payload, &gamePayload)

	send(t, a, protocol.TypeJoinGame, protocol.JoinGamePayload{ID: gamePayload.ID})

	b := dial(t, server)
	defer b.Close()
	send(t, b, protocol.TypeJoinGame, protocol.JoinGamePayload{ID: gamePayload.ID})

	send(t, a, protocol.TypeStartGame, nil)

	aEnv := recv(t, a)
	if aEnv.Type != protocol.TypeGameStarted {
		t.Fatalf("expected gameStarted for connection a, got %s", aEnv.Type)
	}
	bEnv := recv(t, b)
	if bEnv.Type != protocol.TypeGameStarted {
		t.Fatalf("expected gameStarted for connection b, got %s", bEnv.Type)
	}

	// both connections next receive the opening startMove/gameState pair for
	// the mister_x round; whichever of a/b is mister_x receives it directly,
	// the other from the same broadcast.
	recv(t, a)
	recv(t, a)
	recv(t, b)
	recv(t, b)
}

func TestUnknownPacketTypeReturnsError(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	conn := dial(t, server)
	defer conn.Close()
	send(t, conn, "bogusPacket", nil)

	env := recv(t, conn)
	if env.Type != protocol.TypeError {
		t.Fatalf("expected an error packet for an unknown type, got %s", env.Type)
	}
}

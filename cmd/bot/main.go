// Command bot is a minimal player: it joins a game already created by
// cmd/runner and submits the first legal move available on its turn. Move
// selection is deliberately trivial — decision logic is explicitly out of
// scope (spec.md §1) — the binary exists only so cmd/runner has something to
// spawn and collect a winner from.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"

	"github.com/scotlandyard/server/internal/mapmodel"
	"github.com/scotlandyard/server/internal/protocol"
)

type result struct {
	Winner string `json:"winner"`
}

func main() {
	server := pflag.String("server", "ws://127.0.0.1:8081/ws", "server websocket URL")
	gameID := pflag.String("game-id", "", "id of the game to join")
	simpleOutput := pflag.Bool("simple-output", false, "print only the final {\"winner\":...} line")
	pflag.Parse()

	if *gameID == "" {
		fmt.Fprintln(os.Stderr, "bot: --game-id is required")
		os.Exit(1)
	}

	winner, err := play(*server, *gameID, *simpleOutput)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bot:", err)
		os.Exit(1)
	}

	out, _ := json.Marshal(result{Winner: winner})
	fmt.Println(string(out))
}

func play(server, gameID string, simpleOutput bool) (string, error) {
	m, err := fetchMap(server)
	if err != nil {
		return "", fmt.Errorf("fetch map: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(server, nil)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", server, err)
	}
	defer conn.Close()

	frame, err := protocol.Encode(protocol.TypeJoinGame, protocol.JoinGamePayload{ID: gameID})
	if err != nil {
		return "", err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return "", err
	}

	b := &bot{conn: conn, m: m, log: !simpleOutput}

	for {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("read: %w", err)
		}
		env, err := protocol.Decode(data)
		if err != nil {
			continue
		}

		switch env.Type {
		case protocol.TypeGameStarted:
			var p protocol.GameStartedPayload
			if err := json.Unmarshal(env.Payload, &p); err == nil {
				b.role = p.Role
				b.logf("playing as %s", b.role)
			}
		case protocol.TypeGameState:
			var p protocol.GameStatePayload
			if err := json.Unmarshal(env.Payload, &p); err == nil {
				b.state = &p
			}
		case protocol.TypeStartMove:
			var p protocol.StartMovePayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				continue
			}
			if p.Role != b.role {
				continue
			}
			if err := b.takeTurn(); err != nil {
				b.logf("move failed: %v", err)
			}
		case protocol.TypeGameEnded:
			var p protocol.GameEndedPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				return "", err
			}
			return p.Winner, nil
		case protocol.TypeError:
			var p protocol.ErrorPayload
			json.Unmarshal(env.Payload, &p)
			b.logf("server error: %s", p.Message)
		}
	}
}

// bot tracks just enough state to pick a legal next move.
type bot struct {
	conn  *websocket.Conn
	m     *mapmodel.Map
	role  string
	state *protocol.GameStatePayload
	log   bool
}

func (b *bot) logf(format string, args ...any) {
	if b.log {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// takeTurn picks the first legal move for the bot's role and submits it,
// then ends the turn. If no legal move exists (a stuck detective) it submits
// immediately without moving, per spec.md's stuck-detective allowance.
func (b *bot) takeTurn() error {
	if b.state == nil {
		return b.submit()
	}

	if b.role == "mister_x" {
		if b.state.MisterX.StationID == nil {
			return b.submit()
		}
		moves := b.m.ValidMisterXMoves(*b.state.MisterX.StationID, mapmodel.Abilities{Hidden: b.state.MisterX.Abilities.Hidden})
		if len(moves) == 0 {
			return b.submit()
		}
		mv := moves[0]
		frame, err := protocol.Encode(protocol.TypeMoveMisterX, []protocol.MisterXMovePayload{
			{StationID: mv.Station, TransportType: string(mv.Action)},
		})
		if err != nil {
			return err
		}
		if err := b.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return err
		}
		return b.submit()
	}

	for _, p := range b.state.Players {
		tickets := mapmodel.RemainingTickets{Taxi: p.AvailableTransport.Taxi, Bus: p.AvailableTransport.Bus, Underground: p.AvailableTransport.Underground}
		moves := b.m.ValidDetectiveMoves(p.StationID, tickets)
		if len(moves) == 0 {
			continue
		}
		mv := moves[0]
		frame, err := protocol.Encode(protocol.TypeMoveDetective, protocol.MoveDetectivePayload{
			Color:         p.Color,
			StationID:     mv.Station,
			TransportType: string(mv.Action),
		})
		if err != nil {
			return err
		}
		if err := b.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return err
		}
		break
	}
	return b.submit()
}

func (b *bot) submit() error {
	frame, err := protocol.Encode(protocol.TypeSubmitMove, nil)
	if err != nil {
		return err
	}
	return b.conn.WriteMessage(websocket.TextMessage, frame)
}

// fetchMap pulls the read-only map endpoints over HTTP, derived from the
// websocket URL by swapping scheme and trimming the /ws suffix.
func fetchMap(wsURL string) (*mapmodel.Map, error) {
	base := strings.NewReplacer("ws://", "http://", "wss://", "https://").Replace(wsURL)
	base = strings.TrimSuffix(base, "/ws")

	var stations []mapmodel.Station
	if err := fetchJSON(base+"/map/stations", &stations); err != nil {
		return nil, err
	}
	var edges []mapmodel.Edge
	if err := fetchJSON(base+"/map/connections", &edges); err != nil {
		return nil, err
	}
	return mapmodel.New(stations, edges, nil), nil
}

func fetchJSON(url string, v any) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

package dispatcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/scotlandyard/server/internal/applog"
	"github.com/scotlandyard/server/internal/game"
	"github.com/scotlandyard/server/internal/mapmodel"
	"github.com/scotlandyard/server/internal/metrics"
	"github.com/scotlandyard/server/internal/protocol"
	"github.com/scotlandyard/server/internal/registry"
)

var (
	// ErrGameAlreadyJoined is returned when a connection that already has a
	// lobby or a game issues JoinGame.
	ErrGameAlreadyJoined = errors.New("game already joined")
	// ErrNotAllowedForUser is returned when a connection submits a packet
	// that is not theirs to submit (wrong role, or not their turn).
	ErrNotAllowedForUser = errors.New("not allowed for user")
	// ErrNotInLobby/ErrNotInGame are returned when a packet requires a
	// membership the connection does not have.
	ErrNotInLobby = errors.New("not in lobby")
	ErrNotInGame  = errors.New("not in game")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is the connection dispatcher (spec.md §4.5): one instance serves
// every websocket connection and owns the registry all of them share.
type Server struct {
	registry           *registry.Registry
	metrics            *metrics.Metrics
	outboundBufferSize int

	// fanouts tracks the listener in use for each live game, so SubmitMove
	// can tear it down on termination without walking the registry again.
	fanoutsMu sync.Mutex
	fanouts   map[string]*fanout
}

// New creates a dispatcher bound to the given registry. Config values
// (outbound buffer size) come from internal/config.
func New(r *registry.Registry, m *metrics.Metrics, outboundBufferSize int) *Server {
	return &Server{
		registry:           r,
		metrics:            m,
		outboundBufferSize: outboundBufferSize,
		fanouts:            make(map[string]*fanout),
	}
}

// HandleWebSocket upgrades the HTTP request and runs the connection's read
// and write pumps until the socket closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.L().Info("websocket upgrade failed", "error", err)
		return
	}

	conn := NewConnection(ws, s.outboundBufferSize)
	if s.metrics != nil {
		s.metrics.OpenConnections.Inc()
	}

	done := make(chan struct{})
	go func() {
		conn.writePump()
		close(done)
	}()
	conn.readPump(func(data []byte) {
		s.handle(conn, data)
	})
	<-done

	if s.metrics != nil {
		s.metrics.OpenConnections.Dec()
	}
}

func (s *Server) sendError(c *Connection, message string) {
	if s.metrics != nil {
		s.metrics.PacketErrors.WithLabelValues(message).Inc()
	}
	frame, err := protocol.Encode(protocol.TypeError, protocol.ErrorPayload{Message: message})
	if err != nil {
		return
	}
	c.Send(frame)
}

// handle parses one inbound frame and dispatches it. The entire handling of
// one packet runs under the registry's lock (spec.md §5): registry lookups,
// game mutation, and the listener calls they trigger are one critical
// section, so the broadcast order reflects acceptance order.
func (s *Server) handle(c *Connection, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		s.sendError(c, "invalid packet")
		return
	}

	s.registry.Lock()
	defer s.registry.Unlock()

	switch env.Type {
	case protocol.TypeCreateGame:
		s.handleCreateGame(c, env)
	case protocol.TypeJoinGame:
		s.handleJoinGame(c, env)
	case protocol.TypeStartGame:
		s.handleStartGame(c)
	case protocol.TypeMoveMisterX:
		s.handleMoveMisterX(c, env)
	case protocol.TypeMoveDetective:
		s.handleMoveDetective(c, env)
	case protocol.TypeSubmitMove:
		s.handleSubmitMove(c)
	default:
		s.sendError(c, "unknown packet")
	}
}

func (s *Server) handleCreateGame(c *Connection, env protocol.Envelope) {
	var payload protocol.CreateGamePayload
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			s.sendError(c, "invalid packet")
			return
		}
	}

	id := s.registry.CreateLobby(payload.NumberOfDetectives)
	frame, err := protocol.Encode(protocol.TypeGame, protocol.GamePayload{ID: id})
	if err != nil {
		return
	}
	c.Send(frame)
}

func (s *Server) handleJoinGame(c *Connection, env protocol.Envelope) {
	lobbyID, gameID, _ := c.state()
	if lobbyID != "" || gameID != "" {
		s.sendError(c, ErrGameAlreadyJoined.Error())
		return
	}

	var payload protocol.JoinGamePayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		s.sendError(c, "invalid packet")
		return
	}

	if err := s.registry.JoinLobby(payload.ID, c); err != nil {
		s.sendError(c, unknownLobbyMessage(err))
		return
	}
	c.setLobby(payload.ID)
}

func (s *Server) handleStartGame(c *Connection) {
	lobbyID, _, _ := c.state()
	if lobbyID == "" {
		s.sendError(c, ErrNotInLobby.Error())
		return
	}

	fo := &fanout{}
	g, members, err := s.registry.Promote(lobbyID, fo)
	if err != nil {
		s.sendError(c, promoteErrorMessage(err))
		return
	}

	misterXConn := members[0].(*Connection)
	detConns := make([]*Connection, 0, len(members)-1)
	for _, m := range members[1:] {
		detConns = append(detConns, m.(*Connection))
	}
	fo.misterX = misterXConn
	fo.detectives = detConns

	misterXConn.setGame(g.ID, true)
	for _, d := range detConns {
		d.setGame(g.ID, false)
	}

	s.fanoutsMu.Lock()
	s.fanouts[g.ID] = fo
	s.fanoutsMu.Unlock()

	if s.metrics != nil {
		s.metrics.ActiveGames.Inc()
	}

	g.Start()
}

func (s *Server) handleMoveMisterX(c *Connection, env protocol.Envelope) {
	_, gameID, isMisterX := c.state()
	if gameID == "" {
		s.sendError(c, ErrNotInGame.Error())
		return
	}
	g, err := s.registry.GetGame(gameID)
	if err != nil {
		s.sendError(c, unknownGameMessage(err))
		return
	}
	if g.ActiveRole != game.RoleMisterX || !isMisterX {
		s.sendError(c, ErrNotAllowedForUser.Error())
		return
	}

	var payloads []protocol.MisterXMovePayload
	if err := json.Unmarshal(env.Payload, &payloads); err != nil {
		s.sendError(c, "invalid packet")
		return
	}

	moves := make([]mapmodel.MisterXMove, len(payloads))
	for i, p := range payloads {
		moves[i] = mapmodel.MisterXMove{Station: p.StationID, Action: mapmodel.MisterXAction(p.TransportType)}
	}

	if err := g.MoveMisterX(moves); err != nil {
		s.sendError(c, gameErrorMessage(err))
		return
	}
	if s.metrics != nil {
		s.metrics.MovesProcessed.WithLabelValues(string(game.RoleMisterX)).Inc()
	}
}

func (s *Server) handleMoveDetective(c *Connection, env protocol.Envelope) {
	_, gameID, isMisterX := c.state()
	if gameID == "" {
		s.sendError(c, ErrNotInGame.Error())
		return
	}
	g, err := s.registry.GetGame(gameID)
	if err != nil {
		s.sendError(c, unknownGameMessage(err))
		return
	}
	if g.ActiveRole != game.RoleDetective || isMisterX {
		s.sendError(c, ErrNotAllowedForUser.Error())
		return
	}

	var payload protocol.MoveDetectivePayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		s.sendError(c, "invalid packet")
		return
	}

	action := mapmodel.DetectiveAction(payload.TransportType)
	if err := g.MoveDetective(payload.Color, payload.StationID, action); err != nil {
		s.sendError(c, gameErrorMessage(err))
		return
	}
	if s.metrics != nil {
		s.metrics.MovesProcessed.WithLabelValues(string(game.RoleDetective)).Inc()
	}
}

func (s *Server) handleSubmitMove(c *Connection) {
	_, gameID, isMisterX := c.state()
	if gameID == "" {
		s.sendError(c, ErrNotInGame.Error())
		return
	}
	g, err := s.registry.GetGame(gameID)
	if err != nil {
		s.sendError(c, unknownGameMessage(err))
		return
	}

	myTurn := (g.ActiveRole == game.RoleMisterX && isMisterX) || (g.ActiveRole == game.RoleDetective && !isMisterX)
	if !myTurn {
		s.sendError(c, ErrNotAllowedForUser.Error())
		return
	}

	terminated, err := g.EndMove()
	if err != nil {
		s.sendError(c, gameErrorMessage(err))
		return
	}
	if !terminated {
		return
	}

	s.registry.CloseGame(gameID)
	if s.metrics != nil {
		s.metrics.ActiveGames.Dec()
	}

	s.fanoutsMu.Lock()
	fo := s.fanouts[gameID]
	delete(s.fanouts, gameID)
	s.fanoutsMu.Unlock()

	if fo == nil {
		return
	}
	for _, member := range fo.all() {
		member.clearGame()
	}
}

func unknownLobbyMessage(err error) string {
	if errors.Is(err, registry.ErrUnknownLobby) {
		return "unknown lobby"
	}
	return err.Error()
}

func unknownGameMessage(err error) string {
	if errors.Is(err, registry.ErrUnknownGame) {
		return "unknown game"
	}
	return err.Error()
}

func promoteErrorMessage(err error) string {
	switch {
	case errors.Is(err, registry.ErrUnknownLobby):
		return "unknown lobby"
	case errors.Is(err, registry.ErrNotEnoughPlayers):
		return "not enough players"
	default:
		return err.Error()
	}
}

func gameErrorMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidMove):
		return "invalid move"
	case errors.Is(err, game.ErrNotAllMoved):
		return "not all players have moved"
	case errors.Is(err, game.ErrUnknownColor):
		return fmt.Sprintf("invalid move: %v", err)
	case errors.Is(err, game.ErrGameEnded):
		return "game has ended"
	default:
		return err.Error()
	}
}

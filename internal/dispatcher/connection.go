// Package dispatcher implements the per-connection coroutines that parse
// inbound packets, authorize them against game role and active turn, mutate
// the shared registry under its lock, and fan session events back out to
// every connection in a game. It is the direct generalization of the
// teacher's internal/ws (Router, Client ReadPump/WritePump) and
// internal/pty (Hub, per-client outbound channel) to this spec's packet set.
package dispatcher

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/scotlandyard/server/internal/applog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Connection is one client's connection record (spec.md §3: "Connection
// record"). At most one of LobbyID/GameID is set at a time (I7).
type Connection struct {
	id string

	mu        sync.Mutex
	lobbyID   string
	gameID    string
	isMisterX bool

	ws       *websocket.Conn
	outbound chan []byte
}

// NewConnection wraps an upgraded websocket connection with a bounded
// outbound channel (capacity from Server config, default 16 per spec.md §4.5).
func NewConnection(ws *websocket.Conn, bufferSize int) *Connection {
	return &Connection{
		id:       uuid.NewString(),
		ws:       ws,
		outbound: make(chan []byte, bufferSize),
	}
}

// ID satisfies registry.Member.
func (c *Connection) ID() string { return c.id }

func (c *Connection) setLobby(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobbyID = id
	c.gameID = ""
}

func (c *Connection) setGame(id string, isMisterX bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = id
	c.lobbyID = ""
	c.isMisterX = isMisterX
}

func (c *Connection) clearGame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = ""
}

func (c *Connection) state() (lobbyID, gameID string, isMisterX bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lobbyID, c.gameID, c.isMisterX
}

// Send enqueues a pre-encoded frame for the write pump. A full buffer
// indicates a dead or too-slow peer; per spec.md §5 that is an unrecoverable
// error for this connection only, so the send is dropped rather than
// blocking the caller (which, for registry-locked callers, would stall every
// other connection in the process).
func (c *Connection) Send(frame []byte) {
	select {
	case c.outbound <- frame:
	default:
		applog.L().Warn("dropping frame to slow or dead peer", "connection_id", c.id)
	}
}

// readPump reads inbound frames and hands each to handle. It owns the
// connection's read deadline/pong handling; when it returns, the write pump
// is stopped by closing the outbound channel so both tasks unwind together
// (spec.md §5, Cancellation).
func (c *Connection) readPump(handle func(data []byte)) {
	defer func() {
		close(c.outbound)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				applog.L().Info("websocket read error", "connection_id", c.id, "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		handle(data)
	}
}

// writePump drains the outbound channel into the socket, interleaving
// periodic pings, until the channel is closed or a write fails.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.outbound:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

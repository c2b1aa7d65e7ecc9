// Package protocol defines the client<->server wire packets (spec.md §6.2)
// and their JSON envelope encoding: {"type": "...", "payload": ...}. This is
// the idiomatic-Go rendering of the bracket-framed "[name] payload" text
// format — one envelope per line-shaped message, parsed back to an equal
// structured value (testable property R1).
package protocol

import (
	"encoding/json"
	"fmt"
)

// Packet type names, camelCase as spec.md §6.2 requires on the wire.
const (
	TypeCreateGame     = "createGame"
	TypeJoinGame       = "joinGame"
	TypeStartGame      = "startGame"
	TypeMoveMisterX    = "moveMisterX"
	TypeMoveDetective  = "moveDetective"
	TypeSubmitMove     = "submitMove"

	TypeError       = "error"
	TypeGame        = "game"
	TypeGameStarted = "gameStarted"
	TypeStartMove   = "startMove"
	TypeGameState   = "gameState"
	TypeEndMove     = "endMove"
	TypeGameEnded   = "gameEnded"
)

// Envelope is the outer shape of every message on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> server payloads.

type CreateGamePayload struct {
	NumberOfDetectives int `json:"number_of_detectives"`
}

type JoinGamePayload struct {
	ID string `json:"id"`
}

type MisterXMovePayload struct {
	StationID     uint8  `json:"station_id"`
	TransportType string `json:"transport_type"`
}

type MoveDetectivePayload struct {
	Color         string `json:"color"`
	StationID     uint8  `json:"station_id"`
	TransportType string `json:"transport_type"`
}

// Server -> client payloads.

type ErrorPayload struct {
	Message string `json:"message"`
}

type GamePayload struct {
	ID string `json:"id"`
}

type GameStartedPayload struct {
	Role string `json:"role"`
}

type StartMovePayload struct {
	Role string `json:"role"`
}

type AvailableTransport struct {
	Taxi        int `json:"taxi"`
	Bus         int `json:"bus"`
	Underground int `json:"underground"`
}

type PlayerState struct {
	Color               string             `json:"color"`
	StationID           uint8              `json:"station_id"`
	AvailableTransport  AvailableTransport `json:"available_transport"`
}

type MisterXAbilities struct {
	DoubleMove int `json:"double_move"`
	Hidden     int `json:"hidden"`
}

type MisterXState struct {
	StationID *uint8           `json:"station_id,omitempty"`
	Abilities MisterXAbilities `json:"abilities"`
	Moves     []string         `json:"moves"`
}

type GameStatePayload struct {
	Players []PlayerState `json:"players"`
	MisterX MisterXState  `json:"mister_x"`
	Round   uint8         `json:"round"`
}

type GameEndedPayload struct {
	Winner string `json:"winner"`
}

// Encode wraps a payload value into a type-tagged envelope, ready to be sent
// as a single websocket TextMessage frame.
func Encode(typ string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode %s payload: %w", typ, err)
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: typ, Payload: raw})
}

// Decode parses a raw inbound frame into its envelope. The caller dispatches
// on Type and unmarshals Payload into the matching struct.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("protocol: decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("protocol: missing type")
	}
	return env, nil
}

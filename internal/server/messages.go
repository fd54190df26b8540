package server

import (
	"encoding/json"

	"gambit-server/internal/game"
)

// Inbound push-message kinds. Anything else is rejected as malformed.
const (
	MsgJoinGame        = "JOIN_GAME"
	MsgMoveRequest     = "MOVE_REQUEST"
	MsgCardPlayRequest = "CARD_PLAY_REQUEST"
	MsgPing            = "PING"
)

// Outbound push-message kinds beyond the game.UpdateType events.
const (
	MsgSessionState = "SESSION_STATE"
	MsgError        = "ERROR"
	MsgPong         = "PONG"
)

type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type JoinGamePayload struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

type MovePayload struct {
	From game.Pos `json:"from"`
	To   game.Pos `json:"to"`
}

type MoveRequestPayload struct {
	SessionID string      `json:"sessionId"`
	Move      MovePayload `json:"move"`
}

type CardPlayRequestPayload struct {
	SessionID     string   `json:"sessionId"`
	PiecePosition game.Pos `json:"piecePosition"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

package server

import "gambit-server/internal/game"

// ============================================================================
// REST REQUESTS / RESPONSES
// ============================================================================

type CreateSessionResponse struct {
	SessionID string        `json:"sessionId"`
	Session   *game.Session `json:"session"`
}

type JoinRequest struct {
	PlayerID string     `json:"playerId"`
	Color    game.Color `json:"color"`
}

type MoveRequest struct {
	PlayerID string   `json:"playerId"`
	From     game.Pos `json:"from"`
	To       game.Pos `json:"to"`
}

type PlayCardRequest struct {
	PlayerID      string   `json:"playerId"`
	PiecePosition game.Pos `json:"piecePosition"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Sessions    int    `json:"sessions"`
	Connections int    `json:"connections"`
}

package game

// UpdateType tags a state-change notification fanned out to every connection
// of one session.
type UpdateType string

const (
	UpdateMove               UpdateType = "MOVE"
	UpdateCardPlay           UpdateType = "CARD_PLAY"
	UpdatePlayerJoined       UpdateType = "PLAYER_JOINED"
	UpdatePlayerDisconnected UpdateType = "PLAYER_DISCONNECTED"

	// UpdateGameEnd is reserved; no command in this core emits it yet.
	UpdateGameEnd UpdateType = "GAME_END"
)

// Update describes one accepted state change. Updates for a session are
// produced in the order their commands were applied.
type Update struct {
	SessionID string
	Type      UpdateType
	Data      any
}

type MoveData struct {
	From  Pos   `json:"from"`
	To    Pos   `json:"to"`
	Piece Piece `json:"piece"`
}

type CardPlayData struct {
	PiecePosition Pos  `json:"piecePosition"`
	Card          Card `json:"card"`
}

type PlayerData struct {
	PlayerID string `json:"playerId"`
}

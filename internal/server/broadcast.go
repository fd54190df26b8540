package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"gambit-server/internal/game"
)

// Broadcast delivers an update to every connection subscribed to the
// update's session. A failed or slow recipient is logged and skipped; it
// never aborts delivery to the rest.
func (s *Server) Broadcast(update game.Update) {
	s.broadcastExcept(update, "")
}

// broadcastExcept skips one player, used for events that only the rest of the
// session should see (PLAYER_JOINED, PLAYER_DISCONNECTED).
func (s *Server) broadcastExcept(update game.Update, excludePlayerID string) {
	msg := ServerMessage{Type: string(update.Type), Payload: update.Data}

	for _, entry := range s.connections.ForSession(update.SessionID) {
		if excludePlayerID != "" && entry.PlayerID == excludePlayerID {
			continue
		}
		if err := s.send(entry.Conn, msg); err != nil {
			s.log.Warn("broadcast delivery failed",
				zap.String("sessionId", update.SessionID),
				zap.String("playerId", entry.PlayerID),
				zap.String("event", string(update.Type)),
				zap.Error(err))
		}
	}
}

// send writes one message with the configured per-recipient timeout.
func (s *Server) send(conn *websocket.Conn, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Type, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BroadcastTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

// sendError reports a rejected or malformed command to the sender only.
func (s *Server) sendError(conn *websocket.Conn, err error) {
	payload := ErrorPayload{Message: err.Error()}

	var cmdErr *game.CommandError
	if errors.As(err, &cmdErr) {
		payload.Code = cmdErr.Code
		payload.Message = cmdErr.Message
	}

	if sendErr := s.send(conn, ServerMessage{Type: MsgError, Payload: payload}); sendErr != nil {
		s.log.Debug("failed to send error reply", zap.Error(sendErr))
	}
}

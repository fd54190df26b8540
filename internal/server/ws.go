package server

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gambit-server/internal/game"
)

var errNotJoined = &game.CommandError{
	Code:    "NOT_JOINED",
	Class:   game.ClassPreconditionFailed,
	Message: "connection has not joined a session",
}

var errRateLimited = &game.CommandError{
	Code:    "RATE_LIMITED",
	Class:   game.ClassPreconditionFailed,
	Message: "too many messages, slow down",
}

// websocketHandler runs the push surface: accept connection, receive
// messages, dispatch them, and clean up on close.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.AllowedOrigins,
	})
	if err != nil {
		s.log.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "server closing")

	ctx := r.Context()
	connectionID := uuid.New().String()
	s.health.Track(connectionID, socket)
	s.log.Info("connection opened", zap.String("connectionId", connectionID))

	defer func() {
		s.limiter.RemoveConnection(connectionID)
		s.health.Remove(connectionID)
		s.log.Info("connection closed", zap.String("connectionId", connectionID))

		// The disconnect notification goes to the rest of the player's
		// session; the entry itself is already gone, so a plain broadcast
		// cannot reach the closed socket.
		if entry, ok := s.connections.UnregisterConn(socket); ok {
			s.Broadcast(game.Update{
				SessionID: entry.SessionID,
				Type:      game.UpdatePlayerDisconnected,
				Data:      game.PlayerData{PlayerID: entry.PlayerID},
			})
		}
	}()

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		s.health.Touch(connectionID)
		if !s.limiter.Allow(connectionID) {
			s.sendError(socket, errRateLimited)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(socket, game.ErrInvalidPayload)
			continue
		}

		// Closed dispatch: unknown kinds are malformed input, reported to
		// the sender only, and never touch session state.
		switch msg.Type {
		case MsgPing:
			if err := s.send(socket, ServerMessage{Type: MsgPong, Payload: struct{}{}}); err != nil {
				s.log.Debug("pong failed", zap.Error(err))
			}

		case MsgJoinGame:
			s.handleJoinGame(socket, msg.Payload)

		case MsgMoveRequest:
			s.handleMoveRequest(socket, msg.Payload)

		case MsgCardPlayRequest:
			s.handleCardPlayRequest(socket, msg.Payload)

		default:
			s.sendError(socket, game.ErrInvalidPayload)
		}
	}
}

// handleJoinGame subscribes the connection to a session's updates. The reply
// carries a full state snapshot so the client can render immediately; the
// rest of the session learns about the new player via PLAYER_JOINED.
func (s *Server) handleJoinGame(socket *websocket.Conn, payload json.RawMessage) {
	var req JoinGamePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.SessionID == "" || req.PlayerID == "" {
		s.sendError(socket, game.ErrInvalidPayload)
		return
	}

	var snapshot json.RawMessage
	err := s.sessions.With(req.SessionID, func(session *game.Session) error {
		var marshalErr error
		snapshot, marshalErr = json.Marshal(session)
		return marshalErr
	})
	if err != nil {
		s.sendError(socket, err)
		return
	}

	s.connections.Register(req.PlayerID, req.SessionID, socket)
	s.log.Info("player subscribed",
		zap.String("sessionId", req.SessionID),
		zap.String("playerId", req.PlayerID))

	if err := s.send(socket, ServerMessage{Type: MsgSessionState, Payload: snapshot}); err != nil {
		s.log.Debug("session state reply failed", zap.Error(err))
	}

	s.broadcastExcept(game.Update{
		SessionID: req.SessionID,
		Type:      game.UpdatePlayerJoined,
		Data:      game.PlayerData{PlayerID: req.PlayerID},
	}, req.PlayerID)
}

func (s *Server) handleMoveRequest(socket *websocket.Conn, payload json.RawMessage) {
	var req MoveRequestPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.SessionID == "" {
		s.sendError(socket, game.ErrInvalidPayload)
		return
	}

	entry, ok := s.connections.ByConn(socket)
	if !ok {
		s.sendError(socket, errNotJoined)
		return
	}

	_, err := s.applyCommand(req.SessionID, func(session *game.Session) (game.Update, error) {
		return session.Move(entry.PlayerID, req.Move.From, req.Move.To)
	}, true)
	if err != nil {
		s.sendError(socket, err)
	}
}

func (s *Server) handleCardPlayRequest(socket *websocket.Conn, payload json.RawMessage) {
	var req CardPlayRequestPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.SessionID == "" {
		s.sendError(socket, game.ErrInvalidPayload)
		return
	}

	_, err := s.applyCommand(req.SessionID, func(session *game.Session) (game.Update, error) {
		return session.PlayCard(req.PiecePosition)
	}, true)
	if err != nil {
		s.sendError(socket, err)
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gambit-server/internal/game"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.websocketHandler)

	r.Post("/sessions", s.handleCreateSession)
	r.Get("/sessions/{id}", s.handleGetSession)
	r.Post("/sessions/{id}/join", s.handleJoin)
	r.Post("/sessions/{id}/move", s.handleMove)
	r.Post("/sessions/{id}/play-card", s.handlePlayCard)

	return s.corsMiddleware(r)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Sessions:    s.sessions.Count(),
		Connections: s.connections.Count(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.Create()
	s.log.Info("session created", zap.String("sessionId", session.ID))

	s.writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: session.ID,
		Session:   session,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var snapshot []byte
	err := s.sessions.With(id, func(session *game.Session) error {
		// Marshal under the session lock so a concurrent command cannot
		// produce a torn read.
		var marshalErr error
		snapshot, marshalErr = json.Marshal(session)
		return marshalErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(snapshot); err != nil {
		s.log.Debug("write response", zap.Error(err))
	}
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, game.ErrInvalidPayload)
		return
	}

	snapshot, err := s.applyCommand(id, func(session *game.Session) (game.Update, error) {
		return session.Join(req.PlayerID, req.Color)
	}, false)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.log.Info("player joined",
		zap.String("sessionId", id),
		zap.String("playerId", req.PlayerID),
		zap.String("color", string(req.Color)))
	s.writeRawJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, game.ErrInvalidPayload)
		return
	}

	snapshot, err := s.applyCommand(id, func(session *game.Session) (game.Update, error) {
		return session.Move(req.PlayerID, req.From, req.To)
	}, true)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeRawJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handlePlayCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PlayCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, game.ErrInvalidPayload)
		return
	}

	snapshot, err := s.applyCommand(id, func(session *game.Session) (game.Update, error) {
		return session.PlayCard(req.PiecePosition)
	}, true)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeRawJSON(w, http.StatusOK, snapshot)
}

// applyCommand runs one command under the session lock, snapshots the
// resulting state for the synchronous reply, and optionally broadcasts the
// update. Broadcasting inside the lock keeps updates in command order.
func (s *Server) applyCommand(sessionID string, cmd func(*game.Session) (game.Update, error), broadcast bool) ([]byte, error) {
	var snapshot []byte

	err := s.sessions.With(sessionID, func(session *game.Session) error {
		update, err := cmd(session)
		if err != nil {
			return err
		}

		snapshot, err = json.Marshal(session)
		if err != nil {
			return err
		}

		if broadcast {
			s.Broadcast(update)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Debug("write response", zap.Error(err))
	}
}

func (s *Server) writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.log.Debug("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var cmdErr *game.CommandError
	if !errors.As(err, &cmdErr) {
		s.log.Error("internal error", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL",
			Message: "internal server error",
		})
		return
	}

	status := http.StatusBadRequest
	switch cmdErr.Class {
	case game.ClassNotFound:
		status = http.StatusNotFound
	case game.ClassPreconditionFailed, game.ClassResourceExhausted:
		status = http.StatusConflict
	case game.ClassMalformedInput:
		status = http.StatusBadRequest
	}

	s.writeJSON(w, status, ErrorResponse{Code: cmdErr.Code, Message: cmdErr.Message})
}

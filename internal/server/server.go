package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// Server owns the process-wide registries and the ambient services the
// handlers share. All game state is memory-resident and lost on restart.
type Server struct {
	cfg         Config
	log         *zap.Logger
	sessions    *SessionRegistry
	connections *ConnectionRegistry
	limiter     *RateLimiter
	health      *ConnectionHealth

	done chan struct{}
}

// New builds a Server with fresh registries. Tests construct one per case for
// isolation; main constructs exactly one.
func New(cfg Config, log *zap.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		log:         log,
		sessions:    NewSessionRegistry(),
		connections: NewConnectionRegistry(),
		limiter:     NewRateLimiter(cfg.RateLimitMessages, cfg.RateLimitWindow),
		health:      NewConnectionHealth(),
		done:        make(chan struct{}),
	}
	return s
}

// NewHTTPServer wires a Server into an http.Server and starts its background
// sweep of idle connections.
func NewHTTPServer(cfg Config, log *zap.Logger) (*Server, *http.Server) {
	s := New(cfg, log)
	go s.sweepTask()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, httpServer
}

// Shutdown stops background tasks and closes every live push connection.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.done)

	for _, entry := range s.connections.All() {
		if err := entry.Conn.Close(websocket.StatusGoingAway, "server shutting down"); err != nil {
			s.log.Debug("close connection on shutdown",
				zap.String("playerId", entry.PlayerID), zap.Error(err))
		}
	}
	return nil
}

// sweepTask periodically closes connections that have been idle longer than
// the configured timeout. Closing the socket unwinds the read loop, which
// performs the usual unregister-and-notify path.
func (s *Server) sweepTask() {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			for _, id := range s.health.InactiveConnections(s.cfg.ConnIdleTimeout) {
				conn := s.health.ConnFor(id)
				if conn == nil {
					s.health.Remove(id)
					continue
				}
				s.log.Info("closing idle connection", zap.String("connectionId", id))
				_ = conn.Close(websocket.StatusGoingAway, "idle timeout")
			}
		}
	}
}

package server

import (
	"sync"

	"github.com/coder/websocket"
)

// ConnectionEntry binds a player identity to a live push connection and the
// session it subscribed to. The socket is borrowed from the transport layer,
// never owned here.
type ConnectionEntry struct {
	PlayerID  string
	SessionID string
	Conn      *websocket.Conn
}

// ConnectionRegistry is the process-wide map of live player connections, one
// entry per connected player.
type ConnectionRegistry struct {
	mu       sync.RWMutex
	byPlayer map[string]ConnectionEntry
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		byPlayer: make(map[string]ConnectionEntry),
	}
}

// Register upserts the entry for playerID, overwriting any prior connection
// that player had.
func (r *ConnectionRegistry) Register(playerID, sessionID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPlayer[playerID] = ConnectionEntry{
		PlayerID:  playerID,
		SessionID: sessionID,
		Conn:      conn,
	}
}

// UnregisterConn removes the entry holding the given socket, if any. At most
// one entry is removed per call.
func (r *ConnectionRegistry) UnregisterConn(conn *websocket.Conn) (ConnectionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for playerID, entry := range r.byPlayer {
		if entry.Conn == conn {
			delete(r.byPlayer, playerID)
			return entry, true
		}
	}
	return ConnectionEntry{}, false
}

// ByConn returns the entry holding the given socket.
func (r *ConnectionRegistry) ByConn(conn *websocket.Conn) (ConnectionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.byPlayer {
		if entry.Conn == conn {
			return entry, true
		}
	}
	return ConnectionEntry{}, false
}

// ForSession returns every entry subscribed to sessionID, in registry
// iteration order. No cross-recipient ordering is promised.
func (r *ConnectionRegistry) ForSession(sessionID string) []ConnectionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]ConnectionEntry, 0, len(r.byPlayer))
	for _, entry := range r.byPlayer {
		if entry.SessionID == sessionID {
			entries = append(entries, entry)
		}
	}
	return entries
}

// All returns every live entry.
func (r *ConnectionRegistry) All() []ConnectionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]ConnectionEntry, 0, len(r.byPlayer))
	for _, entry := range r.byPlayer {
		entries = append(entries, entry)
	}
	return entries
}

func (r *ConnectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPlayer)
}

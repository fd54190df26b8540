package server

import (
	"sync"

	"github.com/google/uuid"

	"gambit-server/internal/game"
)

// sessionEntry pairs a session with the mutex that linearizes every command
// applied to it.
type sessionEntry struct {
	mu      sync.Mutex
	session *game.Session
}

// SessionRegistry is the process-wide map from session id to session. The
// registry lock only guards map structure; session content is guarded by the
// per-session mutex, so commands against different sessions run in parallel.
type SessionRegistry struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		entries: make(map[string]*sessionEntry),
	}
}

// Create builds and stores a fresh waiting session. Sessions live for the
// process lifetime; there is no deletion path.
func (r *SessionRegistry) Create() *game.Session {
	session := game.NewSession(uuid.New().String())

	r.mu.Lock()
	r.entries[session.ID] = &sessionEntry{session: session}
	r.mu.Unlock()

	return session
}

// With runs fn with exclusive access to the session, serializing it against
// every other command targeting the same id. Returns ErrSessionNotFound for
// unknown ids; that is an expected outcome, not a defect.
func (r *SessionRegistry) With(id string, fn func(*game.Session) error) error {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		return game.ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

package server

import (
	"sync"
	"time"

	"github.com/coder/websocket"
)

// RateLimiter throttles inbound push messages per connection using a sliding
// window, so one abusive client cannot affect others.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	requests    map[string][]time.Time // connectionID -> recent message times
	mu          sync.Mutex
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[string][]time.Time),
	}
}

// Allow reports whether the connection may send another message now.
func (r *RateLimiter) Allow(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	timestamps := r.requests[connectionID]
	valid := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= r.maxRequests {
		r.requests[connectionID] = valid
		return false
	}

	valid = append(valid, now)
	r.requests[connectionID] = valid
	return true
}

// RemoveConnection drops rate-limit state for a closed connection.
func (r *RateLimiter) RemoveConnection(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, connectionID)
}

// ConnectionHealth records last-activity times for live push connections so
// the sweep task can close dead ones.
type ConnectionHealth struct {
	mu           sync.RWMutex
	lastActivity map[string]time.Time
	conns        map[string]*websocket.Conn
}

func NewConnectionHealth() *ConnectionHealth {
	return &ConnectionHealth{
		lastActivity: make(map[string]time.Time),
		conns:        make(map[string]*websocket.Conn),
	}
}

// Track registers a connection and marks it active.
func (h *ConnectionHealth) Track(connectionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastActivity[connectionID] = time.Now()
	h.conns[connectionID] = conn
}

// Touch records activity; called on every inbound message.
func (h *ConnectionHealth) Touch(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.lastActivity[connectionID]; ok {
		h.lastActivity[connectionID] = time.Now()
	}
}

// InactiveConnections returns ids idle longer than timeout.
func (h *ConnectionHealth) InactiveConnections(timeout time.Duration) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := time.Now()
	inactive := make([]string, 0)
	for id, last := range h.lastActivity {
		if now.Sub(last) > timeout {
			inactive = append(inactive, id)
		}
	}
	return inactive
}

// ConnFor returns the tracked socket for a connection id, or nil.
func (h *ConnectionHealth) ConnFor(connectionID string) *websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[connectionID]
}

// Remove drops tracking for a closed connection.
func (h *ConnectionHealth) Remove(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.lastActivity, connectionID)
	delete(h.conns, connectionID)
}

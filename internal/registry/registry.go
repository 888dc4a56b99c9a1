// Package registry tracks the live sessions and panes known to the
// control bus: their ids, parent/child relationship, and per-pane
// connection state, with collision-free memorable name generation when
// a caller doesn't supply an explicit id.
package registry

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// SessionInfo describes one session and the ids of its panes, in
// creation order.
type SessionInfo struct {
	ID        string
	CreatedAt time.Time
	Panes     []string
}

// PaneInfo describes one pane within a session.
type PaneInfo struct {
	ID                string
	SessionID         string
	TerminalConnected bool
}

type paneKey struct {
	sessionID string
	paneID    string
}

// Registry is the in-memory store of sessions and panes. All methods
// are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*SessionInfo
	panes    map[paneKey]*PaneInfo
	rng      *rand.Rand
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[string]*SessionInfo),
		panes:    make(map[paneKey]*PaneInfo),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var adjectives = []string{
	"libre", "syno", "quick", "bold", "bright", "smart", "clear", "fresh", "prime",
	"swift", "noble", "grand", "vital", "keen",
}

var colors = []string{
	"red", "blue", "green", "gold", "silver", "blond", "azure", "coral", "amber",
	"pearl", "ruby", "jade", "onyx",
}

// generateMemorableName builds a name of the form "{adjective}-{color}{digit}",
// at most 15 characters (e.g. "bright-silver9").
func (r *Registry) generateMemorableName() string {
	adj := adjectives[r.rng.Intn(len(adjectives))]
	color := colors[r.rng.Intn(len(colors))]
	digit := 1 + r.rng.Intn(9)
	return fmt.Sprintf("%s-%s%d", adj, color, digit)
}

// generateSessionNameLocked returns a memorable name not already in use by a
// session, retrying on collision. Caller must hold r.mu.
func (r *Registry) generateSessionNameLocked() string {
	for {
		name := r.generateMemorableName()
		if _, exists := r.sessions[name]; !exists {
			return name
		}
	}
}

// generatePaneNameLocked returns a memorable name not already in use by
// a pane within sessionID, retrying on collision. Caller must hold r.mu.
func (r *Registry) generatePaneNameLocked(sessionID string) string {
	for {
		name := r.generateMemorableName()
		if _, exists := r.panes[paneKey{sessionID, name}]; !exists {
			return name
		}
	}
}

// CreateSession creates a session, using name if non-empty, else
// generating a memorable one. Returns an error if name is already in
// use.
func (r *Registry) CreateSession(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessionID := name
	if sessionID == "" {
		sessionID = r.generateSessionNameLocked()
	} else if _, exists := r.sessions[sessionID]; exists {
		return "", fmt.Errorf("registry: session %q already exists", sessionID)
	}

	r.sessions[sessionID] = &SessionInfo{
		ID:        sessionID,
		CreatedAt: time.Now(),
		Panes:     nil,
	}
	return sessionID, nil
}

// CreatePane creates a pane within sessionID, using name if non-empty,
// else generating a memorable one. Returns an error if the session
// doesn't exist or the pane id is already in use within it.
func (r *Registry) CreatePane(sessionID, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return "", fmt.Errorf("registry: session %q not found", sessionID)
	}

	paneID := name
	if paneID == "" {
		paneID = r.generatePaneNameLocked(sessionID)
	} else if _, exists := r.panes[paneKey{sessionID, paneID}]; exists {
		return "", fmt.Errorf("registry: pane %q already exists in session %q", paneID, sessionID)
	}

	r.panes[paneKey{sessionID, paneID}] = &PaneInfo{
		ID:        paneID,
		SessionID: sessionID,
	}
	session.Panes = append(session.Panes, paneID)
	return paneID, nil
}

// ListSessions returns all known session ids, in no particular order.
func (r *Registry) ListSessions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	return out
}

// ListPanes returns the pane ids of sessionID, in creation order. The
// second return value is false if the session doesn't exist.
func (r *Registry) ListPanes(sessionID string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}
	out := make([]string, len(session.Panes))
	copy(out, session.Panes)
	return out, true
}

// GetSession returns a copy of a session's info.
func (r *Registry) GetSession(sessionID string) (SessionInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return SessionInfo{}, false
	}
	cp := *s
	cp.Panes = append([]string(nil), s.Panes...)
	return cp, true
}

// GetPane returns a copy of a pane's info.
func (r *Registry) GetPane(sessionID, paneID string) (PaneInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.panes[paneKey{sessionID, paneID}]
	if !ok {
		return PaneInfo{}, false
	}
	return *p, true
}

// SetPaneConnected updates a pane's terminal-connected flag.
func (r *Registry) SetPaneConnected(sessionID, paneID string, connected bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.panes[paneKey{sessionID, paneID}]
	if !ok {
		return false
	}
	p.TerminalConnected = connected
	return true
}

// RemovePane removes a single pane from its session.
func (r *Registry) RemovePane(sessionID, paneID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := paneKey{sessionID, paneID}
	if _, ok := r.panes[key]; !ok {
		return fmt.Errorf("registry: pane %q not found in session %q", paneID, sessionID)
	}
	delete(r.panes, key)
	if session, ok := r.sessions[sessionID]; ok {
		session.Panes = removeString(session.Panes, paneID)
	}
	return nil
}

// RemoveSession removes a session and cascades the removal to all of
// its panes.
func (r *Registry) RemoveSession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("registry: session %q not found", sessionID)
	}
	for _, paneID := range session.Panes {
		delete(r.panes, paneKey{sessionID, paneID})
	}
	delete(r.sessions, sessionID)
	return nil
}

func removeString(items []string, target string) []string {
	out := items[:0]
	for _, item := range items {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}

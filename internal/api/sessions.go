package api

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/perceptlab/brain-trainer-go/internal/engine"
	"github.com/perceptlab/brain-trainer-go/internal/games"
)

// session is one mounted game: an engine instance plus the websocket
// watchers that re-render on every state change. Engines are never
// shared between sessions.
type session struct {
	id  string
	eng *engine.Engine

	mu       sync.Mutex
	watchers map[*websocket.Conn]struct{}
}

// broadcast pushes a snapshot to every watcher. It runs on the engine's
// change hook, outside the engine lock; the session lock also
// serializes websocket writes.
func (s *session) broadcast(snap engine.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.watchers {
		if err := conn.WriteJSON(snap); err != nil {
			conn.Close()
			delete(s.watchers, conn)
		}
	}
}

func (s *session) addWatcher(conn *websocket.Conn) {
	s.mu.Lock()
	s.watchers[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *session) removeWatcher(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.watchers, conn)
	s.mu.Unlock()
}

func (s *session) closeWatchers() {
	s.mu.Lock()
	for conn := range s.watchers {
		conn.Close()
	}
	s.watchers = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()
}

// SessionManager owns all live sessions, keyed by uuid.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewSessionManager creates an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*session)}
}

// Create mounts a game and returns its new session. A non-zero pairs
// value selects the deck size for the memory game and is rejected for
// every other game.
func (m *SessionManager) Create(gameID string, pairs int) (*session, error) {
	game, ok := games.Get(gameID)
	if !ok {
		return nil, fmt.Errorf("unknown game %q", gameID)
	}
	if pairs != 0 {
		if gameID != "memory" {
			return nil, fmt.Errorf("game %q does not take a pairs option", gameID)
		}
		if pairs < 1 || pairs > 12 {
			return nil, fmt.Errorf("pairs must be between 1 and 12, got %d", pairs)
		}
		game = games.NewMemoryGame(pairs)
	}

	s := &session{
		id:       uuid.NewString(),
		watchers: make(map[*websocket.Conn]struct{}),
	}
	s.eng = engine.New(game, engine.WithOnChange(s.broadcast))

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s, nil
}

// Get looks up a session by id.
func (m *SessionManager) Get(id string) (*session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete unmounts a session: pending clocks are cancelled and watchers
// are disconnected.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.eng.Reset()
		s.closeWatchers()
	}
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

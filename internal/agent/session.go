package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxSessionTurns caps the conversation kept per session; older turns are
// dropped from the front.
const maxSessionTurns = 15

// Turn is one user or assistant message in a conversation.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Session represents a conversation session.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	Turns        []Turn    `json:"turns"`
	mu           sync.RWMutex
}

// AddTurn appends a turn, trimming to the most recent maxSessionTurns.
func (s *Session) AddTurn(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Turns = append(s.Turns, Turn{Role: role, Content: content, At: time.Now()})
	if len(s.Turns) > maxSessionTurns {
		s.Turns = s.Turns[len(s.Turns)-maxSessionTurns:]
	}
	s.LastActivity = time.Now()
}

// GetTurns returns a copy of the session's turns.
func (s *Session) GetTurns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return turns
}

// SessionManager manages in-memory conversation sessions.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	maxAge   time.Duration
}

// NewSessionManager creates a session manager that expires idle sessions
// after maxAge.
func NewSessionManager(maxAge time.Duration) *SessionManager {
	sm := &SessionManager{
		sessions: make(map[string]*Session),
		maxAge:   maxAge,
	}

	go sm.cleanupExpired()

	return sm
}

// CreateSession creates a new session for a user.
func (sm *SessionManager) CreateSession(ctx context.Context, userID string) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session := &Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
		Turns:        []Turn{},
	}

	sm.sessions[session.ID] = session
	return session, nil
}

// GetSession retrieves a session by ID.
func (sm *SessionManager) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, fmt.Errorf("session not found")
	}

	return session, nil
}

// DeleteSession deletes a session.
func (sm *SessionManager) DeleteSession(ctx context.Context, sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.sessions, sessionID)
	return nil
}

// ListUserSessions returns all sessions for a user.
func (sm *SessionManager) ListUserSessions(ctx context.Context, userID string) ([]*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var sessions []*Session
	for _, session := range sm.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}

	return sessions, nil
}

// cleanupExpired removes sessions idle for longer than maxAge.
func (sm *SessionManager) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		sm.mu.Lock()
		now := time.Now()
		for id, session := range sm.sessions {
			if now.Sub(session.LastActivity) > sm.maxAge {
				delete(sm.sessions, id)
			}
		}
		sm.mu.Unlock()
	}
}

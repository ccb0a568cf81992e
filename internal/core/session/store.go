package session

import (
	"sync"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

// Store keys sessions by user id. Each session carries its own lock so
// concurrent requests from the same user serialize against each other
// without serializing unrelated users.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the user's session, creating it on first use. Sessions live
// for the remainder of the process; there is no eviction.
func (s *Store) Get(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{}
		s.sessions[userID] = sess
	}
	return sess
}

// Len reports the number of known users.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Session is one user's ordered turn log. Turns are only appended; the
// decay window is applied by readers.
type Session struct {
	mu    sync.Mutex
	turns []domain.Turn
}

// AppendUser records a user turn and returns a snapshot of the history
// including it, so the caller weights a consistent view even under
// concurrent appends.
func (s *Session) AppendUser(content string) []domain.Turn {
	return s.append(domain.TurnRoleUser, content)
}

// AppendAssistant records an assistant turn.
func (s *Session) AppendAssistant(content string) {
	s.append(domain.TurnRoleAssistant, content)
}

func (s *Session) append(role, content string) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, domain.Turn{Role: role, Content: content})
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Turns returns a copy of the full history.
func (s *Session) Turns() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

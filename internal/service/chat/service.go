package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	"github.com/zhouzirui/talktonic/backend/internal/service/ai"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownTheme    = errors.New("unknown theme")
)

// Service keeps the live sessions of this process. Each session owns its own
// log and staged input.
type Service struct {
	completer ai.Completer

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService bootstraps the in-memory session registry.
func NewService(completer ai.Completer) *Service {
	return &Service{
		completer: completer,
		sessions:  make(map[string]*Session),
	}
}

// CreateSession provisions a session. An empty themeID selects the default theme.
func (s *Service) CreateSession(_ context.Context, themeID theme.ID) (*Session, error) {
	if themeID != "" && !themeID.Valid() {
		return nil, ErrUnknownTheme
	}

	session := NewSession(uuid.NewString(), s.completer)
	if themeID != "" {
		session.theme = themeID
	}

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier and marks it as used.
func (s *Service) GetSession(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.touch()
	return session, nil
}

// DeleteSession ends a session and discards its history.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// ListSessions returns the identifiers of live sessions, sorted.
func (s *Service) ListSessions(_ context.Context) []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// SweepIdle removes sessions last used before cutoff and returns how many were
// dropped. Sessions with a submission in flight or an attached listener stay.
func (s *Service) SweepIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		since, ok := session.idleSince()
		if ok && since.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/pkg/errno"
)

// SessionStore is an in-memory implementation of repo.SessionRepository.
// Sessions are stored as snapshots so later changes by the caller are only
// visible after Update.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

// NewSessionStore creates a new instance of the SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entity.Session),
	}
}

func (s *SessionStore) Create(_ context.Context, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*entity.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, errno.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *SessionStore) Update(_ context.Context, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return errno.ErrSessionNotFound
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return errno.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) List(_ context.Context) ([]*entity.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

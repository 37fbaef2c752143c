package memory

import (
	"context"
	"sync"

	"github.com/berrym/lair-chat/internal/errs"
	"github.com/berrym/lair-chat/internal/types"
)

type sessionStore struct {
	mu       sync.RWMutex
	byID     map[string]*types.Session
	byToken  map[string]string // token -> id
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		byID:    make(map[string]*types.Session),
		byToken: make(map[string]string),
	}
}

func (s *sessionStore) Create(ctx context.Context, sess *types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byToken[sess.Token]; exists {
		return errs.Duplicate("session", "token already issued")
	}
	cp := *sess
	s.byID[sess.ID] = &cp
	s.byToken[sess.Token] = sess.ID
	return nil
}

func (s *sessionStore) Get(ctx context.Context, id string) (*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil, errs.NotFound("session", id)
	}
	cp := *sess
	return &cp, nil
}

func (s *sessionStore) GetByToken(ctx context.Context, token string) (*types.Session, error) {
	s.mu.RLock()
	id, ok := s.byToken[token]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.NotFound("session", "token")
	}
	return s.Get(ctx, id)
}

func (s *sessionStore) TouchActivity(ctx context.Context, id string, at uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return errs.NotFound("session", id)
	}
	sess.LastActivity = at
	return nil
}

func (s *sessionStore) UpdateMetadata(ctx context.Context, id string, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return errs.NotFound("session", id)
	}
	sess.Metadata = metadata
	return nil
}

func (s *sessionStore) Deactivate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return errs.NotFound("session", id)
	}
	sess.IsActive = false
	return nil
}

func (s *sessionStore) DeactivateAllForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.byID {
		if sess.UserID == userID {
			sess.IsActive = false
		}
	}
	return nil
}

func (s *sessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return errs.NotFound("session", id)
	}
	delete(s.byToken, sess.Token)
	delete(s.byID, id)
	return nil
}

func (s *sessionStore) CleanupExpired(ctx context.Context, now uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.byID {
		if sess.ExpiresAt <= now {
			delete(s.byToken, sess.Token)
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}

func (s *sessionStore) Stats(ctx context.Context) (active int, total int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.byID {
		total++
		if sess.IsActive {
			active++
		}
	}
	return active, total, nil
}

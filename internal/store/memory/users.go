package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/berrym/lair-chat/internal/errs"
	"github.com/berrym/lair-chat/internal/store"
	"github.com/berrym/lair-chat/internal/types"
)

type userStore struct {
	mu       sync.RWMutex
	byID     map[string]*types.User
	byName   map[string]string // username -> id, case-sensitive per spec.md §3
	byEmail  map[string]string // email -> id
}

func newUserStore() *userStore {
	return &userStore{
		byID:    make(map[string]*types.User),
		byName:  make(map[string]string),
		byEmail: make(map[string]string),
	}
}

func (s *userStore) Create(ctx context.Context, u *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[u.Username]; exists {
		return errs.Duplicate("user", "username '"+u.Username+"' already exists")
	}
	if u.Email != nil {
		if _, exists := s.byEmail[*u.Email]; exists {
			return errs.Duplicate("user", "email '"+*u.Email+"' already exists")
		}
	}

	cp := *u
	s.byID[u.ID] = &cp
	s.byName[u.Username] = u.ID
	if u.Email != nil {
		s.byEmail[*u.Email] = u.ID
	}
	return nil
}

func (s *userStore) Get(ctx context.Context, id string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, errs.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*types.User, error) {
	s.mu.RLock()
	id, ok := s.byName[username]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.NotFound("user", username)
	}
	return s.Get(ctx, id)
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.NotFound("user", email)
	}
	return s.Get(ctx, id)
}

func (s *userStore) Update(ctx context.Context, u *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return errs.NotFound("user", u.ID)
	}
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func (s *userStore) mutate(id string, fn func(u *types.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return errs.NotFound("user", id)
	}
	fn(u)
	return nil
}

func (s *userStore) UpdateLastSeen(ctx context.Context, id string, lastSeen uint64) error {
	return s.mutate(id, func(u *types.User) { u.LastSeen = &lastSeen })
}

func (s *userStore) UpdatePassword(ctx context.Context, id, passwordHash, salt string) error {
	return s.mutate(id, func(u *types.User) {
		u.PasswordHash = passwordHash
		u.Salt = salt
	})
}

func (s *userStore) UpdateProfile(ctx context.Context, id string, profile types.UserProfile) error {
	return s.mutate(id, func(u *types.User) { u.Profile = profile })
}

func (s *userStore) UpdateSettings(ctx context.Context, id string, settings types.UserSettings) error {
	return s.mutate(id, func(u *types.User) { u.Settings = settings })
}

func (s *userStore) UpdateRole(ctx context.Context, id string, role types.Role) error {
	return s.mutate(id, func(u *types.User) { u.Role = role })
}

func (s *userStore) SetActive(ctx context.Context, id string, active bool) error {
	return s.mutate(id, func(u *types.User) { u.IsActive = active })
}

func (s *userStore) ListByRole(ctx context.Context, role types.Role, page store.Page) ([]types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.User
	for _, u := range s.byID {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return paginateUsers(out, page), nil
}

func (s *userStore) ListActiveSince(ctx context.Context, since uint64, page store.Page) ([]types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.User
	for _, u := range s.byID {
		if u.LastSeen != nil && *u.LastSeen >= since {
			out = append(out, *u)
		}
	}
	return paginateUsers(out, page), nil
}

func (s *userStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *userStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byName[username]
	return ok, nil
}

func (s *userStore) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *userStore) Search(ctx context.Context, query string, page store.Page) ([]types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	var out []types.User
	for _, u := range s.byID {
		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.Profile.Status), q) {
			out = append(out, *u)
		}
	}
	return paginateUsers(out, page), nil
}

func paginateUsers(in []types.User, page store.Page) []types.User {
	if page.Offset >= len(in) {
		return nil
	}
	end := len(in)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return in[page.Offset:end]
}

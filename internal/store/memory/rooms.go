package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/berrym/lair-chat/internal/errs"
	"github.com/berrym/lair-chat/internal/store"
	"github.com/berrym/lair-chat/internal/types"
)

type roomStore struct {
	mu        sync.RWMutex
	byID      map[string]*types.Room
	byName    map[string]string // name -> id; enforced unique for active AND inactive rooms
	memberships map[string]*types.RoomMembership // key: roomID+"/"+userID
}

func newRoomStore() *roomStore {
	return &roomStore{
		byID:        make(map[string]*types.Room),
		byName:      make(map[string]string),
		memberships: make(map[string]*types.RoomMembership),
	}
}

func membershipKey(roomID, userID string) string { return roomID + "/" + userID }

func (s *roomStore) Create(ctx context.Context, r *types.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if types.IsLobby(r.Name) {
		return errs.Validation("name", "the literal 'Lobby' is reserved for the virtual room")
	}
	if _, exists := s.byName[r.Name]; exists {
		return errs.Duplicate("room", "room '"+r.Name+"' already exists")
	}
	cp := *r
	s.byID[r.ID] = &cp
	s.byName[r.Name] = r.ID
	return nil
}

func (s *roomStore) Get(ctx context.Context, id string) (*types.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, errs.NotFound("room", id)
	}
	cp := *r
	return &cp, nil
}

func (s *roomStore) GetByName(ctx context.Context, name string) (*types.Room, error) {
	s.mu.RLock()
	id, ok := s.byName[name]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.NotFound("room", name)
	}
	return s.Get(ctx, id)
}

func (s *roomStore) Update(ctx context.Context, r *types.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[r.ID]; !ok {
		return errs.NotFound("room", r.ID)
	}
	cp := *r
	s.byID[r.ID] = &cp
	return nil
}

func (s *roomStore) UpdateSettings(ctx context.Context, id string, settings types.RoomSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return errs.NotFound("room", id)
	}
	r.Settings = settings
	return nil
}

func (s *roomStore) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return errs.NotFound("room", id)
	}
	r.IsActive = active
	return nil
}

func (s *roomStore) List(ctx context.Context, roomType *types.RoomType, page store.Page) ([]types.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Room
	for _, r := range s.byID {
		if roomType != nil && r.Type != *roomType {
			continue
		}
		out = append(out, *r)
	}
	return paginateRooms(out, page), nil
}

func (s *roomStore) Search(ctx context.Context, query string, page store.Page) ([]types.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	var out []types.Room
	for _, r := range s.byID {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.DisplayName), q) ||
			(r.Description != nil && strings.Contains(strings.ToLower(*r.Description), q)) {
			out = append(out, *r)
		}
	}
	return paginateRooms(out, page), nil
}

func (s *roomStore) NameExists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byName[name]
	return ok, nil
}

func (s *roomStore) AddMember(ctx context.Context, m *types.RoomMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey(m.RoomID, m.UserID)
	if existing, ok := s.memberships[key]; ok {
		// A membership add for a user already a member is a no-op success
		// (spec.md §4.4 tie-break).
		existing.IsActive = true
		return nil
	}
	cp := *m
	s.memberships[key] = &cp
	return nil
}

func (s *roomStore) RemoveMember(ctx context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberships, membershipKey(roomID, userID))
	return nil
}

func (s *roomStore) UpdateMemberRole(ctx context.Context, roomID, userID string, role types.MemberRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memberships[membershipKey(roomID, userID)]
	if !ok {
		return errs.NotFound("membership", membershipKey(roomID, userID))
	}
	m.Role = role
	return nil
}

func (s *roomStore) UpdateMemberSettings(ctx context.Context, roomID, userID string, settings map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memberships[membershipKey(roomID, userID)]
	if !ok {
		return errs.NotFound("membership", membershipKey(roomID, userID))
	}
	m.Settings = settings
	return nil
}

func (s *roomStore) GetMembership(ctx context.Context, roomID, userID string) (*types.RoomMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memberships[membershipKey(roomID, userID)]
	if !ok {
		return nil, errs.NotFound("membership", membershipKey(roomID, userID))
	}
	cp := *m
	return &cp, nil
}

func (s *roomStore) ListMembersByRoom(ctx context.Context, roomID string, page store.Page) ([]types.RoomMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.RoomMembership
	for _, m := range s.memberships {
		if m.RoomID == roomID {
			out = append(out, *m)
		}
	}
	return paginateMemberships(out, page), nil
}

func (s *roomStore) ListMembershipsByUser(ctx context.Context, userID string, page store.Page) ([]types.RoomMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.RoomMembership
	for _, m := range s.memberships {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return paginateMemberships(out, page), nil
}

func (s *roomStore) ListMembersActiveSince(ctx context.Context, roomID string, since uint64) ([]types.RoomMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.RoomMembership
	for _, m := range s.memberships {
		if m.RoomID == roomID && m.LastActivity != nil && *m.LastActivity >= since {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *roomStore) CountMembers(ctx context.Context, roomID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.memberships {
		if m.RoomID == roomID {
			n++
		}
	}
	return n, nil
}

func (s *roomStore) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.memberships[membershipKey(roomID, userID)]
	return ok, nil
}

func paginateRooms(in []types.Room, page store.Page) []types.Room {
	if page.Offset >= len(in) {
		return nil
	}
	end := len(in)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return in[page.Offset:end]
}

func paginateMemberships(in []types.RoomMembership, page store.Page) []types.RoomMembership {
	if page.Limit == 0 && page.Offset == 0 {
		return in
	}
	if page.Offset >= len(in) {
		return nil
	}
	end := len(in)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return in[page.Offset:end]
}

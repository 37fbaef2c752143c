package memory

import (
	"context"
	"sync"

	"github.com/berrym/lair-chat/internal/errs"
	"github.com/berrym/lair-chat/internal/types"
)

type invitationStore struct {
	mu   sync.RWMutex
	byID map[string]*types.Invitation
}

func newInvitationStore() *invitationStore {
	return &invitationStore{byID: make(map[string]*types.Invitation)}
}

func (s *invitationStore) Create(ctx context.Context, inv *types.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.RecipientUserID == inv.RecipientUserID && existing.RoomID == inv.RoomID &&
			existing.Status == types.InvitationPending {
			return errs.Duplicate("invitation", "a pending invitation already exists for this recipient and room")
		}
	}
	cp := *inv
	s.byID[inv.ID] = &cp
	return nil
}

func (s *invitationStore) UpdateStatus(ctx context.Context, id string, status types.InvitationStatus, respondedAt uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.byID[id]
	if !ok {
		return errs.NotFound("invitation", id)
	}
	inv.Status = status
	inv.RespondedAt = &respondedAt
	return nil
}

func (s *invitationStore) Get(ctx context.Context, id string) (*types.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.byID[id]
	if !ok {
		return nil, errs.NotFound("invitation", id)
	}
	cp := *inv
	return &cp, nil
}

func (s *invitationStore) Find(ctx context.Context, recipientID, roomID string, status *types.InvitationStatus) (*types.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *types.Invitation
	for _, inv := range s.byID {
		if inv.RecipientUserID != recipientID {
			continue
		}
		if roomID != "" && inv.RoomID != roomID {
			continue
		}
		if status != nil && inv.Status != *status {
			continue
		}
		if best == nil || inv.CreatedAt > best.CreatedAt {
			best = inv
		}
	}
	if best == nil {
		return nil, errs.NotFound("invitation", recipientID+"/"+roomID)
	}
	cp := *best
	return &cp, nil
}

func (s *invitationStore) ListForUser(ctx context.Context, userID string, status types.InvitationStatus) ([]types.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Invitation
	for _, inv := range s.byID {
		if inv.RecipientUserID == userID && inv.Status == status {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *invitationStore) PendingCount(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, inv := range s.byID {
		if inv.RecipientUserID == userID && inv.Status == types.InvitationPending {
			n++
		}
	}
	return n, nil
}

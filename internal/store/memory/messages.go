package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/berrym/lair-chat/internal/errs"
	"github.com/berrym/lair-chat/internal/store"
	"github.com/berrym/lair-chat/internal/types"
)

// indexedMessage is the flat document bleve indexes; only Content is
// analyzed, the rest of the filtering (room/user/type/date) happens against
// the authoritative in-memory message map after the text match narrows the
// candidate set.
type indexedMessage struct {
	Content string `json:"content"`
}

type messageStore struct {
	mu       sync.RWMutex
	byID     map[string]*types.Message
	order    []string // insertion order, ascending, used for stable cursor pagination
	readUpTo map[string]uint64 // roomID+"/"+userID -> latest read timestamp

	index bleve.Index
}

func newMessageStore() (*messageStore, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}
	return &messageStore{
		byID:     make(map[string]*types.Message),
		readUpTo: make(map[string]uint64),
		index:    idx,
	}, nil
}

func (s *messageStore) close() error {
	return s.index.Close()
}

func (s *messageStore) Save(ctx context.Context, m *types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ParentMessageID != nil {
		if _, ok := s.byID[*m.ParentMessageID]; !ok {
			return errs.NotFound("message", *m.ParentMessageID)
		}
	}
	cp := *m
	s.byID[m.ID] = &cp
	s.order = append(s.order, m.ID)
	return s.index.Index(m.ID, indexedMessage{Content: m.Content})
}

func (s *messageStore) Update(ctx context.Context, id, newContent string, editedAt uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return errs.NotFound("message", id)
	}
	m.Content = newContent
	m.EditedAt = &editedAt
	return s.index.Index(id, indexedMessage{Content: newContent})
}

func (s *messageStore) SoftDelete(ctx context.Context, id string, deletedAt uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return errs.NotFound("message", id)
	}
	m.IsDeleted = true
	m.DeletedAt = &deletedAt
	return s.index.Delete(id)
}

func (s *messageStore) HardDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return errs.NotFound("message", id)
	}
	delete(s.byID, id)
	for i, mid := range s.order {
		if mid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.index.Delete(id)
}

func (s *messageStore) Get(ctx context.Context, id string) (*types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok || m.IsDeleted {
		return nil, errs.NotFound("message", id)
	}
	cp := *m
	return &cp, nil
}

// visibleByRoom returns non-deleted messages for a room in insertion (== chronological) order.
func (s *messageStore) visibleByRoom(roomID string) []*types.Message {
	var out []*types.Message
	for _, id := range s.order {
		m := s.byID[id]
		if m.RoomID == roomID && !m.IsDeleted {
			out = append(out, m)
		}
	}
	return out
}

func (s *messageStore) ListByRoom(ctx context.Context, roomID string, page store.Page) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.visibleByRoom(roomID)
	return pageMessages(msgs, page), nil
}

func (s *messageStore) ListByUser(ctx context.Context, userID string, page store.Page) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var msgs []*types.Message
	for _, id := range s.order {
		m := s.byID[id]
		if m.UserID == userID && !m.IsDeleted {
			msgs = append(msgs, m)
		}
	}
	return pageMessages(msgs, page), nil
}

func (s *messageStore) ListByTimeRange(ctx context.Context, roomID string, from, to uint64) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Message
	for _, m := range s.visibleByRoom(roomID) {
		if m.Timestamp >= from && m.Timestamp <= to {
			out = append(out, *m)
		}
	}
	return out, nil
}

// ListAfter resolves "after X" by fetching X's timestamp and returning
// messages strictly newer than it, ascending (spec.md §4.1).
func (s *messageStore) ListAfter(ctx context.Context, roomID, afterMessageID string, limit int) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	anchor, ok := s.byID[afterMessageID]
	if !ok {
		return nil, errs.NotFound("message", afterMessageID)
	}
	var out []types.Message
	for _, m := range s.visibleByRoom(roomID) {
		if m.Timestamp > anchor.Timestamp {
			out = append(out, *m)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// ListBefore resolves "before X" by fetching X's timestamp then returning
// strictly older messages descending, then reversing for chronological
// output (spec.md §4.1).
func (s *messageStore) ListBefore(ctx context.Context, roomID, beforeMessageID string, limit int) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	anchor, ok := s.byID[beforeMessageID]
	if !ok {
		return nil, errs.NotFound("message", beforeMessageID)
	}
	visible := s.visibleByRoom(roomID)
	var older []types.Message
	for i := len(visible) - 1; i >= 0; i-- {
		m := visible[i]
		if m.Timestamp < anchor.Timestamp {
			older = append(older, *m)
			if limit > 0 && len(older) >= limit {
				break
			}
		}
	}
	// reverse to chronological order
	for i, j := 0, len(older)-1; i < j; i, j = i+1, j-1 {
		older[i], older[j] = older[j], older[i]
	}
	return older, nil
}

func (s *messageStore) Search(ctx context.Context, q store.SearchQuery) (*store.SearchResult, error) {
	start := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hitIDs map[string]bool
	if q.Text != "" {
		bq := bleve.NewMatchQuery(q.Text)
		req := bleve.NewSearchRequest(bq)
		req.Size = 10000
		res, err := s.index.Search(req)
		if err != nil {
			return nil, errs.Storage("search", err)
		}
		hitIDs = make(map[string]bool, len(res.Hits))
		for _, h := range res.Hits {
			hitIDs[h.ID] = true
		}
	}

	var matched []types.Message
	for _, id := range s.order {
		m := s.byID[id]
		if m.IsDeleted {
			continue
		}
		if hitIDs != nil && !hitIDs[id] {
			continue
		}
		if q.RoomID != "" && m.RoomID != q.RoomID {
			continue
		}
		if q.UserID != "" && m.UserID != q.UserID {
			continue
		}
		if q.Type != "" && m.Type != q.Type {
			continue
		}
		if q.Since != 0 && m.Timestamp < q.Since {
			continue
		}
		if q.Until != 0 && m.Timestamp > q.Until {
			continue
		}
		matched = append(matched, *m)
	}

	// Ordered by timestamp descending (spec.md §4.1 search ordering contract).
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp > matched[j].Timestamp })

	total := len(matched)
	offset := q.Offset
	limit := q.Limit
	if limit <= 0 {
		limit = total
	}
	end := offset + limit
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}
	page := matched[offset:end]

	return &store.SearchResult{
		Messages:        page,
		TotalCount:      total,
		HasMore:         end < total,
		ExecutionTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

func (s *messageStore) ListThread(ctx context.Context, parentMessageID string) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Message
	for _, id := range s.order {
		m := s.byID[id]
		if m.IsDeleted {
			continue
		}
		if m.ParentMessageID != nil && *m.ParentMessageID == parentMessageID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *messageStore) AddReaction(ctx context.Context, messageID, userID, emoji string, at uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[messageID]
	if !ok {
		return errs.NotFound("message", messageID)
	}
	for _, r := range m.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			return nil // already reacted; idempotent
		}
	}
	m.Reactions = append(m.Reactions, types.MessageReaction{UserID: userID, Emoji: emoji, ReactedAt: at})
	return nil
}

func (s *messageStore) RemoveReaction(ctx context.Context, messageID, userID, emoji string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[messageID]
	if !ok {
		return errs.NotFound("message", messageID)
	}
	for i, r := range m.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *messageStore) AddReadReceipt(ctx context.Context, r types.ReadReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[r.MessageID]
	if !ok {
		return errs.NotFound("message", r.MessageID)
	}
	key := membershipKey(m.RoomID, r.UserID)
	if cur, ok := s.readUpTo[key]; !ok || r.ReadAt > cur {
		s.readUpTo[key] = r.ReadAt
	}
	return nil
}

func (s *messageStore) ListUnreadSince(ctx context.Context, roomID, userID string, since uint64) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Message
	for _, m := range s.visibleByRoom(roomID) {
		if m.Timestamp > since {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *messageStore) MarkReadUpTo(ctx context.Context, roomID, userID, upToMessageID string, at uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	anchor, ok := s.byID[upToMessageID]
	if !ok {
		return 0, errs.NotFound("message", upToMessageID)
	}
	key := membershipKey(roomID, userID)
	already := s.readUpTo[key]
	n := 0
	for _, m := range s.visibleByRoom(roomID) {
		if m.Timestamp > already && m.Timestamp <= anchor.Timestamp {
			n++
		}
	}
	if anchor.Timestamp > already {
		s.readUpTo[key] = anchor.Timestamp
	}
	_ = at
	return n, nil
}

func pageMessages(in []*types.Message, page store.Page) []types.Message {
	if page.Offset >= len(in) {
		return nil
	}
	end := len(in)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	out := make([]types.Message, 0, end-page.Offset)
	for _, m := range in[page.Offset:end] {
		out = append(out, *m)
	}
	return out
}

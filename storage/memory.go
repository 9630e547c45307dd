package storage

import (
	"context"
	"fmt"
	"sync"

	"hearingwatch/types"
)

// MemoryStore is an in-process Store used by tests and dry runs.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[int64]*types.CommitteeEvent
	urls   map[string]int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[int64]*types.CommitteeEvent),
		urls:   make(map[string]int64),
	}
}

func (s *MemoryStore) UpsertEvent(_ context.Context, m types.EventMetadata) (UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.CommitteeEventURL != "" {
		if owner, ok := s.urls[m.CommitteeEventURL]; ok && owner != m.EventID {
			return UpsertResult{}, fmt.Errorf("%w: %s belongs to event %d", ErrDuplicateURL, m.CommitteeEventURL, owner)
		}
	}

	var res UpsertResult
	e, ok := s.events[m.EventID]
	if !ok {
		e = &types.CommitteeEvent{}
		s.events[m.EventID] = e
		res.Created = true
	}

	if prev := e.CommitteeEventURL; prev != "" && prev != m.CommitteeEventURL {
		delete(s.urls, prev)
		res.PreviousURL = prev
	}
	e.ApplyMetadata(m)
	if m.CommitteeEventURL != "" {
		s.urls[m.CommitteeEventURL] = m.EventID
	}
	return res, nil
}

func (s *MemoryStore) GetEvent(_ context.Context, eventID int64) (*types.CommitteeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]*types.CommitteeEvent, error) {
	return s.list(func(*types.CommitteeEvent) bool { return true }), nil
}

func (s *MemoryStore) ListByCommittee(_ context.Context, committeeID string) ([]*types.CommitteeEvent, error) {
	return s.list(func(e *types.CommitteeEvent) bool { return e.CommitteeID == committeeID }), nil
}

func (s *MemoryStore) list(keep func(*types.CommitteeEvent) bool) []*types.CommitteeEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.CommitteeEvent, 0, len(s.events))
	for _, e := range s.events {
		if keep(e) {
			clone := *e
			out = append(out, &clone)
		}
	}
	SortEvents(out)
	return out
}

func (s *MemoryStore) SetVideoMatch(_ context.Context, eventID int64, m types.VideoMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return ErrNotFound
	}
	e.ApplyVideoMatch(m)
	return nil
}

func (s *MemoryStore) SetVideoMatchByTitle(_ context.Context, committeeID, title string, m types.VideoMatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]*types.CommitteeEvent, 0)
	for _, e := range s.events {
		if e.CommitteeID == committeeID {
			candidates = append(candidates, e)
		}
	}
	e := firstByTitle(candidates, title)
	if e == nil {
		return false, nil
	}
	e.ApplyVideoMatch(m)
	return true, nil
}

func (s *MemoryStore) SetPresumedMatch(_ context.Context, eventID int64, p types.PresumedMatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return false, ErrNotFound
	}
	if e.HasVideo() {
		return false, nil
	}
	e.PresumedVideoID = p.VideoID
	e.PresumedVideoTitle = p.Title
	return true, nil
}

func (s *MemoryStore) Close() error { return nil }

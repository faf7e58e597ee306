package cards

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemory implements Store for tests and demos.
type InMemory struct {
	mu    sync.RWMutex
	cards map[string]*Card
}

func NewInMemory() *InMemory {
	return &InMemory{cards: make(map[string]*Card)}
}

var _ Store = (*InMemory)(nil)

func (s *InMemory) Create(ctx context.Context, c *Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.cards[c.ID] = &cp
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	return *c, nil
}

func (s *InMemory) ListByMember(ctx context.Context, memberID string) ([]Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Card
	for _, c := range s.cards {
		if c.MemberID == memberID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	return out, nil
}

func (s *InMemory) SetStatus(ctx context.Context, id string, status Status) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	c.Status = status
	return *c, nil
}

func (s *InMemory) ExpireBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	swept := 0
	for _, c := range s.cards {
		if c.Status == StatusActive && c.ExpiresAt.Before(cutoff) {
			c.Status = StatusExpired
			swept++
		}
	}
	return swept, nil
}

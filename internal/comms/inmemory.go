package comms

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemory implements Store for tests and demos.
type InMemory struct {
	mu         sync.RWMutex
	comms      map[string]*Communication
	recipients map[string][]Recipient
}

func NewInMemory() *InMemory {
	return &InMemory{
		comms:      make(map[string]*Communication),
		recipients: make(map[string][]Recipient),
	}
}

var _ Store = (*InMemory)(nil)

func (s *InMemory) Create(ctx context.Context, c *Communication, recipients []Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comms[c.ID] = &cp
	s.recipients[c.ID] = append([]Recipient(nil), recipients...)
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (Communication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comms[id]
	if !ok {
		return Communication{}, ErrNotFound
	}
	return *c, nil
}

func (s *InMemory) List(ctx context.Context) ([]Communication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Communication, 0, len(s.comms))
	for _, c := range s.comms {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) Recipients(ctx context.Context, id string) ([]Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Recipient(nil), s.recipients[id]...), nil
}

func (s *InMemory) UpdateStatus(ctx context.Context, id string, status Status, failed int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comms[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	c.FailedCount = failed
	c.UpdatedAt = at
	return nil
}

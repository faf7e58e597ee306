package member

import (
	"context"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety. It backs
// tests and demos; production runs on the Postgres store.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[string]*Member
	nrcSeen map[string]string // nrc -> member id
	order   []string
}

// NewInMemory creates an empty register.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[string]*Member),
		nrcSeen: make(map[string]string),
	}
}

var _ Store = (*InMemory)(nil)

func (s *InMemory) Create(ctx context.Context, m *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[m.ID]; ok {
		return ErrConflict
	}
	if _, ok := s.nrcSeen[m.NRCNumber]; ok {
		return ErrConflict
	}
	cp := *m
	s.byID[m.ID] = &cp
	s.nrcSeen[m.NRCNumber] = m.ID
	s.order = append(s.order, m.ID)
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return *m, nil
}

func (s *InMemory) Update(ctx context.Context, m Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[m.ID]
	if !ok {
		return ErrNotFound
	}
	if other, taken := s.nrcSeen[m.NRCNumber]; taken && other != m.ID {
		return ErrConflict
	}
	delete(s.nrcSeen, current.NRCNumber)
	s.nrcSeen[m.NRCNumber] = m.ID
	cp := m
	s.byID[m.ID] = &cp
	return nil
}

func (s *InMemory) SetStatus(ctx context.Context, id string, status Status, at time.Time) (Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	m.Status = status
	m.UpdatedAt = at
	return *m, nil
}

func (s *InMemory) List(ctx context.Context) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Member, 0, len(s.order))
	for _, id := range s.order {
		if m, ok := s.byID[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.nrcSeen, m.NRCNumber)
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

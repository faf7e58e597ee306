package discipline

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store for tests and demos.
type InMemory struct {
	mu    sync.RWMutex
	cases map[string]*Case
}

func NewInMemory() *InMemory {
	return &InMemory{cases: make(map[string]*Case)}
}

var _ Store = (*InMemory)(nil)

func copyCase(c Case) Case {
	c.Actions = append([]Entry(nil), c.Actions...)
	c.Evidence = append([]Entry(nil), c.Evidence...)
	c.Notes = append([]Entry(nil), c.Notes...)
	return c
}

func (s *InMemory) Create(ctx context.Context, c *Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := copyCase(*c)
	s.cases[c.ID] = &cp
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok {
		return Case{}, ErrNotFound
	}
	return copyCase(*c), nil
}

func (s *InMemory) Update(ctx context.Context, c Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; !ok {
		return ErrNotFound
	}
	cp := copyCase(c)
	s.cases[c.ID] = &cp
	return nil
}

func (s *InMemory) List(ctx context.Context) ([]Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Case, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, copyCase(*c))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReportedAt.After(out[j].ReportedAt)
	})
	return out, nil
}

func (s *InMemory) ListByMember(ctx context.Context, memberID string) ([]Case, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Case, 0, len(all))
	for _, c := range all {
		if c.MemberID == memberID {
			out = append(out, c)
		}
	}
	return out, nil
}

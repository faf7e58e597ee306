package events

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store for tests and demos.
type InMemory struct {
	mu     sync.RWMutex
	events map[string]*Event
	rsvps  map[string]map[string]RSVP // event id -> member id -> rsvp
}

func NewInMemory() *InMemory {
	return &InMemory{
		events: make(map[string]*Event),
		rsvps:  make(map[string]map[string]RSVP),
	}
}

var _ Store = (*InMemory)(nil)

func (s *InMemory) Create(ctx context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return *e, nil
}

func (s *InMemory) Update(ctx context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; !ok {
		return ErrNotFound
	}
	cp := e
	s.events[e.ID] = &cp
	return nil
}

func (s *InMemory) List(ctx context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out, nil
}

func (s *InMemory) UpsertRSVP(ctx context.Context, r RSVP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[r.EventID]; !ok {
		return ErrNotFound
	}
	if s.rsvps[r.EventID] == nil {
		s.rsvps[r.EventID] = make(map[string]RSVP)
	}
	s.rsvps[r.EventID][r.MemberID] = r
	return nil
}

func (s *InMemory) ListRSVPs(ctx context.Context, eventID string) ([]RSVP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RSVP, 0, len(s.rsvps[eventID]))
	for _, r := range s.rsvps[eventID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

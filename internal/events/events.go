// Package events manages party events and member RSVPs.
package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"upnd.org/internal/ids"
	"upnd.org/internal/jurisdiction"
)

type Status string

const (
	StatusPlanned   Status = "Planned"
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func knownStatus(s Status) bool {
	switch s {
	case StatusPlanned, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Response string

const (
	ResponseAttending Response = "Attending"
	ResponseDeclined  Response = "Declined"
	ResponseTentative Response = "Tentative"
)

func knownResponse(r Response) bool {
	return r == ResponseAttending || r == ResponseDeclined || r == ResponseTentative
}

// Event is a rally, meeting or mobilization activity.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Venue       string    `json:"venue"`
	Province    string    `json:"province,omitempty"`
	District    string    `json:"district,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RSVP records one member's response to an event. The (event, member) pair
// is unique; a second response overwrites the first.
type RSVP struct {
	EventID   string    `json:"event_id"`
	MemberID  string    `json:"member_id"`
	Response  Response  `json:"response"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrNotFound   = errors.New("events: not found")
	ErrValidation = errors.New("events: invalid input")
)

// Draft is the intake payload for a new event.
type Draft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	Province    string    `json:"province"`
	District    string    `json:"district"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// Store describes event persistence.
type Store interface {
	Create(ctx context.Context, e *Event) error
	Find(ctx context.Context, id string) (Event, error)
	Update(ctx context.Context, e Event) error
	List(ctx context.Context) ([]Event, error)
	UpsertRSVP(ctx context.Context, r RSVP) error
	ListRSVPs(ctx context.Context, eventID string) ([]RSVP, error)
}

// Service runs event lifecycle over a Store.
type Service struct {
	store Store
	now   func() time.Time
}

type Option func(*Service)

func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create files a new event in Planned status.
func (s *Service) Create(ctx context.Context, d Draft) (Event, error) {
	if strings.TrimSpace(d.Title) == "" {
		return Event{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(d.Venue) == "" {
		return Event{}, fmt.Errorf("%w: venue is required", ErrValidation)
	}
	if d.StartsAt.IsZero() {
		return Event{}, fmt.Errorf("%w: starts_at is required", ErrValidation)
	}
	if !d.EndsAt.IsZero() && d.EndsAt.Before(d.StartsAt) {
		return Event{}, fmt.Errorf("%w: ends_at precedes starts_at", ErrValidation)
	}
	if p := strings.TrimSpace(d.Province); p != "" {
		if _, ok := jurisdiction.CoordinatesFor(p); !ok {
			return Event{}, fmt.Errorf("%w: unknown province %q", ErrValidation, p)
		}
	}
	now := s.now().UTC()
	e := Event{
		ID:          ids.New(),
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Venue:       strings.TrimSpace(d.Venue),
		Province:    strings.TrimSpace(d.Province),
		District:    strings.TrimSpace(d.District),
		StartsAt:    d.StartsAt,
		EndsAt:      d.EndsAt,
		Status:      StatusPlanned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Get returns an event by id.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	return s.store.Find(ctx, id)
}

// SetStatus moves an event through its lifecycle.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Event, error) {
	if !knownStatus(status) {
		return Event{}, fmt.Errorf("%w: unknown event status %q", ErrValidation, status)
	}
	e, err := s.store.Find(ctx, id)
	if err != nil {
		return Event{}, err
	}
	e.Status = status
	e.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// List returns all events, soonest first.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.store.List(ctx)
}

// Respond records or overwrites a member's RSVP.
func (s *Service) Respond(ctx context.Context, eventID, memberID string, response Response) (RSVP, error) {
	if !knownResponse(response) {
		return RSVP{}, fmt.Errorf("%w: response must be Attending, Declined or Tentative", ErrValidation)
	}
	if strings.TrimSpace(memberID) == "" {
		return RSVP{}, fmt.Errorf("%w: member_id is required", ErrValidation)
	}
	if _, err := s.store.Find(ctx, eventID); err != nil {
		return RSVP{}, err
	}
	r := RSVP{
		EventID:   eventID,
		MemberID:  strings.TrimSpace(memberID),
		Response:  response,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.UpsertRSVP(ctx, r); err != nil {
		return RSVP{}, err
	}
	return r, nil
}

// RSVPs lists responses for an event.
func (s *Service) RSVPs(ctx context.Context, eventID string) ([]RSVP, error) {
	if _, err := s.store.Find(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.ListRSVPs(ctx, eventID)
}

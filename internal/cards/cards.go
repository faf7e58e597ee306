// Package cards manages membership card lifecycle. Cards are issued only to
// approved members and carry their own Active/Expired/Revoked state.
package cards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"upnd.org/internal/ids"
	"upnd.org/internal/member"
)

type Status string

const (
	StatusActive  Status = "Active"
	StatusExpired Status = "Expired"
	StatusRevoked Status = "Revoked"
)

// Card is a printed (or printable) membership card record.
type Card struct {
	ID         string    `json:"id"`
	CardNumber string    `json:"card_number"`
	MemberID   string    `json:"member_id"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Status     Status    `json:"status"`
}

var (
	ErrNotFound    = errors.New("cards: not found")
	ErrNotEligible = errors.New("cards: member is not approved")
)

// DefaultValidity is how long a freshly issued card lasts.
const DefaultValidity = 5 * 365 * 24 * time.Hour

// Store describes card persistence.
type Store interface {
	Create(ctx context.Context, c *Card) error
	Find(ctx context.Context, id string) (Card, error)
	ListByMember(ctx context.Context, memberID string) ([]Card, error)
	SetStatus(ctx context.Context, id string, status Status) (Card, error)
	ExpireBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// MemberGetter is the slice of the member service eligibility checks need.
type MemberGetter interface {
	Get(ctx context.Context, id string) (member.Member, error)
}

// Service issues and manages cards.
type Service struct {
	store    Store
	members  MemberGetter
	validity time.Duration
	now      func() time.Time
}

type Option func(*Service)

func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithValidity overrides the card lifetime.
func WithValidity(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.validity = d
		}
	}
}

func NewService(store Store, members MemberGetter, opts ...Option) *Service {
	s := &Service{store: store, members: members, validity: DefaultValidity, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates an Active card for an approved member.
func (s *Service) Issue(ctx context.Context, memberID string) (Card, error) {
	m, err := s.members.Get(ctx, memberID)
	if err != nil {
		return Card{}, err
	}
	if m.Status != member.StatusApproved {
		return Card{}, fmt.Errorf("%w: status is %s", ErrNotEligible, m.Status)
	}
	now := s.now().UTC()
	c := Card{
		ID:         ids.New(),
		CardNumber: ids.CardNumber(),
		MemberID:   m.ID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.validity),
		Status:     StatusActive,
	}
	if err := s.store.Create(ctx, &c); err != nil {
		return Card{}, err
	}
	return c, nil
}

// Get returns a card by id.
func (s *Service) Get(ctx context.Context, id string) (Card, error) {
	return s.store.Find(ctx, id)
}

// ListByMember returns a member's cards, newest first.
func (s *Service) ListByMember(ctx context.Context, memberID string) ([]Card, error) {
	return s.store.ListByMember(ctx, memberID)
}

// Revoke invalidates a card.
func (s *Service) Revoke(ctx context.Context, id string) (Card, error) {
	return s.store.SetStatus(ctx, id, StatusRevoked)
}

// ExpireDue sweeps cards whose expiry date has passed into Expired state and
// returns how many were swept.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	return s.store.ExpireBefore(ctx, s.now().UTC())
}

package member

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"upnd.org/internal/ids"
)

// Store describes persistence required by the membership register.
type Store interface {
	Create(ctx context.Context, m *Member) error
	Find(ctx context.Context, id string) (Member, error)
	Update(ctx context.Context, m Member) error
	SetStatus(ctx context.Context, id string, status Status, at time.Time) (Member, error)
	List(ctx context.Context) ([]Member, error)
	Delete(ctx context.Context, id string) error
}

// Service runs the registration and approval workflow over a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the membership service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates an application and files it at Section review. Any
// status a client managed to smuggle into the payload is ignored: the entry
// stage is a server-side rule.
func (s *Service) Register(ctx context.Context, reg Registration) (Member, error) {
	now := s.now().UTC()
	if err := Validate(reg, now); err != nil {
		return Member{}, err
	}
	m := Member{
		ID:           ids.New(),
		MembershipID: ids.Membership(now),
		FullName:     strings.TrimSpace(reg.FullName),
		NRCNumber:    strings.TrimSpace(reg.NRCNumber),
		DateOfBirth:  reg.DateOfBirth,
		Gender:       strings.TrimSpace(reg.Gender),
		Phone:        strings.TrimSpace(reg.Phone),
		Email:        strings.TrimSpace(strings.ToLower(reg.Email)),
		Jurisdiction: reg.Jurisdiction,
		Address:      strings.TrimSpace(reg.Address),
		Occupation:   strings.TrimSpace(reg.Occupation),
		Status:       StatusPendingSection,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, &m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// Get returns a member by row id.
func (s *Service) Get(ctx context.Context, id string) (Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Member{}, fmt.Errorf("%w: member id is required", ErrValidation)
	}
	return s.store.Find(ctx, id)
}

// Update edits a member's personal and jurisdiction detail in place,
// re-applying the full intake validation. Status and membership number are
// untouched.
func (s *Service) Update(ctx context.Context, id string, reg Registration) (Member, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Member{}, err
	}
	now := s.now().UTC()
	if err := Validate(reg, now); err != nil {
		return Member{}, err
	}
	current.FullName = strings.TrimSpace(reg.FullName)
	current.NRCNumber = strings.TrimSpace(reg.NRCNumber)
	current.DateOfBirth = reg.DateOfBirth
	current.Gender = strings.TrimSpace(reg.Gender)
	current.Phone = strings.TrimSpace(reg.Phone)
	current.Email = strings.TrimSpace(strings.ToLower(reg.Email))
	current.Jurisdiction = reg.Jurisdiction
	current.Address = strings.TrimSpace(reg.Address)
	current.Occupation = strings.TrimSpace(reg.Occupation)
	current.UpdatedAt = now
	if err := s.store.Update(ctx, current); err != nil {
		return Member{}, err
	}
	return current, nil
}

// SetStatus overwrites a member's status with any catalog value. The
// workflow is deliberately permissive: an admin holding approve_members may
// move an application straight to Approved from any stage, or suspend an
// approved member. The only server-side checks are that the status is a
// catalog value and the member exists. Two admins writing concurrently are
// last-write-wins.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Member{}, fmt.Errorf("%w: member id is required", ErrValidation)
	}
	if !KnownStatus(status) {
		return Member{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return s.store.SetStatus(ctx, id, status, s.now().UTC())
}

// Advance moves a member one rung up the review ladder.
func (s *Service) Advance(ctx context.Context, id string) (Member, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Member{}, err
	}
	next, err := NextPendingStage(current.Status)
	if err != nil {
		return Member{}, fmt.Errorf("%w: %s has no next review stage", ErrValidation, current.Status)
	}
	return s.store.SetStatus(ctx, id, next, s.now().UTC())
}

// BulkResult reports the outcome for a single id inside a bulk operation.
type BulkResult struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// Approved reports whether the item succeeded.
func (r BulkResult) Approved() bool { return r.Error == "" }

// BulkApprove sets every listed member to Approved, best effort. Each update
// is independent: a missing or failing id is reported in its slot and never
// blocks the rest of the batch.
func (s *Service) BulkApprove(ctx context.Context, memberIDs []string) []BulkResult {
	results := make([]BulkResult, 0, len(memberIDs))
	at := s.now().UTC()
	for _, id := range memberIDs {
		res := BulkResult{ID: id}
		if _, err := s.store.SetStatus(ctx, id, StatusApproved, at); err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// List returns the members visible to the given scope, filtered, most
// recently registered first.
func (s *Service) List(ctx context.Context, scope Scope, filter Filter) ([]Member, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]Member, 0, len(all))
	for _, m := range all {
		if !scope.Allows(m) {
			continue
		}
		if !filter.Matches(m) {
			continue
		}
		visible = append(visible, m)
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].RegisteredAt.After(visible[j].RegisteredAt)
	})
	return visible, nil
}

// Delete removes a member record. Disciplinary cases, cards and RSVPs
// cascade in the store.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: member id is required", ErrValidation)
	}
	return s.store.Delete(ctx, id)
}

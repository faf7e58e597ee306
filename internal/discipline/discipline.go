// Package discipline tracks disciplinary cases opened against members.
// Cases accumulate actions, evidence and notes append-only and are never
// hard-deleted; closing a case is a status change.
package discipline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"upnd.org/internal/ids"
)

type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

type Status string

const (
	StatusActive      Status = "Active"
	StatusUnderReview Status = "Under Review"
	StatusResolved    Status = "Resolved"
	StatusAppealed    Status = "Appealed"
)

func knownSeverity(s Severity) bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

func knownStatus(s Status) bool {
	switch s {
	case StatusActive, StatusUnderReview, StatusResolved, StatusAppealed:
		return true
	}
	return false
}

// Entry is one append-only line on a case (an action taken, a piece of
// evidence, or a note).
type Entry struct {
	At     time.Time `json:"at"`
	Author string    `json:"author,omitempty"`
	Text   string    `json:"text"`
}

// Case is a disciplinary proceeding. MemberName is denormalized so case
// lists render without a join.
type Case struct {
	ID               string    `json:"id"`
	MemberID         string    `json:"member_id"`
	MemberName       string    `json:"member_name"`
	ViolationType    string    `json:"violation_type"`
	Description      string    `json:"description"`
	Severity         Severity  `json:"severity"`
	Status           Status    `json:"status"`
	ReportingOfficer string    `json:"reporting_officer"`
	AssignedOfficer  string    `json:"assigned_officer,omitempty"`
	Actions          []Entry   `json:"actions"`
	Evidence         []Entry   `json:"evidence"`
	Notes            []Entry   `json:"notes"`
	ReportedAt       time.Time `json:"reported_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

var (
	ErrNotFound   = errors.New("discipline: case not found")
	ErrValidation = errors.New("discipline: invalid input")
)

// Report is the intake payload for a new case.
type Report struct {
	MemberID         string   `json:"member_id"`
	MemberName       string   `json:"member_name"`
	ViolationType    string   `json:"violation_type"`
	Description      string   `json:"description"`
	Severity         Severity `json:"severity"`
	ReportingOfficer string   `json:"reporting_officer"`
	AssignedOfficer  string   `json:"assigned_officer"`
}

// Store describes case persistence.
type Store interface {
	Create(ctx context.Context, c *Case) error
	Find(ctx context.Context, id string) (Case, error)
	Update(ctx context.Context, c Case) error
	List(ctx context.Context) ([]Case, error)
	ListByMember(ctx context.Context, memberID string) ([]Case, error)
}

// Service runs case intake and lifecycle over a Store.
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

// Open files a new case in Active status.
func (s *Service) Open(ctx context.Context, r Report) (Case, error) {
	if strings.TrimSpace(r.MemberID) == "" {
		return Case{}, fmt.Errorf("%w: member_id is required", ErrValidation)
	}
	if strings.TrimSpace(r.ViolationType) == "" {
		return Case{}, fmt.Errorf("%w: violation_type is required", ErrValidation)
	}
	if !knownSeverity(r.Severity) {
		return Case{}, fmt.Errorf("%w: severity must be Low, Medium or High", ErrValidation)
	}
	if strings.TrimSpace(r.ReportingOfficer) == "" {
		return Case{}, fmt.Errorf("%w: reporting_officer is required", ErrValidation)
	}
	now := s.now().UTC()
	c := Case{
		ID:               ids.New(),
		MemberID:         strings.TrimSpace(r.MemberID),
		MemberName:       strings.TrimSpace(r.MemberName),
		ViolationType:    strings.TrimSpace(r.ViolationType),
		Description:      strings.TrimSpace(r.Description),
		Severity:         r.Severity,
		Status:           StatusActive,
		ReportingOfficer: strings.TrimSpace(r.ReportingOfficer),
		AssignedOfficer:  strings.TrimSpace(r.AssignedOfficer),
		ReportedAt:       now,
		UpdatedAt:        now,
	}
	if err := s.store.Create(ctx, &c); err != nil {
		return Case{}, err
	}
	return c, nil
}

// Get returns a case by id.
func (s *Service) Get(ctx context.Context, id string) (Case, error) {
	return s.store.Find(ctx, id)
}

// SetStatus moves a case through its lifecycle.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Case, error) {
	if !knownStatus(status) {
		return Case{}, fmt.Errorf("%w: unknown case status %q", ErrValidation, status)
	}
	c, err := s.store.Find(ctx, id)
	if err != nil {
		return Case{}, err
	}
	c.Status = status
	c.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, c); err != nil {
		return Case{}, err
	}
	return c, nil
}

// kind selects which append-only list an entry lands on.
type kind int

const (
	kindAction kind = iota
	kindEvidence
	kindNote
)

func (s *Service) appendEntry(ctx context.Context, id string, k kind, author, text string) (Case, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Case{}, fmt.Errorf("%w: entry text is required", ErrValidation)
	}
	c, err := s.store.Find(ctx, id)
	if err != nil {
		return Case{}, err
	}
	entry := Entry{At: s.now().UTC(), Author: strings.TrimSpace(author), Text: text}
	switch k {
	case kindAction:
		c.Actions = append(c.Actions, entry)
	case kindEvidence:
		c.Evidence = append(c.Evidence, entry)
	case kindNote:
		c.Notes = append(c.Notes, entry)
	}
	c.UpdatedAt = entry.At
	if err := s.store.Update(ctx, c); err != nil {
		return Case{}, err
	}
	return c, nil
}

// AddAction appends a disciplinary action taken.
func (s *Service) AddAction(ctx context.Context, id, author, text string) (Case, error) {
	return s.appendEntry(ctx, id, kindAction, author, text)
}

// AddEvidence appends an evidence reference.
func (s *Service) AddEvidence(ctx context.Context, id, author, text string) (Case, error) {
	return s.appendEntry(ctx, id, kindEvidence, author, text)
}

// AddNote appends a free-text note.
func (s *Service) AddNote(ctx context.Context, id, author, text string) (Case, error) {
	return s.appendEntry(ctx, id, kindNote, author, text)
}

// List returns all cases, most recently reported first.
func (s *Service) List(ctx context.Context) ([]Case, error) {
	return s.store.List(ctx)
}

// ListByMember returns the cases opened against one member.
func (s *Service) ListByMember(ctx context.Context, memberID string) ([]Case, error) {
	return s.store.ListByMember(ctx, memberID)
}

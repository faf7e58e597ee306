// Package comms handles bulk communication dispatch records. The service
// resolves recipients against the member register and persists the
// communication plus one recipient row per targeted member; actual SMS/email
// delivery belongs to an external gateway.
package comms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"upnd.org/internal/ids"
	"upnd.org/internal/member"
)

type Channel string

const (
	ChannelSMS   Channel = "SMS"
	ChannelEmail Channel = "Email"
	ChannelBoth  Channel = "Both"
)

func knownChannel(c Channel) bool {
	return c == ChannelSMS || c == ChannelEmail || c == ChannelBoth
}

type Status string

const (
	StatusDraft   Status = "Draft"
	StatusSending Status = "Sending"
	StatusSent    Status = "Sent"
	StatusFailed  Status = "Failed"
)

// RecipientFilter selects targets. Empty fields do not constrain; Status
// accepts the same values as member.Filter ("pending", catalog statuses,
// "all").
type RecipientFilter struct {
	Province string `json:"province,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Communication is one bulk send and its bookkeeping.
type Communication struct {
	ID             string          `json:"id"`
	Message        string          `json:"message"`
	Channel        Channel         `json:"channel"`
	Filter         RecipientFilter `json:"filter"`
	Status         Status          `json:"status"`
	RecipientCount int             `json:"recipient_count"`
	FailedCount    int             `json:"failed_count"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Recipient is one targeted member inside a communication.
type Recipient struct {
	CommunicationID string `json:"communication_id"`
	MemberID        string `json:"member_id"`
	Destination     string `json:"destination"`
	// State is Queued until an external gateway reports back.
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

var (
	ErrNotFound   = errors.New("comms: not found")
	ErrValidation = errors.New("comms: invalid input")
)

// Store describes communication persistence.
type Store interface {
	Create(ctx context.Context, c *Communication, recipients []Recipient) error
	Find(ctx context.Context, id string) (Communication, error)
	List(ctx context.Context) ([]Communication, error)
	Recipients(ctx context.Context, id string) ([]Recipient, error)
	UpdateStatus(ctx context.Context, id string, status Status, failed int, at time.Time) error
}

// MemberLister is the slice of the member service recipient resolution
// needs.
type MemberLister interface {
	List(ctx context.Context, scope member.Scope, filter member.Filter) ([]member.Member, error)
}

// Service resolves recipients and keeps dispatch records.
type Service struct {
	store   Store
	members MemberLister
	now     func() time.Time
}

type Option func(*Service)

func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewService(store Store, members MemberLister, opts ...Option) *Service {
	s := &Service{store: store, members: members, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// destination picks the contact field for the channel. Members without a
// usable destination are skipped rather than failing the batch.
func destination(m member.Member, ch Channel) string {
	switch ch {
	case ChannelSMS:
		return m.Phone
	case ChannelEmail:
		return m.Email
	case ChannelBoth:
		if m.Phone != "" {
			return m.Phone
		}
		return m.Email
	}
	return ""
}

// Send resolves the recipient set within the caller's visibility scope,
// persists the communication and its recipient rows, and marks it Sending.
// Delivery confirmation arrives later through UpdateStatus.
func (s *Service) Send(ctx context.Context, scope member.Scope, message string, ch Channel, filter RecipientFilter, createdBy string) (Communication, []Recipient, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Communication{}, nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if !knownChannel(ch) {
		return Communication{}, nil, fmt.Errorf("%w: type must be SMS, Email or Both", ErrValidation)
	}

	matched, err := s.members.List(ctx, scope, member.Filter{Status: filter.Status})
	if err != nil {
		return Communication{}, nil, err
	}

	now := s.now().UTC()
	comm := Communication{
		ID:        ids.New(),
		Message:   message,
		Channel:   ch,
		Filter:    filter,
		Status:    StatusSending,
		CreatedBy: strings.TrimSpace(createdBy),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var recipients []Recipient
	for _, m := range matched {
		if p := strings.TrimSpace(filter.Province); p != "" &&
			!strings.EqualFold(m.Jurisdiction.Province, p) {
			continue
		}
		dest := destination(m, ch)
		if dest == "" {
			continue
		}
		recipients = append(recipients, Recipient{
			CommunicationID: comm.ID,
			MemberID:        m.ID,
			Destination:     dest,
			State:           "Queued",
		})
	}
	comm.RecipientCount = len(recipients)

	if err := s.store.Create(ctx, &comm, recipients); err != nil {
		return Communication{}, nil, err
	}
	return comm, recipients, nil
}

// Get returns a communication by id.
func (s *Service) Get(ctx context.Context, id string) (Communication, error) {
	return s.store.Find(ctx, id)
}

// List returns all communications, newest first.
func (s *Service) List(ctx context.Context) ([]Communication, error) {
	return s.store.List(ctx)
}

// Recipients returns the targeted members of a communication.
func (s *Service) Recipients(ctx context.Context, id string) ([]Recipient, error) {
	if _, err := s.store.Find(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Recipients(ctx, id)
}

// MarkResult records the gateway outcome for a whole communication.
func (s *Service) MarkResult(ctx context.Context, id string, failed int) (Communication, error) {
	status := StatusSent
	comm, err := s.store.Find(ctx, id)
	if err != nil {
		return Communication{}, err
	}
	if failed < 0 {
		return Communication{}, fmt.Errorf("%w: failed count must be >= 0", ErrValidation)
	}
	if failed >= comm.RecipientCount && comm.RecipientCount > 0 {
		status = StatusFailed
	}
	if err := s.store.UpdateStatus(ctx, id, status, failed, s.now().UTC()); err != nil {
		return Communication{}, err
	}
	comm.Status = status
	comm.FailedCount = failed
	return comm, nil
}

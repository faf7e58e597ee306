package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// InMemory is a non-durable Store used by tests and local runs.
type InMemory struct {
	mu      sync.Mutex
	users   map[string]*User
	byEmail map[string]string
	tokens  map[string]*RefreshToken
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
		tokens:  make(map[string]*RefreshToken),
	}
}

func (m *InMemory) Users() UserStore                 { return (*memUsers)(m) }
func (m *InMemory) RefreshTokens() RefreshTokenStore { return (*memTokens)(m) }

type memUsers InMemory

func (m *memUsers) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := m.byEmail[key]; ok {
		return fmt.Errorf("%w: email %s", ErrConflict, user.Email)
	}
	cp := *user
	m.users[user.ID] = &cp
	m.byEmail[key] = user.ID
	return nil
}

func (m *memUsers) Find(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	cp := *user
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("%w: email %s", ErrNotFound, email)
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *memUsers) Update(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, user.ID)
	}
	delete(m.byEmail, strings.ToLower(existing.Email))
	cp := *user
	m.users[user.ID] = &cp
	m.byEmail[strings.ToLower(user.Email)] = user.ID
	return nil
}

func (m *memUsers) List(_ context.Context) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*User, 0, len(m.users))
	for _, user := range m.users {
		cp := *user
		out = append(out, &cp)
	}
	return out, nil
}

type memTokens InMemory

func (m *memTokens) Create(_ context.Context, token *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *token
	m.tokens[token.ID] = &cp
	return nil
}

func (m *memTokens) Find(_ context.Context, id string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[id]
	if !ok {
		return nil, fmt.Errorf("%w: refresh token %s", ErrNotFound, id)
	}
	cp := *token
	return &cp, nil
}

func (m *memTokens) MarkRevoked(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[id]
	if !ok {
		return fmt.Errorf("%w: refresh token %s", ErrNotFound, id)
	}
	token.Revoked = true
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

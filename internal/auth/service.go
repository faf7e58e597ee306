package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"upnd.org/internal/ids"
	"upnd.org/internal/jurisdiction"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour * 14
)

// Service handles account management, credential checks and token issuance.
type Service struct {
	store      Store
	now        func() time.Time
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// NewService constructs a Service over the given store.
func NewService(store Store, opts ...ServiceOption) *Service {
	svc := &Service{
		store:      store,
		now:        time.Now,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// NewUser describes an account to create.
type NewUser struct {
	Email         string
	Password      string
	FullName      string
	Role          Role
	Level         jurisdiction.Level
	Jurisdiction  jurisdiction.Jurisdiction
	PartyPosition string
}

// CreateUser registers an account. The role must be in the catalog; when no
// level is given the role's default tier is used.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", ErrInvalidCredentials)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password too short", ErrInvalidCredentials)
	}
	if !KnownRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidCredentials, in.Role)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	level := in.Level
	if !jurisdiction.KnownLevel(level) {
		level = DefaultLevel(in.Role)
	}
	now := s.now().UTC()
	user := &User{
		ID:            ids.New(),
		Email:         email,
		PasswordHash:  hash,
		FullName:      strings.TrimSpace(in.FullName),
		Role:          in.Role,
		Level:         level,
		Jurisdiction:  in.Jurisdiction,
		PartyPosition: strings.TrimSpace(in.PartyPosition),
		Status:        UserStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// TokenPair represents access and refresh tokens along with their expirations.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Login authenticates credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return TokenPair{}, Principal{}, ErrInvalidCredentials
	}
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, Principal{}, ErrInvalidCredentials
	}
	if user.Status != UserStatusActive {
		return TokenPair{}, Principal{}, ErrAccountDisabled
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return TokenPair{}, Principal{}, ErrInvalidCredentials
	}
	principal := PrincipalFor(user)
	pair, err := s.mintTokens(ctx, user)
	if err != nil {
		return TokenPair{}, Principal{}, err
	}
	return pair, principal, nil
}

// Refresh rotates the refresh token and issues new access credentials. A
// secret mismatch on a live record revokes it.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, Principal, error) {
	tokenID, tokenSecret, err := splitRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, Principal{}, ErrRefreshInvalid
	}

	store := s.store.RefreshTokens()
	record, err := store.Find(ctx, tokenID)
	if err != nil {
		return TokenPair{}, Principal{}, ErrRefreshInvalid
	}
	if record.Revoked || s.now().After(record.ExpiresAt) {
		return TokenPair{}, Principal{}, ErrRefreshInvalid
	}
	if !secureCompareHash(record.TokenHash, tokenSecret) {
		_ = store.MarkRevoked(ctx, record.ID)
		return TokenPair{}, Principal{}, ErrRefreshInvalid
	}

	user, err := s.store.Users().Find(ctx, record.UserID)
	if err != nil {
		return TokenPair{}, Principal{}, ErrRefreshInvalid
	}
	if user.Status != UserStatusActive {
		return TokenPair{}, Principal{}, ErrAccountDisabled
	}

	if err := store.MarkRevoked(ctx, record.ID); err != nil {
		return TokenPair{}, Principal{}, err
	}
	pair, err := s.mintTokens(ctx, user)
	if err != nil {
		return TokenPair{}, Principal{}, err
	}
	return pair, PrincipalFor(user), nil
}

// AuthenticateToken validates an access token and resolves the principal
// from the stored user record, so deactivated accounts cut over immediately.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (Principal, error) {
	claims, err := ParseAndValidate(token)
	if err != nil {
		return Principal{}, err
	}
	user, err := s.store.Users().Find(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrTokenInvalid
		}
		return Principal{}, err
	}
	if user.Status != UserStatusActive {
		return Principal{}, ErrAccountDisabled
	}
	return PrincipalFor(user), nil
}

// Logout revokes every live refresh token for the user.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.store.RefreshTokens().RevokeAllForUser(ctx, userID)
}

func (s *Service) mintTokens(ctx context.Context, user *User) (TokenPair, error) {
	now := s.now().UTC()
	accessToken, err := GenerateToken(user, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refreshString, record, err := s.generateRefreshToken(user.ID, now)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.store.RefreshTokens().Create(ctx, record); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshString,
		AccessExpiresAt:  now.Add(s.accessTTL),
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}

func (s *Service) generateRefreshToken(userID string, now time.Time) (string, *RefreshToken, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", nil, err
	}
	tokenSecret := base64.RawURLEncoding.EncodeToString(secretBytes)
	tokenID := ids.New()
	sum := sha256.Sum256([]byte(tokenSecret))
	rec := &RefreshToken{
		ID:        tokenID,
		UserID:    userID,
		TokenHash: hex.EncodeToString(sum[:]),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	return tokenID + "." + tokenSecret, rec, nil
}

func splitRefreshToken(raw string) (id, secret string, err error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("invalid refresh token format")
	}
	return parts[0], parts[1], nil
}

func secureCompareHash(expectedHash, secret string) bool {
	sum := sha256.Sum256([]byte(secret))
	actual := hex.EncodeToString(sum[:])
	if len(expectedHash) != len(actual) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expectedHash), []byte(actual)) == 1
}

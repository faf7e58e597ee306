package auth

import "context"

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context) ([]*User, error)
}

// RefreshTokenStore persists refresh token records.
type RefreshTokenStore interface {
	Create(ctx context.Context, token *RefreshToken) error
	Find(ctx context.Context, id string) (*RefreshToken, error)
	MarkRevoked(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// Store bundles the persistence surfaces the service needs.
type Store interface {
	Users() UserStore
	RefreshTokens() RefreshTokenStore
}

package auth

import (
	"time"

	"upnd.org/internal/jurisdiction"
	"upnd.org/internal/member"
)

// User is an administrator or member account. PasswordHash is a bcrypt hash
// and never leaves the package.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	FullName      string
	Role          Role
	Level         jurisdiction.Level
	Jurisdiction  jurisdiction.Jurisdiction
	PartyPosition string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserStatusActive is the only status allowed to authenticate.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// RefreshToken is the stored half of an opaque refresh credential. Only a
// sha256 hash of the client secret is persisted.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Principal is a resolved caller identity: who they are, what tier they sit
// at, and the flat permission set their role grants.
type Principal struct {
	UserID       string
	Email        string
	FullName     string
	Role         Role
	Level        jurisdiction.Level
	Jurisdiction jurisdiction.Jurisdiction
	Permissions  map[string]struct{}
}

// HasPermission reports whether the principal holds the permission. A zero
// principal holds nothing.
func (p Principal) HasPermission(perm string) bool {
	if perm == "" || len(p.Permissions) == 0 {
		return false
	}
	_, ok := p.Permissions[perm]
	return ok
}

// Scope translates the principal's tier and placement into a member
// visibility scope.
func (p Principal) Scope() member.Scope {
	return member.Scope{Level: p.Level, Jurisdiction: p.Jurisdiction.ValueAt(p.Level)}
}

// PrincipalFor builds a principal from a stored user record.
func PrincipalFor(user *User) Principal {
	perms := make(map[string]struct{})
	for _, perm := range PermissionsFor(user.Role) {
		perms[perm] = struct{}{}
	}
	return Principal{
		UserID:       user.ID,
		Email:        user.Email,
		FullName:     user.FullName,
		Role:         user.Role,
		Level:        user.Level,
		Jurisdiction: user.Jurisdiction,
		Permissions:  perms,
	}
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upnd.org/internal/jurisdiction"
)

func setSecret(t *testing.T) {
	t.Helper()
	ResetSecretForTests()
	t.Setenv("UPND_AUTH_SECRET", "unit-test-secret")
	t.Cleanup(ResetSecretForTests)
}

func newTestService(t *testing.T) (*Service, *InMemory) {
	t.Helper()
	setSecret(t)
	store := NewInMemory()
	return NewService(store), store
}

func TestPermissionsFailClosed(t *testing.T) {
	assert.Empty(t, PermissionsFor(Role("Auditor")))
	assert.False(t, Principal{}.HasPermission(PermApproveMembers))

	member := PrincipalFor(&User{ID: "u1", Role: RoleMember})
	assert.False(t, member.HasPermission(PermApproveMembers))
	assert.True(t, member.HasPermission(PermViewOwnProfile))
}

func TestRoleCatalog(t *testing.T) {
	national := PrincipalFor(&User{ID: "u1", Role: RoleNationalAdmin})
	for _, perm := range []string{
		PermApproveMembers, PermManageMembers, PermManageDisciplinary,
		PermManageEvents, PermSendCommunications, PermManageCards,
		PermExportData, PermViewStatistics, PermSystemSettings,
	} {
		assert.True(t, national.HasPermission(perm), perm)
	}

	section := PrincipalFor(&User{ID: "u2", Role: RoleSectionAdmin})
	assert.True(t, section.HasPermission(PermApproveMembers))
	assert.False(t, section.HasPermission(PermSystemSettings))
	assert.False(t, section.HasPermission(PermExportData))
}

func TestDefaultLevels(t *testing.T) {
	assert.Equal(t, jurisdiction.LevelNational, DefaultLevel(RoleNationalAdmin))
	assert.Equal(t, jurisdiction.LevelProvincial, DefaultLevel(RoleProvincialAdmin))
	assert.Equal(t, jurisdiction.LevelWard, DefaultLevel(RoleWardAdmin))
}

func TestTokenRoundTrip(t *testing.T) {
	setSecret(t)
	user := &User{
		ID:           "user-1",
		Role:         RoleProvincialAdmin,
		Level:        jurisdiction.LevelProvincial,
		Jurisdiction: jurisdiction.Jurisdiction{Province: "Lusaka"},
	}

	token, err := GenerateToken(user, time.Minute)
	require.NoError(t, err)

	claims, err := ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, string(RoleProvincialAdmin), claims.Role)
	assert.Equal(t, "Lusaka", claims.Jurisdiction.Province)
}

func TestTokenRejectsGarbage(t *testing.T) {
	setSecret(t)
	_, err := ParseAndValidate("")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = ParseAndValidate("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestLoginAndRefresh(t *testing.T) {
	svc, _ := newTestService(t)
	user, err := svc.CreateUser(context.Background(), NewUser{
		Email:        "admin@upnd.org",
		Password:     "correct horse",
		FullName:     "Admin",
		Role:         RoleNationalAdmin,
		Jurisdiction: jurisdiction.Jurisdiction{},
	})
	require.NoError(t, err)

	pair, principal, err := svc.Login(context.Background(), "Admin@upnd.org", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	resolved, err := svc.AuthenticateToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.UserID)
	assert.True(t, resolved.HasPermission(PermSystemSettings))

	rotated, _, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// A rotated-out token is dead.
	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestLoginRejections(t *testing.T) {
	svc, store := newTestService(t)
	user, err := svc.CreateUser(context.Background(), NewUser{
		Email:    "ops@upnd.org",
		Password: "correct horse",
		Role:     RoleProvincialAdmin,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "ops@upnd.org", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@upnd.org", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user.Status = UserStatusDisabled
	require.NoError(t, store.Users().Update(context.Background(), user))
	_, _, err = svc.Login(context.Background(), "ops@upnd.org", "correct horse")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthenticateTokenChecksAccountStatus(t *testing.T) {
	svc, store := newTestService(t)
	user, err := svc.CreateUser(context.Background(), NewUser{
		Email:    "ward@upnd.org",
		Password: "correct horse",
		Role:     RoleWardAdmin,
	})
	require.NoError(t, err)

	pair, _, err := svc.Login(context.Background(), "ward@upnd.org", "correct horse")
	require.NoError(t, err)

	user.Status = UserStatusDisabled
	require.NoError(t, store.Users().Update(context.Background(), user))

	_, err = svc.AuthenticateToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefreshExpiry(t *testing.T) {
	setSecret(t)
	store := NewInMemory()
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(store, WithClock(func() time.Time { return current }))

	_, err := svc.CreateUser(context.Background(), NewUser{
		Email:    "clock@upnd.org",
		Password: "correct horse",
		Role:     RoleDistrictAdmin,
	})
	require.NoError(t, err)

	pair, _, err := svc.Login(context.Background(), "clock@upnd.org", "correct horse")
	require.NoError(t, err)

	current = current.Add(15 * 24 * time.Hour)
	_, _, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), NewUser{Email: "bad", Password: "long enough", Role: RoleMember})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.CreateUser(context.Background(), NewUser{Email: "a@b.org", Password: "short", Role: RoleMember})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.CreateUser(context.Background(), NewUser{Email: "a@b.org", Password: "long enough", Role: Role("Owner")})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.CreateUser(context.Background(), NewUser{Email: "a@b.org", Password: "long enough", Role: RoleBranchAdmin})
	require.NoError(t, err)
	_, err = svc.CreateUser(context.Background(), NewUser{Email: "A@B.org", Password: "long enough", Role: RoleBranchAdmin})
	assert.ErrorIs(t, err, ErrConflict)
}

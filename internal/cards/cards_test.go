package cards

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upnd.org/internal/jurisdiction"
	"upnd.org/internal/member"
)

func registeredMember(t *testing.T, svc *member.Service, approve bool) member.Member {
	t.Helper()
	m, err := svc.Register(context.Background(), member.Registration{
		FullName:    "Card Holder",
		NRCNumber:   "445566/77/8",
		DateOfBirth: time.Date(1980, time.July, 1, 0, 0, 0, 0, time.UTC),
		Phone:       "0977987654",
		Jurisdiction: jurisdiction.Jurisdiction{
			Province: "Southern", District: "Choma", Constituency: "Choma Central",
			Ward: "Ward 1", Branch: "Central", Section: "A",
		},
		Address: "Plot 1, Choma",
	})
	require.NoError(t, err)
	if approve {
		m, err = svc.SetStatus(context.Background(), m.ID, member.StatusApproved)
		require.NoError(t, err)
	}
	return m
}

func TestIssueRequiresApproval(t *testing.T) {
	members := member.NewService(member.NewInMemory())
	svc := NewService(NewInMemory(), members)

	pending := registeredMember(t, members, false)
	_, err := svc.Issue(context.Background(), pending.ID)
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = svc.Issue(context.Background(), "missing")
	assert.ErrorIs(t, err, member.ErrNotFound)
}

func TestIssueAndRevoke(t *testing.T) {
	members := member.NewService(member.NewInMemory())
	svc := NewService(NewInMemory(), members)

	m := registeredMember(t, members, true)
	c, err := svc.Issue(context.Background(), m.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, c.Status)
	assert.Regexp(t, `^UPND-CARD-[0-9A-Z]{10}$`, c.CardNumber)
	assert.True(t, c.ExpiresAt.After(c.IssuedAt))

	revoked, err := svc.Revoke(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRevoked, revoked.Status)
}

func TestExpireDue(t *testing.T) {
	members := member.NewService(member.NewInMemory())
	clock := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(NewInMemory(), members,
		WithClock(func() time.Time { return clock }),
		WithValidity(24*time.Hour),
	)

	m := registeredMember(t, members, true)
	c, err := svc.Issue(context.Background(), m.ID)
	require.NoError(t, err)

	clock = clock.Add(48 * time.Hour)
	swept, err := svc.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
}

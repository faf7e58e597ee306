package comms

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upnd.org/internal/jurisdiction"
	"upnd.org/internal/member"
)

func seedMembers(t *testing.T) *member.Service {
	t.Helper()
	svc := member.NewService(member.NewInMemory())
	seed := []struct {
		nrc      string
		province string
		email    string
		approved bool
	}{
		{"111111/11/1", "Lusaka", "one@example.org", true},
		{"222222/22/2", "Copperbelt", "", true},
		{"333333/33/3", "Lusaka", "three@example.org", false},
	}
	for _, s := range seed {
		reg := member.Registration{
			FullName:    "Test Member " + s.nrc,
			NRCNumber:   s.nrc,
			DateOfBirth: time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC),
			Phone:       "+260971111111",
			Email:       s.email,
			Jurisdiction: jurisdiction.Jurisdiction{
				Province: s.province, District: "X", Constituency: "X",
				Ward: "X", Branch: "X", Section: "X",
			},
			Address: "Somewhere",
		}
		m, err := svc.Register(context.Background(), reg)
		require.NoError(t, err)
		if s.approved {
			_, err = svc.SetStatus(context.Background(), m.ID, member.StatusApproved)
			require.NoError(t, err)
		}
	}
	return svc
}

func TestSendResolvesRecipients(t *testing.T) {
	members := seedMembers(t)
	svc := NewService(NewInMemory(), members)

	comm, recipients, err := svc.Send(
		context.Background(), member.National(),
		"Ward meetings start Monday", ChannelSMS,
		RecipientFilter{Province: "Lusaka"}, "admin-1",
	)
	require.NoError(t, err)

	assert.Equal(t, StatusSending, comm.Status)
	assert.Equal(t, 2, comm.RecipientCount)
	require.Len(t, recipients, 2)
	for _, r := range recipients {
		assert.Equal(t, comm.ID, r.CommunicationID)
		assert.Equal(t, "+260971111111", r.Destination)
		assert.Equal(t, "Queued", r.State)
	}
}

func TestSendEmailSkipsMembersWithoutAddress(t *testing.T) {
	members := seedMembers(t)
	svc := NewService(NewInMemory(), members)

	comm, recipients, err := svc.Send(
		context.Background(), member.National(),
		"Newsletter", ChannelEmail, RecipientFilter{Status: "Approved"}, "",
	)
	require.NoError(t, err)

	// Two approved members, one has no email address.
	assert.Equal(t, 1, comm.RecipientCount)
	require.Len(t, recipients, 1)
	assert.Equal(t, "one@example.org", recipients[0].Destination)
}

func TestSendValidation(t *testing.T) {
	svc := NewService(NewInMemory(), seedMembers(t))

	_, _, err := svc.Send(context.Background(), member.National(), "  ", ChannelSMS, RecipientFilter{}, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Send(context.Background(), member.National(), "hi", Channel("Pigeon"), RecipientFilter{}, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMarkResult(t *testing.T) {
	members := seedMembers(t)
	svc := NewService(NewInMemory(), members)

	comm, _, err := svc.Send(context.Background(), member.National(), "hello", ChannelSMS, RecipientFilter{}, "")
	require.NoError(t, err)

	got, err := svc.MarkResult(context.Background(), comm.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, got.Status)

	got, err = svc.MarkResult(context.Background(), comm.ID, comm.RecipientCount)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)

	_, err = svc.MarkResult(context.Background(), "missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

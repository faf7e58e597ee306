package discipline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReport() Report {
	return Report{
		MemberID:         "m-1",
		MemberName:       "Mutale Banda",
		ViolationType:    "Code of conduct breach",
		Description:      "Unauthorized public statement",
		Severity:         SeverityMedium,
		ReportingOfficer: "officer-7",
	}
}

func TestOpenDefaultsToActive(t *testing.T) {
	svc := NewService(NewInMemory())
	c, err := svc.Open(context.Background(), validReport())
	require.NoError(t, err)
	assert.Equal(t, StatusActive, c.Status)
	assert.NotEmpty(t, c.ID)
	assert.Empty(t, c.Actions)
}

func TestOpenValidation(t *testing.T) {
	svc := NewService(NewInMemory())

	r := validReport()
	r.Severity = Severity("Catastrophic")
	_, err := svc.Open(context.Background(), r)
	assert.ErrorIs(t, err, ErrValidation)

	r = validReport()
	r.MemberID = ""
	_, err = svc.Open(context.Background(), r)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAppendsAreOrderedAndAppendOnly(t *testing.T) {
	base := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	now := base
	svc := NewService(NewInMemory(), WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))

	c, err := svc.Open(context.Background(), validReport())
	require.NoError(t, err)

	_, err = svc.AddNote(context.Background(), c.ID, "officer-7", "first note")
	require.NoError(t, err)
	_, err = svc.AddEvidence(context.Background(), c.ID, "officer-7", "photo ref 22")
	require.NoError(t, err)
	got, err := svc.AddNote(context.Background(), c.ID, "officer-9", "second note")
	require.NoError(t, err)

	require.Len(t, got.Notes, 2)
	require.Len(t, got.Evidence, 1)
	assert.Equal(t, "first note", got.Notes[0].Text)
	assert.Equal(t, "second note", got.Notes[1].Text)
	assert.True(t, got.Notes[1].At.After(got.Notes[0].At))

	_, err = svc.AddAction(context.Background(), c.ID, "", "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetStatus(t *testing.T) {
	svc := NewService(NewInMemory())
	c, err := svc.Open(context.Background(), validReport())
	require.NoError(t, err)

	got, err := svc.SetStatus(context.Background(), c.ID, StatusUnderReview)
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, got.Status)

	_, err = svc.SetStatus(context.Background(), c.ID, Status("Shredded"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetStatus(context.Background(), "missing", StatusResolved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByMember(t *testing.T) {
	svc := NewService(NewInMemory())
	_, err := svc.Open(context.Background(), validReport())
	require.NoError(t, err)
	other := validReport()
	other.MemberID = "m-2"
	_, err = svc.Open(context.Background(), other)
	require.NoError(t, err)

	got, err := svc.ListByMember(context.Background(), "m-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m-1", got[0].MemberID)
}

package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	starts := time.Date(2024, time.August, 10, 14, 0, 0, 0, time.UTC)
	return Draft{
		Title:    "Provincial mobilization rally",
		Venue:    "Woodlands Stadium",
		Province: "Lusaka",
		District: "Lusaka",
		StartsAt: starts,
		EndsAt:   starts.Add(3 * time.Hour),
	}
}

func TestCreateStartsPlanned(t *testing.T) {
	svc := NewService(NewInMemory())
	e, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, StatusPlanned, e.Status)
	assert.NotEmpty(t, e.ID)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewInMemory())

	d := validDraft()
	d.Title = " "
	_, err := svc.Create(context.Background(), d)
	assert.ErrorIs(t, err, ErrValidation)

	d = validDraft()
	d.EndsAt = d.StartsAt.Add(-time.Hour)
	_, err = svc.Create(context.Background(), d)
	assert.ErrorIs(t, err, ErrValidation)

	d = validDraft()
	d.Province = "Atlantis"
	_, err = svc.Create(context.Background(), d)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStatusLifecycle(t *testing.T) {
	svc := NewService(NewInMemory())
	e, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)

	got, err := svc.SetStatus(context.Background(), e.ID, StatusActive)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)

	_, err = svc.SetStatus(context.Background(), e.ID, Status("Postponed Forever"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRSVPUpsert(t *testing.T) {
	svc := NewService(NewInMemory())
	e, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), e.ID, "m-1", ResponseTentative)
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), e.ID, "m-1", ResponseAttending)
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), e.ID, "m-2", ResponseDeclined)
	require.NoError(t, err)

	got, err := svc.RSVPs(context.Background(), e.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ResponseAttending, got[0].Response)

	_, err = svc.Respond(context.Background(), "missing", "m-1", ResponseAttending)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Respond(context.Background(), e.ID, "m-1", Response("Maybe"))
	assert.ErrorIs(t, err, ErrValidation)
}

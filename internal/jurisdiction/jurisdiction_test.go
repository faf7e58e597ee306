package jurisdiction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Jurisdiction {
	return Jurisdiction{
		Province:     "Lusaka",
		District:     "Chongwe",
		Constituency: "Chongwe Central",
		Ward:         "Ward 4",
		Branch:       "Kanakantapa",
		Section:      "Section B",
	}
}

func TestValidateRequiresAllLevels(t *testing.T) {
	require.NoError(t, sample().Validate())

	j := sample()
	j.Ward = "   "
	err := j.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDistrictsFor(t *testing.T) {
	lusaka := DistrictsFor("Lusaka")
	require.NotEmpty(t, lusaka)
	assert.Contains(t, lusaka, "Kafue")

	assert.Empty(t, DistrictsFor("Atlantis"))
	assert.Len(t, Provinces(), 10)
}

func TestDistrictsForReturnsCopy(t *testing.T) {
	first := DistrictsFor("Lusaka")
	first[0] = "mutated"
	assert.NotEqual(t, "mutated", DistrictsFor("Lusaka")[0])
}

func TestVisible(t *testing.T) {
	m := sample()

	assert.True(t, Visible(LevelNational, "", m))
	assert.True(t, Visible(LevelProvincial, "Lusaka", m))
	assert.False(t, Visible(LevelProvincial, "Copperbelt", m))
	assert.True(t, Visible(LevelDistrict, "Chongwe", m))
	assert.True(t, Visible(LevelConstituency, "Chongwe Central", m))
	assert.True(t, Visible(LevelWard, "Ward 4", m))
	assert.True(t, Visible(LevelBranch, "Kanakantapa", m))
	assert.True(t, Visible(LevelSection, "Section B", m))

	// Case-insensitive comparison; registration desks are inconsistent.
	assert.True(t, Visible(LevelProvincial, "lusaka", m))
}

func TestVisibleFailsClosed(t *testing.T) {
	m := sample()

	// Unknown level is a misconfigured account, not a superuser.
	assert.False(t, Visible(Level("Galactic"), "Lusaka", m))
	// A scoped level with no scope string sees nothing.
	assert.False(t, Visible(LevelProvincial, "", m))
}

func TestCoordinatesCoverEveryProvince(t *testing.T) {
	for _, p := range Provinces() {
		c, ok := CoordinatesFor(p)
		require.True(t, ok, "missing coordinates for %s", p)
		assert.NotZero(t, c.Lat)
	}
	_, ok := CoordinatesFor("Atlantis")
	assert.False(t, ok)
}

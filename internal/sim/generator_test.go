package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upnd.org/internal/member"
)

func TestGeneratedRegistrationsValidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	gen := NewGenerator(42).WithClock(func() time.Time { return now })

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		reg := gen.NextRegistration()
		require.NoError(t, member.Validate(reg, now), "registration %d", i)
		assert.False(t, seen[reg.NRCNumber], "duplicate NRC %s", reg.NRCNumber)
		seen[reg.NRCNumber] = true
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	a := NewGenerator(7).WithClock(clock)
	b := NewGenerator(7).WithClock(clock)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.NextRegistration(), b.NextRegistration())
	}
}

func TestCounter(t *testing.T) {
	gen := NewGenerator(1)
	var c Counter
	for i := 0; i < 25; i++ {
		c.Add(gen.NextRegistration())
	}
	assert.Equal(t, 25, c.Registrations)
	total := 0
	for _, n := range c.ByProvince {
		total += n
	}
	assert.Equal(t, 25, total)
}

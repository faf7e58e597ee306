package sim

import (
	"fmt"
	"math/rand"
	"time"

	"upnd.org/internal/jurisdiction"
	"upnd.org/internal/member"
)

var (
	firstNames = []string{
		"Mwamba", "Chanda", "Bwalya", "Mutale", "Mulenga", "Nchimunya",
		"Chileshe", "Musonda", "Namakau", "Mubita", "Lushomo", "Kabwe",
		"Monde", "Sepiso", "Milimo", "Choolwe",
	}
	lastNames = []string{
		"Banda", "Phiri", "Zulu", "Tembo", "Mwila", "Sichone", "Hamoonga",
		"Siame", "Lungu", "Sakala", "Mwanza", "Daka", "Hichilema", "Simukonda",
	}
	occupations = []string{
		"Farmer", "Teacher", "Trader", "Nurse", "Driver", "Miner",
		"Carpenter", "Tailor", "Accountant", "Student",
	}
	genders = []string{"Male", "Female"}
)

// Generator produces plausible synthetic registrations for demos and load
// runs. A fixed seed yields a reproducible sequence.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
	seq int
}

// NewGenerator constructs a Generator; a zero seed falls back to wall time.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed)), now: time.Now}
}

// WithClock overrides the time source used for birth dates.
func (g *Generator) WithClock(fn func() time.Time) *Generator {
	if fn != nil {
		g.now = fn
	}
	return g
}

// NextRegistration synthesises one registration. NRC numbers are sequential
// so a single generator never trips the uniqueness check.
func (g *Generator) NextRegistration() member.Registration {
	g.seq++
	provinces := jurisdiction.Provinces()
	province := provinces[g.rnd.Intn(len(provinces))]
	districts := jurisdiction.DistrictsFor(province)
	district := districts[g.rnd.Intn(len(districts))]

	age := 18 + g.rnd.Intn(60)
	dob := g.now().UTC().AddDate(-age, -g.rnd.Intn(12), -g.rnd.Intn(28))

	return member.Registration{
		FullName:    firstNames[g.rnd.Intn(len(firstNames))] + " " + lastNames[g.rnd.Intn(len(lastNames))],
		NRCNumber:   fmt.Sprintf("%06d/%02d/1", 100000+g.seq, 10+g.rnd.Intn(80)),
		DateOfBirth: dob,
		Gender:      genders[g.rnd.Intn(len(genders))],
		Phone:       fmt.Sprintf("+2609%08d", 10000000+g.seq),
		Email:       fmt.Sprintf("member%d@example.org", g.seq),
		Jurisdiction: jurisdiction.Jurisdiction{
			Province:     province,
			District:     district,
			Constituency: district + " Central",
			Ward:         fmt.Sprintf("Ward %d", 1+g.rnd.Intn(30)),
			Branch:       fmt.Sprintf("Branch %d", 1+g.rnd.Intn(12)),
			Section:      fmt.Sprintf("Section %d", 1+g.rnd.Intn(6)),
		},
		Address:    fmt.Sprintf("Plot %d, %s", 1+g.rnd.Intn(9000), district),
		Occupation: occupations[g.rnd.Intn(len(occupations))],
	}
}

// Counter tallies generated registrations by province.
type Counter struct {
	Registrations int
	ByProvince    map[string]int
}

// Add records one registration.
func (c *Counter) Add(reg member.Registration) {
	c.Registrations++
	if c.ByProvince == nil {
		c.ByProvince = make(map[string]int)
	}
	c.ByProvince[reg.Jurisdiction.Province]++
}

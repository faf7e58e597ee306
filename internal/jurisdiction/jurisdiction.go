// Package jurisdiction models the six-level party administrative hierarchy
// (Province > District > Constituency > Ward > Branch > Section) used both to
// record where a member lives and to scope what an admin is allowed to see.
package jurisdiction

import (
	"errors"
	"fmt"
	"strings"
)

// Jurisdiction locates a member (or scopes an admin) inside the party
// structure. All six fields are required on member records.
type Jurisdiction struct {
	Province     string `json:"province"`
	District     string `json:"district"`
	Constituency string `json:"constituency"`
	Ward         string `json:"ward"`
	Branch       string `json:"branch"`
	Section      string `json:"section"`
}

var ErrIncomplete = errors.New("jurisdiction: all six levels are required")

// Validate checks that every level is populated. Only the province/district
// pair is checked against the static table; constituency and below are
// free-text captured at registration desks.
func (j Jurisdiction) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"province", j.Province},
		{"district", j.District},
		{"constituency", j.Constituency},
		{"ward", j.Ward},
		{"branch", j.Branch},
		{"section", j.Section},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is empty", ErrIncomplete, f.name)
		}
	}
	return nil
}

// Level is the organizational tier an admin account operates at.
type Level string

const (
	LevelNational     Level = "National"
	LevelProvincial   Level = "Provincial"
	LevelDistrict     Level = "District"
	LevelConstituency Level = "Constituency"
	LevelWard         Level = "Ward"
	LevelBranch       Level = "Branch"
	LevelSection      Level = "Section"
)

// Levels lists all organizational tiers from the top down.
func Levels() []Level {
	return []Level{
		LevelNational, LevelProvincial, LevelDistrict, LevelConstituency,
		LevelWard, LevelBranch, LevelSection,
	}
}

// KnownLevel reports whether l is one of the catalog levels.
func KnownLevel(l Level) bool {
	for _, known := range Levels() {
		if l == known {
			return true
		}
	}
	return false
}

// field returns the member jurisdiction value compared against an admin's
// scope at the given level. Empty string means the level carries no scope
// field (National) or is unknown.
func (j Jurisdiction) field(l Level) string {
	switch l {
	case LevelProvincial:
		return j.Province
	case LevelDistrict:
		return j.District
	case LevelConstituency:
		return j.Constituency
	case LevelWard:
		return j.Ward
	case LevelBranch:
		return j.Branch
	case LevelSection:
		return j.Section
	default:
		return ""
	}
}

// ValueAt returns the jurisdiction value at the given level: the province
// name for a Provincial admin, the ward name for a Ward admin, and so on.
// National and unknown levels yield "".
func (j Jurisdiction) ValueAt(l Level) string {
	return j.field(l)
}

// Visible reports whether a member located at m is inside the scope of an
// admin at level l whose jurisdiction string is scope. National admins see
// everything. Every other known level compares its corresponding field,
// case-insensitively. Unknown levels see nothing: the tier catalog is closed,
// so an unrecognized level is a misconfigured account, not a superuser.
func Visible(l Level, scope string, m Jurisdiction) bool {
	if l == LevelNational {
		return true
	}
	if !KnownLevel(l) {
		return false
	}
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(m.field(l)), scope)
}

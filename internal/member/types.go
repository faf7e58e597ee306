// Package member implements the membership register: applications, the
// jurisdictional approval workflow, and scoped retrieval.
package member

import (
	"errors"
	"strings"
	"time"

	"upnd.org/internal/jurisdiction"
)

// Status is the lifecycle state of a membership application. Applications
// climb the five pending stages from Section review upward; Approved,
// Rejected and Expelled are terminal in the ladder sense (they are left only
// by explicit re-assignment, never by the review ladder).
type Status string

const (
	StatusPendingSection    Status = "Pending Section Review"
	StatusPendingBranch     Status = "Pending Branch Review"
	StatusPendingWard       Status = "Pending Ward Review"
	StatusPendingDistrict   Status = "Pending District Review"
	StatusPendingProvincial Status = "Pending Provincial Review"
	StatusApproved          Status = "Approved"
	StatusRejected          Status = "Rejected"
	StatusSuspended         Status = "Suspended"
	StatusExpelled          Status = "Expelled"
)

// Statuses lists the full status catalog in workflow order.
func Statuses() []Status {
	return []Status{
		StatusPendingSection, StatusPendingBranch, StatusPendingWard,
		StatusPendingDistrict, StatusPendingProvincial,
		StatusApproved, StatusRejected, StatusSuspended, StatusExpelled,
	}
}

// KnownStatus reports whether s is one of the catalog values.
func KnownStatus(s Status) bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsPending reports whether s is one of the five review stages.
func (s Status) IsPending() bool {
	return strings.Contains(string(s), "Pending")
}

// IsTerminal reports whether the review ladder never leaves s on its own.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpelled
}

var errLadderEnd = errors.New("member: no next review stage")

// NextPendingStage returns the stage that follows s on the review ladder
// (Section → Branch → Ward → District → Provincial → Approved). The server
// does not force transitions through the ladder; this exists for UI
// affordances that advance one stage at a time.
func NextPendingStage(s Status) (Status, error) {
	switch s {
	case StatusPendingSection:
		return StatusPendingBranch, nil
	case StatusPendingBranch:
		return StatusPendingWard, nil
	case StatusPendingWard:
		return StatusPendingDistrict, nil
	case StatusPendingDistrict:
		return StatusPendingProvincial, nil
	case StatusPendingProvincial:
		return StatusApproved, nil
	default:
		return s, errLadderEnd
	}
}

// Member is a registered party member or a pending applicant.
type Member struct {
	ID           string                    `json:"id"`
	MembershipID string                    `json:"membership_id"`
	FullName     string                    `json:"full_name"`
	NRCNumber    string                    `json:"nrc_number"`
	DateOfBirth  time.Time                 `json:"date_of_birth"`
	Gender       string                    `json:"gender,omitempty"`
	Phone        string                    `json:"phone"`
	Email        string                    `json:"email,omitempty"`
	Jurisdiction jurisdiction.Jurisdiction `json:"jurisdiction"`
	Address      string                    `json:"residential_address"`
	Occupation   string                    `json:"occupation,omitempty"`
	Status       Status                    `json:"status"`
	RegisteredAt time.Time                 `json:"registered_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// Registration is the caller-supplied applicant detail. Note there is no
// status field: applications always enter at Section review no matter what a
// client sends.
type Registration struct {
	FullName     string                    `json:"full_name"`
	NRCNumber    string                    `json:"nrc_number"`
	DateOfBirth  time.Time                 `json:"date_of_birth"`
	Gender       string                    `json:"gender"`
	Phone        string                    `json:"phone"`
	Email        string                    `json:"email"`
	Jurisdiction jurisdiction.Jurisdiction `json:"jurisdiction"`
	Address      string                    `json:"residential_address"`
	Occupation   string                    `json:"occupation"`
}

// Scope restricts visibility to the caller's tier of the party structure.
// A zero scope (empty level) grants nothing; build it from the principal.
type Scope struct {
	Level        jurisdiction.Level
	Jurisdiction string
}

// Allows reports whether m falls inside the scope.
func (sc Scope) Allows(m Member) bool {
	return jurisdiction.Visible(sc.Level, sc.Jurisdiction, m.Jurisdiction)
}

// National is the unrestricted scope.
func National() Scope {
	return Scope{Level: jurisdiction.LevelNational}
}

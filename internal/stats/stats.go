// Package stats derives dashboard aggregates and ephemeral notifications
// from snapshots of the register. Everything here is a pure function of its
// inputs: recomputing on identical data yields identical output, and no
// input slice is ever mutated.
package stats

import (
	"time"

	"upnd.org/internal/member"
)

// Statistics is the derived, non-persisted dashboard aggregate.
type Statistics struct {
	TotalMembers       int                   `json:"total_members"`
	PendingMembers     int                   `json:"pending_members"`
	ApprovedMembers    int                   `json:"approved_members"`
	RejectedMembers    int                   `json:"rejected_members"`
	SuspendedMembers   int                   `json:"suspended_members"`
	ByProvince         map[string]int        `json:"by_province"`
	StatusDistribution map[member.Status]int `json:"status_distribution"`
	// MonthlyRegistrations buckets registrations of the current year,
	// January first.
	MonthlyRegistrations [12]int `json:"monthly_registrations"`
	Year                 int     `json:"year"`
}

// Compute aggregates a member snapshot in a single pass. The status
// distribution is zero-filled over the full catalog so charts always see all
// nine series.
func Compute(members []member.Member, now time.Time) Statistics {
	st := Statistics{
		ByProvince:         make(map[string]int),
		StatusDistribution: make(map[member.Status]int, 9),
		Year:               now.Year(),
	}
	for _, s := range member.Statuses() {
		st.StatusDistribution[s] = 0
	}
	for _, m := range members {
		st.TotalMembers++
		st.StatusDistribution[m.Status]++
		switch {
		case m.Status.IsPending():
			st.PendingMembers++
		case m.Status == member.StatusApproved:
			st.ApprovedMembers++
		case m.Status == member.StatusRejected:
			st.RejectedMembers++
		case m.Status == member.StatusSuspended:
			st.SuspendedMembers++
		}
		st.ByProvince[m.Jurisdiction.Province]++
		if m.RegisteredAt.Year() == st.Year {
			st.MonthlyRegistrations[int(m.RegisteredAt.Month())-1]++
		}
	}
	return st
}

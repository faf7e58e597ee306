package stats

import (
	"fmt"
	"time"

	"upnd.org/internal/discipline"
	"upnd.org/internal/member"
)

// Severity tags a notification for dashboard styling.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityUrgent  Severity = "urgent"
)

// Notification is an ephemeral, derived alert. It is never persisted; the id
// is stable across recomputations so clients can dismiss by id.
type Notification struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	// Action is an optional client-side route the notification links to.
	Action string `json:"action,omitempty"`
	Count  int    `json:"count"`
}

// PermissionChecker is the slice of the principal the derivation needs.
type PermissionChecker interface {
	HasPermission(key string) bool
}

// Notifications derives the alert list for one caller from current
// snapshots. Pure: identical inputs produce identical output and neither
// slice is modified.
func Notifications(st Statistics, members []member.Member, cases []discipline.Case, caller PermissionChecker, now time.Time) []Notification {
	var out []Notification

	if caller != nil && caller.HasPermission("approve_members") && st.PendingMembers > 0 {
		out = append(out, Notification{
			ID:       "pending-approvals",
			Severity: SeverityWarning,
			Title:    "Applications awaiting review",
			Body:     fmt.Sprintf("%d membership applications are pending approval", st.PendingMembers),
			Action:   "/members?status=pending",
			Count:    st.PendingMembers,
		})
	}

	approvedRecently := 0
	registeredLastHour := 0
	for _, m := range members {
		if m.Status == member.StatusApproved && now.Sub(m.UpdatedAt) <= 24*time.Hour {
			approvedRecently++
		}
		if now.Sub(m.RegisteredAt) <= time.Hour {
			registeredLastHour++
		}
	}
	if approvedRecently > 0 {
		out = append(out, Notification{
			ID:       "recent-approvals",
			Severity: SeveritySuccess,
			Title:    "Members approved",
			Body:     fmt.Sprintf("%d members approved in the last 24 hours", approvedRecently),
			Count:    approvedRecently,
		})
	}

	if caller != nil && caller.HasPermission("manage_disciplinary") {
		active := 0
		for _, c := range cases {
			if c.Status == discipline.StatusActive {
				active++
			}
		}
		if active > 0 {
			out = append(out, Notification{
				ID:       "active-cases",
				Severity: SeverityUrgent,
				Title:    "Active disciplinary cases",
				Body:     fmt.Sprintf("%d disciplinary cases are active", active),
				Action:   "/disciplinary",
				Count:    active,
			})
		}
	}

	if registeredLastHour > 0 {
		out = append(out, Notification{
			ID:       "recent-registrations",
			Severity: SeverityInfo,
			Title:    "New registrations",
			Body:     fmt.Sprintf("%d new registrations in the last hour", registeredLastHour),
			Count:    registeredLastHour,
		})
	}

	return out
}

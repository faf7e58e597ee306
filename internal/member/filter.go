package member

import "strings"

// Filter narrows a scoped member list. The zero filter matches everything.
type Filter struct {
	// Query is a case-insensitive substring matched against full name,
	// membership number and NRC number.
	Query string
	// Status is either a catalog status, the word "pending" (any review
	// stage), or "all"/empty for no status filter.
	Status string
}

// Matches reports whether m passes the filter.
func (f Filter) Matches(m Member) bool {
	if q := strings.TrimSpace(strings.ToLower(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(m.FullName), q) &&
			!strings.Contains(strings.ToLower(m.MembershipID), q) &&
			!strings.Contains(strings.ToLower(m.NRCNumber), q) {
			return false
		}
	}
	switch status := strings.TrimSpace(f.Status); strings.ToLower(status) {
	case "", "all":
		return true
	case "pending":
		return m.Status.IsPending()
	default:
		return strings.EqualFold(string(m.Status), status)
	}
}

package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                             "/",
		"/metrics":                     "/metrics",
		"/v1/members/abc":              "/v1/members/:id",
		"/v1/members/abc/status":       "/v1/members/:id/status",
		"/v1/members/abc/advance":      "/v1/members/:id/advance",
		"/v1/members/abc/extra":        "/v1/members/abc/extra",
		"/v1/members":                  "/v1/members",
		"/v1/members?status=pending":   "/v1/members",
		"/v1/events/ev1/rsvps":         "/v1/events/:id/rsvps",
		"/v1/disciplinary/case1/notes": "/v1/disciplinary/:id/notes",
		"/v1/communications/cm1":       "/v1/communications/:id",
		"/v1/statistics":               "/v1/statistics",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}

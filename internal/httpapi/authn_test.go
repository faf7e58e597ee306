package httpapi

import (
	"context"
	"testing"

	"upnd.org/internal/auth"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer abc", "abc", false},
		{"Bearer   padded  ", "padded", false},
		{"", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
		{"Bearer ", "", true},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("header %q: expected error", tc.header)
			}
			continue
		}
		if err != nil {
			t.Fatalf("header %q: %v", tc.header, err)
		}
		if got != tc.want {
			t.Fatalf("header %q: got %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestIsPublicPath(t *testing.T) {
	for _, path := range []string{"/healthz", "/v1/auth/login", "/v1/stream", "/metrics"} {
		if !isPublicPath(path) {
			t.Fatalf("expected %q public", path)
		}
	}
	for _, path := range []string{"/v1/members", "/v1/statistics", "/v1/members/abc"} {
		if isPublicPath(path) {
			t.Fatalf("expected %q protected", path)
		}
	}
}

func TestRequirePermission(t *testing.T) {
	api := &API{}

	// No principal in context.
	if _, err := api.requirePermission(context.Background(), auth.PermApproveMembers); err == nil {
		t.Fatal("expected error without principal")
	}

	principal := auth.Principal{
		UserID:      "user-1",
		Role:        auth.RoleProvincialAdmin,
		Permissions: map[string]struct{}{auth.PermApproveMembers: {}},
	}
	ctx := auth.ContextWithPrincipal(context.Background(), principal)

	if _, err := api.requirePermission(ctx, auth.PermApproveMembers); err != nil {
		t.Fatalf("expected granted permission, got %v", err)
	}
	if _, err := api.requirePermission(ctx, auth.PermSystemSettings); err == nil {
		t.Fatal("expected denial for missing permission")
	}
}

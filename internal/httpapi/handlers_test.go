package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"upnd.org/internal/auth"
	"upnd.org/internal/cards"
	"upnd.org/internal/comms"
	"upnd.org/internal/discipline"
	"upnd.org/internal/events"
	"upnd.org/internal/jurisdiction"
	"upnd.org/internal/member"
	"upnd.org/internal/stream"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
	authSvc *auth.Service
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	t.Setenv("UPND_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()

	members := member.NewService(member.NewInMemory())
	svc := Services{
		Members:    members,
		Discipline: discipline.NewService(discipline.NewInMemory()),
		Events:     events.NewService(events.NewInMemory()),
		Comms:      comms.NewService(comms.NewInMemory(), members),
		Cards:      cards.NewService(cards.NewInMemory(), members),
		Auth:       auth.NewService(auth.NewInMemory()),
	}

	api := New(ReadyProbe{}, "test", svc, stream.New())
	api.rateBurst = 100
	api.ratePerSec = 100

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
		authSvc: svc.Auth,
	}
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

// seedUser creates an account directly against the auth service and returns
// a bearer header obtained through the login endpoint.
func (c *apiClient) seedUser(email string, role auth.Role, j jurisdiction.Jurisdiction) map[string]string {
	c.t.Helper()
	_, err := c.authSvc.CreateUser(context.Background(), auth.NewUser{
		Email:        email,
		Password:     "correct-horse",
		FullName:     "Test Admin",
		Role:         role,
		Jurisdiction: j,
	})
	if err != nil {
		c.t.Fatalf("seed user: %v", err)
	}
	resp := c.post("/v1/auth/login", map[string]any{
		"email":    email,
		"password": "correct-horse",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	pair := decode[tokenResponse](c.t, resp)
	if pair.AccessToken == "" {
		c.t.Fatalf("empty access token issued")
	}
	return map[string]string{"Authorization": "Bearer " + pair.AccessToken}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func lusakaRegistration(name, nrc string) map[string]any {
	return map[string]any{
		"full_name":     name,
		"nrc_number":    nrc,
		"date_of_birth": "1990-05-10T00:00:00Z",
		"gender":        "Female",
		"phone":         "+260977123456",
		"email":         "",
		"jurisdiction": map[string]any{
			"province":     "Lusaka",
			"district":     "Lusaka",
			"constituency": "Mandevu",
			"ward":         "Raphael Chota",
			"branch":       "Chaisa",
			"section":      "Section 4",
		},
		"residential_address": "Plot 11, Chaisa, Lusaka",
		"occupation":          "Trader",
	}
}

func TestAPIRegistrationApprovalFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := api.seedUser("admin@upnd.org", auth.RoleNationalAdmin, jurisdiction.Jurisdiction{})

	// Self-registration needs no credentials.
	resp := api.post("/v1/members", lusakaRegistration("Bwalya Mwansa", "123456/10/1"), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected registration status: %d", resp.StatusCode)
	}
	if resp.Header.Get("Location") == "" {
		t.Fatalf("missing Location header")
	}
	created := decode[member.Member](t, resp)
	if created.Status != member.StatusPendingSection {
		t.Fatalf("new application entered at %q", created.Status)
	}
	if created.MembershipID == "" {
		t.Fatalf("no membership number assigned")
	}

	// The national admin sees the pending applicant.
	resp = api.get("/v1/members", url.Values{"status": []string{"pending"}}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected list status: %d", resp.StatusCode)
	}
	listing := decode[listMembersResponse](t, resp)
	if listing.Count != 1 {
		t.Fatalf("expected one pending applicant, got %d", listing.Count)
	}

	// Climb one review stage, then approve outright.
	resp = api.post("/v1/members/"+created.ID+"/advance", nil, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected advance status: %d", resp.StatusCode)
	}
	advanced := decode[member.Member](t, resp)
	if advanced.Status != member.StatusPendingBranch {
		t.Fatalf("advance landed on %q", advanced.Status)
	}

	resp = api.post("/v1/members/"+created.ID+"/status", map[string]any{
		"status": string(member.StatusApproved),
	}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status-change status: %d", resp.StatusCode)
	}
	approved := decode[member.Member](t, resp)
	if approved.Status != member.StatusApproved {
		t.Fatalf("status change landed on %q", approved.Status)
	}

	// Statistics reflect the approval.
	resp = api.get("/v1/statistics", nil, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected statistics status: %d", resp.StatusCode)
	}
	statsPayload := decode[map[string]any](t, resp)
	if statsPayload["approved_members"].(float64) != 1 {
		t.Fatalf("unexpected approved count: %v", statsPayload["approved_members"])
	}
}

func TestAPIBulkApprove(t *testing.T) {
	api := newTestAPI(t)
	admin := api.seedUser("admin@upnd.org", auth.RoleNationalAdmin, jurisdiction.Jurisdiction{})

	var ids []string
	for _, nrc := range []string{"111111/10/1", "222222/10/1"} {
		resp := api.post("/v1/members", lusakaRegistration("Applicant "+nrc, nrc), nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("unexpected registration status: %d", resp.StatusCode)
		}
		ids = append(ids, decode[member.Member](t, resp).ID)
	}

	resp := api.post("/v1/members/bulk-approve", map[string]any{
		"member_ids": append(ids, "no-such-member"),
	}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected bulk status: %d", resp.StatusCode)
	}
	result := decode[bulkApproveResponse](t, resp)
	if result.Approved != 2 || result.Failed != 1 {
		t.Fatalf("unexpected bulk outcome: %d approved, %d failed", result.Approved, result.Failed)
	}
}

func TestAPIBulkApproveHonorsScope(t *testing.T) {
	api := newTestAPI(t)
	copperbelt := api.seedUser("ndola@upnd.org", auth.RoleProvincialAdmin, jurisdiction.Jurisdiction{
		Province: "Copperbelt",
	})

	resp := api.post("/v1/members", lusakaRegistration("Bwalya Mwansa", "123456/10/1"), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected registration status: %d", resp.StatusCode)
	}
	created := decode[member.Member](t, resp)

	// A Copperbelt admin cannot approve a Lusaka member through the bulk
	// route any more than through the single-member one.
	resp = api.post("/v1/members/bulk-approve", map[string]any{
		"member_ids": []string{created.ID},
	}, copperbelt)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected bulk status: %d", resp.StatusCode)
	}
	result := decode[bulkApproveResponse](t, resp)
	if result.Approved != 0 || result.Failed != 1 {
		t.Fatalf("out-of-scope member approved: %d approved, %d failed", result.Approved, result.Failed)
	}

	// The member is untouched: a national admin still sees it pending.
	national := api.seedUser("admin@upnd.org", auth.RoleNationalAdmin, jurisdiction.Jurisdiction{})
	resp = api.get("/v1/members/"+created.ID, nil, national)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected get status: %d", resp.StatusCode)
	}
	fetched := decode[member.Member](t, resp)
	if fetched.Status != member.StatusPendingSection {
		t.Fatalf("member status changed to %q", fetched.Status)
	}
}

func TestAPIScopedVisibility(t *testing.T) {
	api := newTestAPI(t)
	copperbelt := api.seedUser("ndola@upnd.org", auth.RoleProvincialAdmin, jurisdiction.Jurisdiction{
		Province: "Copperbelt",
	})

	resp := api.post("/v1/members", lusakaRegistration("Bwalya Mwansa", "123456/10/1"), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected registration status: %d", resp.StatusCode)
	}
	created := decode[member.Member](t, resp)

	// A Copperbelt admin cannot see a Lusaka applicant, in list or by id.
	resp = api.get("/v1/members", nil, copperbelt)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected list status: %d", resp.StatusCode)
	}
	listing := decode[listMembersResponse](t, resp)
	if listing.Count != 0 {
		t.Fatalf("out-of-scope member leaked into listing")
	}

	resp = api.get("/v1/members/"+created.ID, nil, copperbelt)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for out-of-scope member, got %d", resp.StatusCode)
	}
}

func TestAPIEnforcesAuth(t *testing.T) {
	api := newTestAPI(t)

	resp := api.get("/v1/members", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	var errBody map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody["error"] == "" {
		t.Fatalf("expected error message")
	}
}

func TestAPIPermissionDenied(t *testing.T) {
	api := newTestAPI(t)
	plain := api.seedUser("member@upnd.org", auth.RoleMember, jurisdiction.Jurisdiction{})

	resp := api.post("/v1/disciplinary", map[string]any{
		"member_id":   "anything",
		"charge":      "conduct",
		"description": "raised at branch meeting",
	}, plain)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestAPICardLifecycle(t *testing.T) {
	api := newTestAPI(t)
	admin := api.seedUser("admin@upnd.org", auth.RoleNationalAdmin, jurisdiction.Jurisdiction{})

	resp := api.post("/v1/members", lusakaRegistration("Bwalya Mwansa", "123456/10/1"), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected registration status: %d", resp.StatusCode)
	}
	m := decode[member.Member](t, resp)

	// Pending applicants are not card-eligible.
	resp = api.post("/v1/cards", map[string]any{"member_id": m.ID}, admin)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for pending applicant, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.post("/v1/members/"+m.ID+"/status", map[string]any{
		"status": string(member.StatusApproved),
	}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected approval status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.post("/v1/cards", map[string]any{"member_id": m.ID}, admin)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected issue status: %d", resp.StatusCode)
	}
	card := decode[cards.Card](t, resp)
	if card.CardNumber == "" {
		t.Fatalf("issued card has no number")
	}

	resp = api.post("/v1/cards/"+card.ID+"/revoke", nil, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected revoke status: %d", resp.StatusCode)
	}
	revoked := decode[cards.Card](t, resp)
	if revoked.Status != cards.StatusRevoked {
		t.Fatalf("revoke landed on %q", revoked.Status)
	}
}

func TestAPIExportCSV(t *testing.T) {
	api := newTestAPI(t)
	admin := api.seedUser("admin@upnd.org", auth.RoleNationalAdmin, jurisdiction.Jurisdiction{})

	resp := api.post("/v1/members", lusakaRegistration("Bwalya Mwansa", "123456/10/1"), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected registration status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get("/v1/members/export", url.Values{"format": []string{"csv"}}, admin)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected export status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected content type: %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd == "" {
		t.Fatalf("missing Content-Disposition header")
	}
}

func TestAPIRegistrationValidation(t *testing.T) {
	api := newTestAPI(t)

	reg := lusakaRegistration("Too Young", "123456/10/1")
	reg["date_of_birth"] = "2015-01-01T00:00:00Z"
	resp := api.post("/v1/members", reg, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"upnd.org/internal/member"
	"upnd.org/internal/sim"
)

// smoke drives one registration through the full approval path against a
// running API and fails loudly if any step misbehaves. Needs an existing
// admin account; see cmd/seed-admin.
func main() {
	baseURL := os.Getenv("UPND_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	email := os.Getenv("UPND_SMOKE_EMAIL")
	password := os.Getenv("UPND_SMOKE_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("set UPND_SMOKE_EMAIL and UPND_SMOKE_PASSWORD to an admin account")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client := &http.Client{Timeout: 10 * time.Second}

	token, err := login(ctx, client, baseURL, email, password)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	reg := sim.NewGenerator(time.Now().UnixNano()).NextRegistration()
	var created member.Member
	if err := call(ctx, client, http.MethodPost, baseURL+"/v1/members", "", reg, &created); err != nil {
		log.Fatalf("register: %v", err)
	}
	if created.Status != member.StatusPendingSection {
		log.Fatalf("new application entered at %q", created.Status)
	}

	var approved member.Member
	err = call(ctx, client, http.MethodPost, baseURL+"/v1/members/"+created.ID+"/status", token,
		map[string]any{"status": string(member.StatusApproved)}, &approved)
	if err != nil {
		log.Fatalf("approve: %v", err)
	}
	if approved.Status != member.StatusApproved {
		log.Fatalf("approval landed on %q", approved.Status)
	}

	var statsPayload map[string]any
	if err := call(ctx, client, http.MethodGet, baseURL+"/v1/statistics", token, nil, &statsPayload); err != nil {
		log.Fatalf("statistics: %v", err)
	}
	if n, ok := statsPayload["approved_members"].(float64); !ok || n < 1 {
		log.Fatalf("statistics did not count the approval: %v", statsPayload["approved_members"])
	}

	fmt.Printf("smoke test passed: member=%s card-eligible\n", approved.MembershipID)
}

func login(ctx context.Context, client *http.Client, baseURL, email, password string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := call(ctx, client, http.MethodPost, baseURL+"/v1/auth/login", "",
		map[string]any{"email": email, "password": password}, &out)
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("empty access token returned")
	}
	return out.AccessToken, nil
}

func call(ctx context.Context, client *http.Client, method, url, token string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s", method, url, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

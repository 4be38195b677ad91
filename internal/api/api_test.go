package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/back2u/internal/db"
	"github.com/erazemk/back2u/internal/model"
	"github.com/erazemk/back2u/internal/store"
)

const testJWTSecret = "test-secret"

// recordingMailer captures outgoing mail instead of delivering it.
type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, to)
	return nil
}

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB, *recordingMailer) {
	t.Helper()
	database := db.NewTestDB(t)
	mailer := &recordingMailer{}
	server := httptest.NewServer(NewRouter(database, testJWTSecret, mailer))
	t.Cleanup(server.Close)
	return server, database, mailer
}

func createUser(t *testing.T, database *sql.DB, name, email, role string) {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if _, err := store.CreateUser(context.Background(), database, name, email, role, string(hash)); err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
}

func login(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]any
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatal("empty token from login")
	}
	return token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func TestSignupAndLogin(t *testing.T) {
	server, _, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password",
	})
	resp, _ := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 on signup, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Duplicate email conflicts.
	resp, _ = http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	login(t, server, "alice@example.com")

	// Wrong password.
	bad, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "wrong"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(bad))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestReportClaimApproveFlow(t *testing.T) {
	server, database, mailer := setupTestServer(t)
	ctx := context.Background()

	createUser(t, database, "Admin", "admin@example.com", model.RoleAdmin)
	createUser(t, database, "Reporter", "reporter@example.com", model.RoleStudent)
	createUser(t, database, "Claimant", "claimant@example.com", model.RoleStudent)
	adminToken := login(t, server, "admin@example.com")
	reporterToken := login(t, server, "reporter@example.com")
	claimantToken := login(t, server, "claimant@example.com")

	// Admin creates a category.
	req, _ := authRequest("POST", server.URL+"/api/categories", adminToken, map[string]string{"name": "Electronics"})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 creating category, got %d", resp.StatusCode)
	}
	var categoryResp map[string]any
	json.NewDecoder(resp.Body).Decode(&categoryResp)
	resp.Body.Close()
	categoryID := int64(categoryResp["category_id"].(float64))

	// Reporter files a found item.
	req, _ = authRequest("POST", server.URL+"/api/items", reporterToken, map[string]any{
		"title":       "Lost Phone",
		"description": "black, cracked screen",
		"status":      "found",
		"category_id": categoryID,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 reporting item, got %d", resp.StatusCode)
	}
	var itemResp map[string]any
	json.NewDecoder(resp.Body).Decode(&itemResp)
	resp.Body.Close()
	itemID := int64(itemResp["id"].(float64))

	// Claimant files a claim.
	req, _ = authRequest("POST", fmt.Sprintf("%s/api/items/%d/claim", server.URL, itemID), claimantToken, map[string]string{
		"verification_details": "it has my initials on the back",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 submitting claim, got %d", resp.StatusCode)
	}
	var claimResp map[string]any
	json.NewDecoder(resp.Body).Decode(&claimResp)
	resp.Body.Close()
	claimID := int64(claimResp["id"].(float64))

	// The claim shows up on the admin dashboard.
	req, _ = authRequest("GET", server.URL+"/api/admin/claims/pending", adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	var pending []model.Claim
	json.NewDecoder(resp.Body).Decode(&pending)
	resp.Body.Close()
	if len(pending) != 1 || pending[0].ItemTitle != "Lost Phone" {
		t.Fatalf("expected 1 pending claim for the phone, got %+v", pending)
	}

	// Admin approves it.
	req, _ = authRequest("POST", server.URL+"/api/admin/claims/resolve", adminToken, map[string]any{
		"claim_id":        claimID,
		"resolution_type": "approve",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 approving claim, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Item is resolved and the claim approved.
	item, _ := store.GetItem(ctx, database, itemID)
	if item.Status != model.ItemStatusResolved {
		t.Errorf("expected item resolved, got %q", item.Status)
	}
	claim, _ := store.GetClaim(ctx, database, claimID)
	if claim.Status != model.ClaimStatusApproved {
		t.Errorf("expected claim approved, got %q", claim.Status)
	}

	// Both parties got mail and a notification row.
	if len(mailer.sent) != 2 {
		t.Errorf("expected 2 emails, got %d", len(mailer.sent))
	}
	req, _ = authRequest("GET", server.URL+"/api/notifications", claimantToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	var notifications []model.Notification
	json.NewDecoder(resp.Body).Decode(&notifications)
	resp.Body.Close()
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification for claimant, got %d", len(notifications))
	}

	// Approval is terminal.
	req, _ = authRequest("POST", server.URL+"/api/admin/claims/resolve", adminToken, map[string]any{
		"claim_id":        claimID,
		"resolution_type": "reject",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 resolving twice, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRejectClaimFlow(t *testing.T) {
	server, database, mailer := setupTestServer(t)
	ctx := context.Background()

	createUser(t, database, "Admin", "admin@example.com", model.RoleAdmin)
	createUser(t, database, "Reporter", "reporter@example.com", model.RoleStudent)
	createUser(t, database, "Claimant", "claimant@example.com", model.RoleStudent)
	adminToken := login(t, server, "admin@example.com")

	category, _ := store.CreateCategory(ctx, database, "Books")
	item, _ := store.CreateItem(ctx, database, 2, category.ID, "Textbook", "", model.ItemStatusFound)
	claim, _ := store.SubmitClaim(ctx, database, item.ID, 3, "blue cover")

	req, _ := authRequest("POST", server.URL+"/api/admin/claims/resolve", adminToken, map[string]any{
		"claim_id":        claim.ID,
		"resolution_type": "reject",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 rejecting claim, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Rejection leaves the item alone and sends no mail.
	got, _ := store.GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusClaimPending {
		t.Errorf("expected item to stay claim_pending, got %q", got.Status)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("expected no emails on rejection, got %d", len(mailer.sent))
	}
}

func TestCategoryDeleteResequences(t *testing.T) {
	server, database, _ := setupTestServer(t)
	ctx := context.Background()

	createUser(t, database, "Admin", "admin@example.com", model.RoleAdmin)
	adminToken := login(t, server, "admin@example.com")

	doomed, _ := store.CreateCategory(ctx, database, "Doomed")
	kept, _ := store.CreateCategory(ctx, database, "Kept")
	store.CreateItem(ctx, database, 1, doomed.ID, "Doomed Item", "", model.ItemStatusFound)
	store.CreateItem(ctx, database, 1, kept.ID, "Kept Item", "", model.ItemStatusFound)

	req, _ := authRequest("DELETE", server.URL+"/api/admin/categories/1", adminToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 deleting category, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The surviving category and item were re-sequenced to id 1.
	category, _ := store.GetCategory(ctx, database, 1)
	if category == nil || category.Name != "Kept" {
		t.Errorf("expected surviving category at id 1, got %+v", category)
	}
	item, _ := store.GetItem(ctx, database, 1)
	if item == nil || item.Title != "Kept Item" {
		t.Errorf("expected surviving item at id 1, got %+v", item)
	}
}

func TestAdminOnlyAccess(t *testing.T) {
	server, database, _ := setupTestServer(t)

	createUser(t, database, "Student", "student@example.com", model.RoleStudent)
	studentToken := login(t, server, "student@example.com")

	req, _ := authRequest("GET", server.URL+"/api/admin/claims/pending", studentToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for student on admin route, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("POST", server.URL+"/api/categories", studentToken, map[string]string{"name": "Nope"})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for student creating category, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, database, _ := setupTestServer(t)
	ctx := context.Background()

	// Browsing is public.
	resp, _ := http.Get(server.URL + "/api/items")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for public item listing, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Reporting is not.
	createUser(t, database, "Reporter", "reporter@example.com", model.RoleStudent)
	category, _ := store.CreateCategory(ctx, database, "Electronics")
	body, _ := json.Marshal(map[string]any{"title": "Thing", "status": "found", "category_id": category.ID})
	resp, _ = http.Post(server.URL+"/api/items", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated report, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, database, _ := setupTestServer(t)

	createUser(t, database, "Alice", "alice@example.com", model.RoleStudent)
	token := login(t, server, "alice@example.com")

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The token no longer works.
	req, _ = authRequest("GET", server.URL+"/api/notifications", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

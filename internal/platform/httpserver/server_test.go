package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	accessguard "chama/contexts/identity-access/access-guard-service"
	accountadmin "chama/contexts/identity-access/account-admin-service"
	"chama/contexts/identity-access/account-admin-service/ports"
	memberdirectory "chama/contexts/identity-access/member-directory-service"
)

func newTestServer(t *testing.T) (*Server, *accountadmin.Module) {
	t.Helper()

	guard := accessguard.NewModule(accessguard.Dependencies{})
	directory := memberdirectory.NewInMemoryModule(nil)
	accounts := accountadmin.NewInMemoryModule(nil)
	server := New(guard, directory, accounts, nil, ":0")
	return server, &accounts
}

func seedAdminFixture(accounts *accountadmin.Module) {
	store := accounts.Store
	store.SeedPrincipal("u1")
	store.SeedPrincipal("u2")
	store.SeedToken("tok-member", ports.Caller{UserID: "u1"})
	store.SeedToken("tok-super", ports.Caller{UserID: "root-1"})
	store.SeedPrincipal("root-1")
	store.SeedRole("root-1", "super_admin")
	store.SeedMembership("u1", "G1", false, "active")
}

func postJSON(t *testing.T, handler http.Handler, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeErrorBody(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not valid JSON: %v (%s)", err, recorder.Body.String())
	}
	return body.Error
}

func TestAdminDeleteWithoutAuthorizationHeader(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := postJSON(t, server.Handler(), "/api/admin/v1/users/delete", `{"userId":"u2"}`, nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if msg := decodeErrorBody(t, recorder); msg != "Missing authorization header" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestAdminDeleteInvalidToken(t *testing.T) {
	server, accounts := newTestServer(t)
	seedAdminFixture(accounts)

	recorder := postJSON(t, server.Handler(), "/api/admin/v1/users/delete", `{"userId":"u2"}`, map[string]string{
		"Authorization": "Bearer forged",
	})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if msg := decodeErrorBody(t, recorder); msg != "Invalid token" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestAdminDeletePlainMemberForbidden(t *testing.T) {
	server, accounts := newTestServer(t)
	seedAdminFixture(accounts)

	recorder := postJSON(t, server.Handler(), "/api/admin/v1/users/delete", `{"userId":"u2","groupId":"G1"}`, map[string]string{
		"Authorization": "Bearer tok-member",
	})
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
	if msg := decodeErrorBody(t, recorder); msg != "Unauthorized: requires admin privileges" {
		t.Fatalf("unexpected error message %q", msg)
	}
	if calls := accounts.Store.DeleteCalls(); len(calls) != 0 {
		t.Fatalf("expected no deletions, got %v", calls)
	}
}

func TestAdminDeleteSuperAdminSucceedsOnce(t *testing.T) {
	server, accounts := newTestServer(t)
	seedAdminFixture(accounts)

	recorder := postJSON(t, server.Handler(), "/api/admin/v1/users/delete", `{"userId":"u2"}`, map[string]string{
		"Authorization": "Bearer tok-super",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil || !body.Success {
		t.Fatalf("expected success body, got %s", recorder.Body.String())
	}

	calls := accounts.Store.DeleteCalls()
	if len(calls) != 1 || calls[0] != "u2" {
		t.Fatalf("expected exactly one deletion of u2, got %v", calls)
	}
}

func TestAdminDeleteGroupAdminSucceeds(t *testing.T) {
	server, accounts := newTestServer(t)
	seedAdminFixture(accounts)
	accounts.Store.SeedPrincipal("chair-1")
	accounts.Store.SeedToken("tok-chair", ports.Caller{UserID: "chair-1"})
	accounts.Store.SeedMembership("chair-1", "G1", true, "active")

	recorder := postJSON(t, server.Handler(), "/api/admin/v1/users/delete", `{"userId":"u2","groupId":"G1"}`, map[string]string{
		"Authorization": "Bearer tok-chair",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}
}

func TestAdminDeleteMissingUserID(t *testing.T) {
	server, accounts := newTestServer(t)
	seedAdminFixture(accounts)

	recorder := postJSON(t, server.Handler(), "/api/admin/v1/users/delete", `{}`, map[string]string{
		"Authorization": "Bearer tok-super",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if msg := decodeErrorBody(t, recorder); msg != "userId is required" {
		t.Fatalf("unexpected error message %q", msg)
	}
	if calls := accounts.Store.DeleteCalls(); len(calls) != 0 {
		t.Fatalf("expected no deletions, got %v", calls)
	}
}

func TestAdminDeleteProviderFailureSurfacesMessage(t *testing.T) {
	server, accounts := newTestServer(t)
	seedAdminFixture(accounts)

	recorder := postJSON(t, server.Handler(), "/api/admin/v1/users/delete", `{"userId":"ghost"}`, map[string]string{
		"Authorization": "Bearer tok-super",
	})
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", recorder.Code)
	}
	if msg := decodeErrorBody(t, recorder); msg != "principal not found" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestAdminDeleteMalformedBody(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := postJSON(t, server.Handler(), "/api/admin/v1/users/delete", `{"userId":`, map[string]string{
		"Authorization": "Bearer whatever",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if msg := decodeErrorBody(t, recorder); msg != "Invalid request body" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestAdminDeletePreflightAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/admin/v1/users/delete", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected preflight 200, got %d", recorder.Code)
	}
	if allow := recorder.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(allow, http.MethodPost) {
		t.Fatalf("expected POST allowed, got %q", allow)
	}
}

func TestGuardEvaluateEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	body := `{
		"auth_state": {"loading": false, "authenticated": false},
		"requirement": {},
		"requested_path": "/groups/G1/ledger"
	}`
	recorder := postJSON(t, server.Handler(), "/api/access/v1/evaluate", body, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	var resp struct {
		Outcome    string `json:"outcome"`
		RedirectTo string `json:"redirect_to"`
		From       string `json:"from"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Outcome != "redirect_login" {
		t.Fatalf("expected redirect_login, got %s", resp.Outcome)
	}
	if resp.From != "/groups/G1/ledger" {
		t.Fatalf("expected requested path preserved, got %s", resp.From)
	}
}

func TestDirectoryRegisterAndAuthorityEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := postJSON(t, server.Handler(), "/api/directory/v1/users", `{"email":"amina@example.com","display_name":"Amina"}`, map[string]string{
		"Idempotency-Key": "idem-http-1",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", recorder.Code, recorder.Body.String())
	}
	var principal struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &principal); err != nil || principal.UserID == "" {
		t.Fatalf("expected user id in response, got %s", recorder.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/directory/v1/users/"+principal.UserID+"/authority", nil)
	authRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(authRec, req)
	if authRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", authRec.Code, authRec.Body.String())
	}

	var snapshot struct {
		UserID       string `json:"user_id"`
		IsSuperAdmin bool   `json:"is_super_admin"`
		IsGroupAdmin bool   `json:"is_group_admin"`
	}
	if err := json.Unmarshal(authRec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("invalid authority body: %v", err)
	}
	if snapshot.UserID != principal.UserID || snapshot.IsSuperAdmin || snapshot.IsGroupAdmin {
		t.Fatalf("unexpected authority snapshot %+v", snapshot)
	}
}

func TestDirectoryRegisterRequiresIdempotencyKey(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := postJSON(t, server.Handler(), "/api/directory/v1/users", `{"email":"amina@example.com"}`, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

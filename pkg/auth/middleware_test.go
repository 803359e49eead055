package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rabbithole-ai/warren/pkg/api"
)

type fixedAuthenticator struct {
	result AuthResult
}

func (f *fixedAuthenticator) Authenticate(_ context.Context, _ *http.Request) AuthResult {
	return f.result
}

func serveThrough(t *testing.T, chain *AuthChain, path string) (*httptest.ResponseRecorder, *Identity) {
	t.Helper()

	var seen *Identity
	handler := Middleware(chain, DefaultBypassEndpoints)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec, seen
}

func TestMiddlewareInjectsIdentity(t *testing.T) {
	chain := &AuthChain{Authenticators: []Authenticator{
		&fixedAuthenticator{result: AuthResult{Decision: Yes, Identity: &Identity{Subject: "alice"}}},
	}}

	rec, seen := serveThrough(t, chain, "/providers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.Subject != "alice" {
		t.Errorf("handler identity = %+v, want alice", seen)
	}
}

func TestMiddlewareRejectsInvalidCredentials(t *testing.T) {
	chain := &AuthChain{Authenticators: []Authenticator{
		&fixedAuthenticator{result: AuthResult{Decision: No, Err: ErrUnauthenticated}},
	}}

	rec, _ := serveThrough(t, chain, "/providers")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if resp.Error == nil || resp.Error.Message != "authentication required" {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestMiddlewareBypassesHealthAndMetrics(t *testing.T) {
	chain := &AuthChain{DefaultDecision: No}

	for _, path := range DefaultBypassEndpoints {
		rec, _ := serveThrough(t, chain, path)
		if rec.Code != http.StatusOK {
			t.Errorf("path %s: status = %d, want bypass", path, rec.Code)
		}
	}

	rec, _ := serveThrough(t, chain, "/providers")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("non-bypass path: status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareRejectsEmptySubject(t *testing.T) {
	chain := &AuthChain{Authenticators: []Authenticator{
		&fixedAuthenticator{result: AuthResult{Decision: Yes, Identity: &Identity{}}},
	}}

	rec, _ := serveThrough(t, chain, "/providers")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for empty subject", rec.Code)
	}
}

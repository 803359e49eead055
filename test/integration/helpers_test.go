// Package integration provides integration tests for the warren API.
//
// Tests run against a real warren HTTP server backed by a mock
// completion backend, both started in-process using net/http/httptest.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/rabbithole-ai/warren/pkg/dispatch"
	"github.com/rabbithole-ai/warren/pkg/gateway"
	"github.com/rabbithole-ai/warren/pkg/keyring"
	"github.com/rabbithole-ai/warren/pkg/storage/memory"
	transporthttp "github.com/rabbithole-ai/warren/pkg/transport/http"
)

// testEnv holds the shared servers for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds the warren server and mock backend for testing.
type TestEnvironment struct {
	WarrenServer *httptest.Server
	MockBackend  *httptest.Server

	// lastAuth records the Authorization header the backend saw on the
	// most recent completion call.
	mu       sync.Mutex
	lastAuth string
}

// TestMain starts the mock backend and warren server before running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

// setupTestEnvironment creates a mock completion backend and a warren
// server wired to it.
func setupTestEnvironment() *TestEnvironment {
	env := &TestEnvironment{}
	env.MockBackend = startMockBackend(env)

	store := memory.New()
	ring := keyring.New()
	client := dispatch.NewClient(dispatch.Config{
		BaseURL: env.MockBackend.URL,
	}, ring)

	gw, err := gateway.New(store, client, ring)
	if err != nil {
		panic(fmt.Sprintf("creating gateway: %v", err))
	}

	srv := transporthttp.NewServer(gw, nil)
	env.WarrenServer = httptest.NewServer(srv.Handler())
	return env
}

// startMockBackend returns an OpenAI-compatible stub that echoes the
// last user message and serves a fixed dialect-prefixed model catalog.
func startMockBackend(env *TestEnvironment) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		env.lastAuth = r.Header.Get("Authorization")
		env.mu.Unlock()

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":{"message":"bad json"}}`, http.StatusBadRequest)
			return
		}
		last := req.Messages[len(req.Messages)-1].Content
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-test",
			"model": req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": "echo: " + last},
				"finish_reason": "stop",
			}},
		})
	})

	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]string{
				{"id": "openai/gpt-4"},
				{"id": "openai/gpt-3.5-turbo"},
				{"id": "anthropic/claude-3-opus"},
			},
		})
	})

	mux.HandleFunc("POST /utils/token_counter", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		total := 0
		for _, m := range req.Messages {
			total += len(strings.Fields(m.Content))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"total_tokens": total})
	})

	return httptest.NewServer(mux)
}

// Teardown stops both servers.
func (e *TestEnvironment) Teardown() {
	e.WarrenServer.Close()
	e.MockBackend.Close()
}

// LastAuth returns the Authorization header from the most recent
// backend completion call.
func (e *TestEnvironment) LastAuth() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastAuth
}

// postJSON issues a POST with a JSON body against the warren server.
func postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(testEnv.WarrenServer.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// do issues a bodyless request against the warren server.
func do(t *testing.T, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, testEnv.WarrenServer.URL+path, nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// decode reads and unmarshals the response body into v.
func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
}

// createProvider registers a provider and returns its id.
func createProvider(t *testing.T, name, syntax, key string) int64 {
	t.Helper()
	resp := postJSON(t, "/providers", map[string]string{
		"provider_name":   name,
		"provider_syntax": syntax,
		"api_key":         key,
	})
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("create provider: status %d, body %s", resp.StatusCode, raw)
	}
	var created struct {
		Provider struct {
			ID int64 `json:"id"`
		} `json:"provider"`
	}
	decode(t, resp, &created)
	return created.Provider.ID
}

// deleteProvider removes a provider, ignoring the response body.
func deleteProvider(t *testing.T, id int64) {
	t.Helper()
	resp := do(t, http.MethodDelete, fmt.Sprintf("/providers/%d", id))
	resp.Body.Close()
}

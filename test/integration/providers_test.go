package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
)

func TestProviderLifecycle(t *testing.T) {
	id := createProvider(t, "openai", "openai", "sk-lifecycle")
	defer deleteProvider(t, id)

	// Fetch it back, credential must not appear.
	resp := do(t, http.MethodGet, fmt.Sprintf("/providers/%d", id))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get provider: status %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if bytes.Contains(raw, []byte("sk-lifecycle")) {
		t.Errorf("credential leaked in response: %s", raw)
	}
	var got struct {
		ProviderName string `json:"provider_name"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ProviderName != "openai" {
		t.Errorf("provider_name = %q, want %q", got.ProviderName, "openai")
	}

	// Patch the endpoint.
	req, _ := http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/providers/%d", testEnv.WarrenServer.URL, id),
		bytes.NewReader([]byte(`{"endpoint": "/beta"}`)))
	req.Header.Set("Content-Type", "application/json")
	patchResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH: %v", err)
	}
	var patched struct {
		Endpoint string `json:"endpoint"`
	}
	decode(t, patchResp, &patched)
	if patched.Endpoint != "/beta" {
		t.Errorf("endpoint = %q, want %q", patched.Endpoint, "/beta")
	}

	// Delete, then a second lookup fails.
	deleteProvider(t, id)
	gone := do(t, http.MethodGet, fmt.Sprintf("/providers/%d", id))
	gone.Body.Close()
	if gone.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status %d, want 404", gone.StatusCode)
	}
}

func TestCreateProviderRejectsDuplicateName(t *testing.T) {
	id := createProvider(t, "groq", "groq", "sk-groq")
	defer deleteProvider(t, id)

	resp := postJSON(t, "/providers", map[string]string{
		"provider_name": "groq",
		"api_key":       "sk-other",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate create: status %d, want 400", resp.StatusCode)
	}
}

func TestCreateProviderRequiresKey(t *testing.T) {
	resp := postJSON(t, "/providers", map[string]string{
		"provider_name": "keyless",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("keyless create: status %d, want 400", resp.StatusCode)
	}
	var errResp struct {
		Error struct {
			Param string `json:"param"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errResp.Error.Param != "api_key" {
		t.Errorf("error param = %q, want %q", errResp.Error.Param, "api_key")
	}
}

func TestListedReflectsCatalog(t *testing.T) {
	listed := createProvider(t, "anthropic", "", "sk-a")
	defer deleteProvider(t, listed)
	unlisted := createProvider(t, "inhouse", "openai", "sk-b")
	defer deleteProvider(t, unlisted)

	var a struct {
		Listed bool `json:"listed"`
	}
	resp := do(t, http.MethodGet, fmt.Sprintf("/providers/%d/listed", listed))
	decode(t, resp, &a)
	if !a.Listed {
		t.Error("anthropic should be listed")
	}

	var b struct {
		Listed bool `json:"listed"`
	}
	resp = do(t, http.MethodGet, fmt.Sprintf("/providers/%d/listed", unlisted))
	decode(t, resp, &b)
	if b.Listed {
		t.Error("inhouse should not be listed")
	}
}

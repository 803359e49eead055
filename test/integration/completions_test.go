package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestCompletionRoundTrip(t *testing.T) {
	id := createProvider(t, "openai", "openai", "sk-roundtrip")
	defer deleteProvider(t, id)

	resp := postJSON(t, "/chat/completions", map[string]any{
		"model":       "gpt-4",
		"provider_id": id,
		"messages": []map[string]string{
			{"role": "user", "content": "hello"},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("completion: status %d", resp.StatusCode)
	}

	var got struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	decode(t, resp, &got)

	// The backend sees the dialect-prefixed model name.
	if got.Model != "openai/gpt-4" {
		t.Errorf("model = %q, want %q", got.Model, "openai/gpt-4")
	}
	if len(got.Choices) != 1 || got.Choices[0].Message.Content != "echo: hello" {
		t.Errorf("unexpected choices: %+v", got.Choices)
	}

	// The stored credential rode along as the bearer token.
	if auth := testEnv.LastAuth(); auth != "Bearer sk-roundtrip" {
		t.Errorf("backend auth = %q, want %q", auth, "Bearer sk-roundtrip")
	}
}

func TestCompletionUnknownProvider(t *testing.T) {
	resp := postJSON(t, "/chat/completions", map[string]any{
		"model":       "gpt-4",
		"provider_id": 424242,
		"messages": []map[string]string{
			{"role": "user", "content": "hello"},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown provider: status %d, want 404", resp.StatusCode)
	}
}

func TestCompletionValidation(t *testing.T) {
	id := createProvider(t, "mistral-val", "mistral", "sk-val")
	defer deleteProvider(t, id)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing model", map[string]any{
			"provider_id": id,
			"messages":    []map[string]string{{"role": "user", "content": "x"}},
		}},
		{"empty messages", map[string]any{
			"model":       "m",
			"provider_id": id,
			"messages":    []map[string]string{},
		}},
		{"missing provider_id", map[string]any{
			"model":    "m",
			"messages": []map[string]string{{"role": "user", "content": "x"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, "/chat/completions", tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestTokenCount(t *testing.T) {
	resp := postJSON(t, "/tokens", map[string]any{
		"model": "gpt-4",
		"messages": []map[string]string{
			{"role": "user", "content": "one two three"},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token count: status %d", resp.StatusCode)
	}
	var got struct {
		TotalTokens int `json:"total_tokens"`
	}
	decode(t, resp, &got)
	if got.TotalTokens != 3 {
		t.Errorf("total_tokens = %d, want 3", got.TotalTokens)
	}
}

func TestModelsForProvider(t *testing.T) {
	id := createProvider(t, "openai", "openai", "sk-models")
	defer deleteProvider(t, id)

	resp := do(t, http.MethodGet, fmt.Sprintf("/models/%d", id))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("models: status %d", resp.StatusCode)
	}
	var got struct {
		Models []string `json:"provider_models"`
	}
	decode(t, resp, &got)

	want := []string{"gpt-3.5-turbo", "gpt-4"}
	raw, _ := json.Marshal(got.Models)
	wantRaw, _ := json.Marshal(want)
	if string(raw) != string(wantRaw) {
		t.Errorf("models = %s, want %s", raw, wantRaw)
	}
}

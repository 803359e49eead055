package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rabbithole-ai/warren/pkg/api"
	"github.com/rabbithole-ai/warren/pkg/debug"
	"github.com/rabbithole-ai/warren/pkg/keyring"
)

// DefaultTimeout bounds a single dispatch. The source system had no
// timeout at all; this is an added safety margin, not a reproduced
// behavior.
const DefaultTimeout = 60 * time.Second

// Config holds dispatcher settings.
type Config struct {
	// BaseURL is the default completion backend, used when the provider
	// carries no api_base override.
	BaseURL string

	// APIKey authenticates against the backend itself when a provider
	// credential is not available in the keyring.
	APIKey string

	// Timeout bounds each dispatch (default: DefaultTimeout).
	Timeout time.Duration
}

// Client performs HTTP requests against an OpenAI-compatible completion
// backend. It implements Backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	ring       *keyring.Keyring
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

// NewClient creates a dispatcher for the given backend and keyring.
func NewClient(cfg Config, ring *keyring.Keyring) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		ring:       ring,
	}
}

// Complete dispatches the concrete request and returns the backend's
// payload unchanged. Failures come back as structured APIErrors.
func (c *Client) Complete(ctx context.Context, req *Request, credentialKey string) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, api.NewServerError("failed to marshal request: " + err.Error())
	}

	base := c.baseURL
	if req.APIBase != "" {
		base = strings.TrimRight(req.APIBase, "/")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError("failed to create HTTP request: " + err.Error())
	}

	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq, credentialKey)

	debug.Log("dispatch", "sending completion request",
		"url", httpReq.URL.String(),
		"model", req.Model,
		"body", debug.Truncate(string(body), 512))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	debug.Log("dispatch", "completion response received", "status", httpResp.StatusCode)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	payload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, api.NewDispatchError("failed to read backend response")
	}
	if !json.Valid(payload) {
		return nil, api.NewDispatchError("backend returned a malformed response")
	}

	debug.Trace("dispatch", "completion payload", "payload", string(payload))

	return json.RawMessage(payload), nil
}

// CountTokens asks the backend tokenizer for the prompt token count.
func (c *Client) CountTokens(ctx context.Context, model string, messages []api.Message) (int, error) {
	body, err := json.Marshal(api.TokenCountRequest{Model: model, Messages: messages})
	if err != nil {
		return 0, api.NewServerError("failed to marshal request: " + err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/utils/token_counter", bytes.NewReader(body))
	if err != nil {
		return 0, api.NewServerError("failed to create HTTP request: " + err.Error())
	}

	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq, "")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return 0, MapHTTPError(httpResp)
	}

	var result struct {
		TotalTokens int `json:"total_tokens"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&result); err != nil {
		return 0, api.NewDispatchError("failed to parse token count response")
	}

	return result.TotalTokens, nil
}

// ValidModels queries the backend model catalog and returns identifiers
// belonging to the given dialect, prefix included. An empty dialect
// returns everything.
func (c *Client) ValidModels(ctx context.Context, dialect string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return nil, api.NewServerError("failed to create HTTP request: " + err.Error())
	}
	c.authorize(httpReq, "")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	var modelsResp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&modelsResp); err != nil {
		return nil, api.NewDispatchError("failed to parse models response")
	}

	var models []string
	for _, m := range modelsResp.Data {
		if dialect == "" || strings.HasPrefix(m.ID, dialect+"/") {
			models = append(models, m.ID)
		}
	}
	sort.Strings(models)

	return models, nil
}

// authorize sets the Authorization header from the keyring entry when
// present, falling back to the backend service key.
func (c *Client) authorize(httpReq *http.Request, credentialKey string) {
	if credentialKey != "" && c.ring != nil {
		if cred, ok := c.ring.Lookup(credentialKey); ok {
			httpReq.Header.Set("Authorization", "Bearer "+cred)
			return
		}
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

package dispatch

import (
	"context"
	"encoding/json"

	"github.com/rabbithole-ai/warren/pkg/api"
)

// Request is the concrete, dispatch-ready completion request. Only
// fields the caller explicitly set are serialized; omitted optionals are
// absent from the wire form, never null, so backend defaults stay in
// effect.
type Request struct {
	// Model carries the rewritten identifier: dialect prefix, logical
	// model name, optional endpoint suffix. The backend routes on the
	// first "/"-separated segment.
	Model string `json:"model"`

	// Messages is the ordered conversation, preserved as submitted.
	Messages []api.Message `json:"messages"`

	// MaxTokens is carried only when the caller set it.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// APIBase overrides the backend base URL when non-empty. Absent
	// otherwise so the dispatcher falls back to its configured default.
	APIBase string `json:"api_base,omitempty"`
}

// Backend is the external completion capability: given a concrete
// request, return the backend's completion payload or fail with a
// structured error. The token counter and model catalog are collaborator
// calls on the same backend.
type Backend interface {
	// Complete dispatches the request. credentialKey names the keyring
	// entry holding the provider credential. The returned payload is the
	// backend's response, unchanged.
	Complete(ctx context.Context, req *Request, credentialKey string) (json.RawMessage, error)

	// CountTokens returns the prompt token count from the backend
	// tokenizer.
	CountTokens(ctx context.Context, model string, messages []api.Message) (int, error)

	// ValidModels returns the model identifiers available for a dialect,
	// dialect prefix included.
	ValidModels(ctx context.Context, dialect string) ([]string, error)
}

package api

// DefaultSyntax is the dialect applied to providers created without an
// explicit provider_syntax.
const DefaultSyntax = "openai"

// DefaultMaxTokens is the documented completion token bound when the
// caller omits max_tokens. The gateway does not inject it on the wire;
// fields the caller never set stay unset so backend defaults apply.
const DefaultMaxTokens = 256

// Provider identifies one backend LLM target: its human label, request
// dialect, optional routing overrides, and the credential used to
// authenticate against it.
type Provider struct {
	// ID is assigned on creation and immutable afterwards.
	ID int64 `json:"id"`

	// ProviderName is the human label. It also derives the credential
	// key used by the dispatch layer. Names are unique (case-sensitive).
	ProviderName string `json:"provider_name"`

	// ProviderSyntax is the dialect tag used as a prefix on outgoing
	// model identifiers. Defaults to "openai" when unset at creation.
	ProviderSyntax string `json:"provider_syntax,omitempty"`

	// Endpoint is an optional suffix appended to the rewritten model
	// identifier, for providers that encode routing in the model string.
	Endpoint string `json:"endpoint,omitempty"`

	// APIBase overrides the base URL used for dispatch when non-empty.
	APIBase string `json:"api_base,omitempty"`

	// APIKey is the secret credential. Required for dispatch; never
	// included in public views.
	APIKey string `json:"api_key,omitempty"`
}

// Dispatchable reports whether the provider carries everything the
// dispatch path needs: a non-empty dialect and a non-empty credential.
func (p *Provider) Dispatchable() bool {
	return p != nil && p.ProviderSyntax != "" && p.APIKey != ""
}

// Public returns the caller-facing view with the credential redacted.
func (p *Provider) Public() ProviderPublic {
	return ProviderPublic{
		ID:             p.ID,
		ProviderName:   p.ProviderName,
		ProviderSyntax: p.ProviderSyntax,
		Endpoint:       p.Endpoint,
		APIBase:        p.APIBase,
	}
}

// ProviderPublic is the provider view returned from list and detail
// responses. It never carries the credential.
type ProviderPublic struct {
	ID             int64  `json:"id"`
	ProviderName   string `json:"provider_name"`
	ProviderSyntax string `json:"provider_syntax,omitempty"`
	Endpoint       string `json:"endpoint,omitempty"`
	APIBase        string `json:"api_base,omitempty"`
}

// ProviderPatch is a merge-patch update: only fields the caller supplied
// overwrite existing values. Absent and explicitly-null fields are not
// distinguished; both leave the stored value untouched.
type ProviderPatch struct {
	ProviderName   *string `json:"provider_name,omitempty"`
	ProviderSyntax *string `json:"provider_syntax,omitempty"`
	Endpoint       *string `json:"endpoint,omitempty"`
	APIBase        *string `json:"api_base,omitempty"`
	APIKey         *string `json:"api_key,omitempty"`
}

// IsZero reports whether the patch carries no fields at all.
func (p *ProviderPatch) IsZero() bool {
	return p.ProviderName == nil && p.ProviderSyntax == nil &&
		p.Endpoint == nil && p.APIBase == nil && p.APIKey == nil
}

// Apply merges the patch into the given provider. The provider ID is
// never touched.
func (p *ProviderPatch) Apply(target *Provider) {
	if p.ProviderName != nil {
		target.ProviderName = *p.ProviderName
	}
	if p.ProviderSyntax != nil {
		target.ProviderSyntax = *p.ProviderSyntax
	}
	if p.Endpoint != nil {
		target.Endpoint = *p.Endpoint
	}
	if p.APIBase != nil {
		target.APIBase = *p.APIBase
	}
	if p.APIKey != nil {
		target.APIKey = *p.APIKey
	}
}

// Message is one role/content pair in a completion conversation.
// Role is an open string set; "user", "assistant", and "system" are the
// common values. Order within a request is significant and preserved
// end-to-end.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the uniform, provider-agnostic completion request.
// It is owned by a single request-handling flow, rewritten by the
// translator, and discarded after dispatch. Never persisted.
type CompletionRequest struct {
	// Model is the logical model name as the caller understands it.
	Model string `json:"model"`

	// Messages is the ordered conversation.
	Messages []Message `json:"messages"`

	// MaxTokens bounds the completion length when set. Nil means the
	// caller did not set it and the field is omitted downstream.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// ProviderID references the provider record to dispatch through.
	// Must resolve at dispatch time.
	ProviderID int64 `json:"provider_id"`
}

// TokenCountRequest asks the external tokenizer capability for a prompt
// token count.
type TokenCountRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// TokenCountResponse carries the tokenizer result.
type TokenCountResponse struct {
	Model       string `json:"model"`
	TotalTokens int    `json:"total_tokens"`
}

// ProviderModels groups the model identifiers available through one
// provider. Model names have the dialect prefix stripped and are sorted
// lexicographically.
type ProviderModels struct {
	Provider ProviderPublic `json:"provider"`
	Models   []string       `json:"provider_models"`
}

// CreateProviderResponse confirms a provider registration.
type CreateProviderResponse struct {
	Message  string         `json:"message"`
	Provider ProviderPublic `json:"provider"`
}

// DeleteProviderResponse confirms a provider removal.
type DeleteProviderResponse struct {
	Message string `json:"message"`
}

// ListedResponse reports whether a provider's name appears in the known
// provider catalog.
type ListedResponse struct {
	ID     int64  `json:"id"`
	Listed bool   `json:"listed"`
	Name   string `json:"provider_name"`
}

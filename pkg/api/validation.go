package api

import "fmt"

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxMessages    int
	MaxContentSize int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxMessages:    1000,
		MaxContentSize: 1 << 20, // 1 MB per message
	}
}

// ValidateCompletionRequest checks a CompletionRequest for validity.
// It returns an *APIError describing the first validation failure, or
// nil if the request is valid.
func ValidateCompletionRequest(req *CompletionRequest, cfg ValidationConfig) *APIError {
	if req.Model == "" {
		return NewInvalidRequestError("model", "model is required")
	}

	if req.ProviderID <= 0 {
		return NewInvalidRequestError("provider_id", "provider_id is required")
	}

	if len(req.Messages) == 0 {
		return NewInvalidRequestError("messages", "messages must contain at least one entry")
	}

	if cfg.MaxMessages > 0 && len(req.Messages) > cfg.MaxMessages {
		return NewInvalidRequestError("messages",
			fmt.Sprintf("messages exceeds maximum of %d entries", cfg.MaxMessages))
	}

	for i, m := range req.Messages {
		if m.Role == "" {
			return NewInvalidRequestError("messages",
				fmt.Sprintf("messages[%d].role is required", i))
		}
		if m.Content == "" {
			return NewInvalidRequestError("messages",
				fmt.Sprintf("messages[%d].content is required", i))
		}
		if cfg.MaxContentSize > 0 && len(m.Content) > cfg.MaxContentSize {
			return NewInvalidRequestError("messages",
				fmt.Sprintf("messages[%d].content exceeds maximum of %d bytes", i, cfg.MaxContentSize))
		}
	}

	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		return NewInvalidRequestError("max_tokens", "max_tokens must be positive")
	}

	return nil
}

// ValidateTokenCountRequest checks a TokenCountRequest for validity.
func ValidateTokenCountRequest(req *TokenCountRequest, cfg ValidationConfig) *APIError {
	if req.Model == "" {
		return NewInvalidRequestError("model", "model is required")
	}
	if len(req.Messages) == 0 {
		return NewInvalidRequestError("messages", "messages must contain at least one entry")
	}
	if cfg.MaxMessages > 0 && len(req.Messages) > cfg.MaxMessages {
		return NewInvalidRequestError("messages",
			fmt.Sprintf("messages exceeds maximum of %d entries", cfg.MaxMessages))
	}
	return nil
}

// ValidateProvider checks a provider submitted for creation. The id is
// ignored; it is assigned by the store.
func ValidateProvider(p *Provider) *APIError {
	if p.ProviderName == "" {
		return NewInvalidRequestError("provider_name", "provider_name is required")
	}
	if p.APIKey == "" {
		return NewInvalidRequestError("api_key", "api_key is required")
	}
	return nil
}

// ValidatePatch checks a merge-patch update. Supplied fields must not
// erase values the dispatch path depends on.
func ValidatePatch(patch *ProviderPatch) *APIError {
	if patch.IsZero() {
		return NewInvalidRequestError("", "patch must supply at least one field")
	}
	if patch.ProviderName != nil && *patch.ProviderName == "" {
		return NewInvalidRequestError("provider_name", "provider_name must not be empty")
	}
	if patch.APIKey != nil && *patch.APIKey == "" {
		return NewInvalidRequestError("api_key", "api_key must not be empty")
	}
	return nil
}

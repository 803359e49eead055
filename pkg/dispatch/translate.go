package dispatch

import "github.com/rabbithole-ai/warren/pkg/api"

// Translate rewrites a uniform completion request into the concrete
// wire shape for the given provider. Pure function, no I/O.
//
// The model becomes provider_syntax + "/" + model; a non-empty endpoint
// is appended verbatim with no extra separator (the backend splits on
// literal "/", so the endpoint supplies its own delimiters). A non-empty
// api_base is carried as the base-URL override; an empty one stays
// absent. Fields the caller never set stay unset.
func Translate(req *api.CompletionRequest, p *api.Provider) (*Request, error) {
	if p == nil {
		return nil, api.NewProviderUnusableError("provider could not be resolved")
	}
	if p.ProviderSyntax == "" {
		return nil, api.NewProviderUnusableError("provider has no provider_syntax")
	}
	if p.APIKey == "" {
		return nil, api.NewProviderUnusableError("provider has no api_key")
	}

	out := &Request{
		Model:     p.ProviderSyntax + "/" + req.Model,
		Messages:  req.Messages,
		MaxTokens: req.MaxTokens,
	}

	if p.Endpoint != "" {
		out.Model += p.Endpoint
	}
	if p.APIBase != "" {
		out.APIBase = p.APIBase
	}

	return out, nil
}

// Package catalog holds the fixed catalog of known provider identifiers
// and the dialect policy applied when a provider is registered.
//
// The catalog mirrors the provider identifiers understood by
// LiteLLM-style routing backends, where the identifier doubles as the
// request dialect. Lookups are case-sensitive.
package catalog

import "github.com/rabbithole-ai/warren/pkg/api"

// knownProviders is the fixed external catalog of provider identifiers.
var knownProviders = []string{
	"openai",
	"azure",
	"anthropic",
	"bedrock",
	"cohere",
	"deepseek",
	"fireworks_ai",
	"gemini",
	"groq",
	"huggingface",
	"mistral",
	"ollama",
	"openrouter",
	"perplexity",
	"replicate",
	"sagemaker",
	"together_ai",
	"vertex_ai",
	"xai",
}

var knownSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(knownProviders))
	for _, name := range knownProviders {
		m[name] = struct{}{}
	}
	return m
}()

// Listed reports whether name appears in the known provider catalog.
// The comparison is case-sensitive.
func Listed(name string) bool {
	_, ok := knownSet[name]
	return ok
}

// Names returns a copy of the catalog entries.
func Names() []string {
	out := make([]string, len(knownProviders))
	copy(out, knownProviders)
	return out
}

// SyntaxPolicy decides the provider dialect at registration time.
// It is invoked from the create path and may be replaced by callers that
// want different behavior.
type SyntaxPolicy func(p *api.Provider)

// DefaultSyntaxPolicy sets provider_syntax to the provider name when the
// name is listed in the catalog and the caller did not supply a dialect
// explicitly. An explicitly supplied dialect always wins. Providers that
// still have no dialect afterwards fall back to api.DefaultSyntax.
//
// This keeps the convenience of listed names implying their own dialect
// without silently overriding a caller's choice.
func DefaultSyntaxPolicy(p *api.Provider) {
	if p.ProviderSyntax == "" && Listed(p.ProviderName) {
		p.ProviderSyntax = p.ProviderName
	}
	if p.ProviderSyntax == "" {
		p.ProviderSyntax = api.DefaultSyntax
	}
}

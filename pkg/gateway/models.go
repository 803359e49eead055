package gateway

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rabbithole-ai/warren/pkg/api"
	"github.com/rabbithole-ai/warren/pkg/storage"
)

// ModelsByProvider returns the model identifiers the backend serves for
// one provider's dialect. The dialect prefix is stripped and the result
// sorted lexicographically.
func (g *Gateway) ModelsByProvider(ctx context.Context, id int64) (*api.ProviderModels, error) {
	p, err := g.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewProviderNotFoundError(id)
		}
		return nil, g.storeError("get provider", err)
	}

	models, err := g.backend.ValidModels(ctx, p.ProviderSyntax)
	if err != nil {
		return nil, err
	}

	return &api.ProviderModels{
		Provider: p.Public(),
		Models:   stripDialect(models),
	}, nil
}

// AllModels returns the available models grouped per registered
// provider, ordered by provider id.
func (g *Gateway) AllModels(ctx context.Context) ([]api.ProviderModels, error) {
	providers, err := g.store.List(ctx)
	if err != nil {
		return nil, g.storeError("list providers", err)
	}

	out := make([]api.ProviderModels, 0, len(providers))
	for i := range providers {
		p := &providers[i]

		models, err := g.backend.ValidModels(ctx, p.ProviderSyntax)
		if err != nil {
			return nil, err
		}

		out = append(out, api.ProviderModels{
			Provider: p.Public(),
			Models:   stripDialect(models),
		})
	}
	return out, nil
}

// stripDialect removes the leading "/"-separated dialect segment from
// each identifier and sorts the result. Identifiers without a separator
// pass through unchanged.
func stripDialect(models []string) []string {
	out := make([]string, 0, len(models))
	for _, m := range models {
		if _, rest, ok := strings.Cut(m, "/"); ok {
			out = append(out, rest)
		} else {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rabbithole-ai/warren/pkg/api"
	"github.com/rabbithole-ai/warren/pkg/catalog"
	"github.com/rabbithole-ai/warren/pkg/dispatch"
	"github.com/rabbithole-ai/warren/pkg/keyring"
	"github.com/rabbithole-ai/warren/pkg/observability"
	"github.com/rabbithole-ai/warren/pkg/storage"
	"github.com/rabbithole-ai/warren/pkg/transport"
)

// Gateway orchestrates provider management and completion dispatch.
type Gateway struct {
	store      storage.ProviderStore
	backend    dispatch.Backend
	ring       *keyring.Keyring
	policy     catalog.SyntaxPolicy
	logger     *slog.Logger
	validation api.ValidationConfig
}

// Ensure Gateway implements transport.Service at compile time.
var _ transport.Service = (*Gateway)(nil)

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithSyntaxPolicy replaces the dialect policy applied at registration.
// Defaults to catalog.DefaultSyntaxPolicy.
func WithSyntaxPolicy(policy catalog.SyntaxPolicy) Option {
	return func(g *Gateway) {
		g.policy = policy
	}
}

// WithValidationConfig replaces the request validation limits.
func WithValidationConfig(cfg api.ValidationConfig) Option {
	return func(g *Gateway) {
		g.validation = cfg
	}
}

// New creates a Gateway. Store, backend, and keyring must not be nil.
func New(store storage.ProviderStore, backend dispatch.Backend, ring *keyring.Keyring, opts ...Option) (*Gateway, error) {
	if store == nil {
		return nil, fmt.Errorf("gateway: store must not be nil")
	}
	if backend == nil {
		return nil, fmt.Errorf("gateway: backend must not be nil")
	}
	if ring == nil {
		return nil, fmt.Errorf("gateway: keyring must not be nil")
	}

	g := &Gateway{
		store:      store,
		backend:    backend,
		ring:       ring,
		policy:     catalog.DefaultSyntaxPolicy,
		logger:     slog.Default(),
		validation: api.DefaultValidationConfig(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// CreateProvider validates and registers a provider, applies the dialect
// policy, and resyncs the keyring so the credential is available to the
// dispatch path immediately.
func (g *Gateway) CreateProvider(ctx context.Context, p *api.Provider) (*api.CreateProviderResponse, error) {
	if apiErr := api.ValidateProvider(p); apiErr != nil {
		return nil, apiErr
	}

	g.policy(p)

	id, err := g.store.Create(ctx, p)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateName) {
			return nil, api.NewInvalidRequestError("provider_name", fmt.Sprintf("provider %q already exists", p.ProviderName))
		}
		return nil, g.storeError("create provider", err)
	}
	p.ID = id

	if err := g.SyncCredentials(ctx); err != nil {
		g.logger.Warn("credential sync after create failed", "error", err)
	}

	g.logger.Info("provider registered",
		"provider_id", p.ID,
		"provider_name", p.ProviderName,
		"provider_syntax", p.ProviderSyntax)

	return &api.CreateProviderResponse{
		Message:  fmt.Sprintf("%s has been added as a provider!", p.ProviderName),
		Provider: p.Public(),
	}, nil
}

// GetProvider returns the public view of one provider.
func (g *Gateway) GetProvider(ctx context.Context, id int64) (*api.ProviderPublic, error) {
	p, err := g.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewProviderNotFoundError(id)
		}
		return nil, g.storeError("get provider", err)
	}
	pub := p.Public()
	return &pub, nil
}

// ListProviders returns the public views of all providers ordered by id.
func (g *Gateway) ListProviders(ctx context.Context) ([]api.ProviderPublic, error) {
	providers, err := g.store.List(ctx)
	if err != nil {
		return nil, g.storeError("list providers", err)
	}

	out := make([]api.ProviderPublic, 0, len(providers))
	for i := range providers {
		out = append(out, providers[i].Public())
	}
	return out, nil
}

// UpdateProvider merge-patches a provider and resyncs the keyring. The
// resync runs unconditionally; it is idempotent, so patches that touch
// neither name nor credential are harmless.
func (g *Gateway) UpdateProvider(ctx context.Context, id int64, patch api.ProviderPatch) (*api.ProviderPublic, error) {
	if apiErr := api.ValidatePatch(&patch); apiErr != nil {
		return nil, apiErr
	}

	p, err := g.store.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, api.NewProviderNotFoundError(id)
		case errors.Is(err, storage.ErrDuplicateName):
			name := ""
			if patch.ProviderName != nil {
				name = *patch.ProviderName
			}
			return nil, api.NewInvalidRequestError("provider_name", fmt.Sprintf("provider %q already exists", name))
		default:
			return nil, g.storeError("update provider", err)
		}
	}

	if err := g.SyncCredentials(ctx); err != nil {
		g.logger.Warn("credential sync after update failed", "error", err)
	}

	g.logger.Info("provider updated", "provider_id", id)

	pub := p.Public()
	return &pub, nil
}

// DeleteProvider removes a provider and resyncs the keyring so the
// credential disappears with the record. Completions referencing the id
// afterwards fail with not-found.
func (g *Gateway) DeleteProvider(ctx context.Context, id int64) (*api.DeleteProviderResponse, error) {
	if err := g.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewProviderNotFoundError(id)
		}
		return nil, g.storeError("delete provider", err)
	}

	if err := g.SyncCredentials(ctx); err != nil {
		g.logger.Warn("credential sync after delete failed", "error", err)
	}

	g.logger.Info("provider deleted", "provider_id", id)

	return &api.DeleteProviderResponse{
		Message: fmt.Sprintf("provider with id %d has been deleted", id),
	}, nil
}

// Listed reports whether the provider's name appears in the known
// provider catalog.
func (g *Gateway) Listed(ctx context.Context, id int64) (*api.ListedResponse, error) {
	p, err := g.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewProviderNotFoundError(id)
		}
		return nil, g.storeError("get provider", err)
	}

	return &api.ListedResponse{
		ID:     p.ID,
		Listed: catalog.Listed(p.ProviderName),
		Name:   p.ProviderName,
	}, nil
}

// SyncCredentials rebuilds the keyring from the full provider table.
// Called at startup and after every provider mutation.
func (g *Gateway) SyncCredentials(ctx context.Context) error {
	providers, err := g.store.List(ctx)
	if err != nil {
		return fmt.Errorf("gateway: listing providers for credential sync: %w", err)
	}

	g.ring.Sync(providers)
	observability.CredentialSyncsTotal.Inc()
	observability.ProviderCount.Set(float64(len(providers)))

	g.logger.Debug("credentials synced", "providers", len(providers), "credentials", g.ring.Len())
	return nil
}

// HealthCheck reports whether the backing store is reachable.
func (g *Gateway) HealthCheck(ctx context.Context) error {
	return g.store.HealthCheck(ctx)
}

// storeError logs the underlying store failure and returns an opaque
// server error. Store internals never reach the caller.
func (g *Gateway) storeError(op string, err error) *api.APIError {
	g.logger.Error(op+" failed", "error", err)
	return api.NewServerError(op + " failed")
}

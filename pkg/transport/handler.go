package transport

import (
	"context"
	"encoding/json"

	"github.com/rabbithole-ai/warren/pkg/api"
)

// ProviderService handles provider lifecycle operations.
type ProviderService interface {
	CreateProvider(ctx context.Context, p *api.Provider) (*api.CreateProviderResponse, error)
	GetProvider(ctx context.Context, id int64) (*api.ProviderPublic, error)
	ListProviders(ctx context.Context) ([]api.ProviderPublic, error)
	UpdateProvider(ctx context.Context, id int64, patch api.ProviderPatch) (*api.ProviderPublic, error)
	DeleteProvider(ctx context.Context, id int64) (*api.DeleteProviderResponse, error)
	Listed(ctx context.Context, id int64) (*api.ListedResponse, error)
}

// CompletionService handles completion dispatch and the backend
// collaborator calls.
type CompletionService interface {
	Complete(ctx context.Context, req *api.CompletionRequest) (json.RawMessage, error)
	CountTokens(ctx context.Context, req *api.TokenCountRequest) (*api.TokenCountResponse, error)
	ModelsByProvider(ctx context.Context, id int64) (*api.ProviderModels, error)
	AllModels(ctx context.Context) ([]api.ProviderModels, error)
}

// Service is the full gateway contract served over HTTP.
type Service interface {
	ProviderService
	CompletionService

	// HealthCheck reports whether the service's backing store is
	// reachable. Served on /healthz.
	HealthCheck(ctx context.Context) error
}

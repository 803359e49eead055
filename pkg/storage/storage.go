package storage

import (
	"context"

	"github.com/rabbithole-ai/warren/pkg/api"
)

// ProviderStore is the keyed table of provider records. Implementations
// assign ids on create and keep them immutable afterwards.
type ProviderStore interface {
	// Create inserts a new provider record and returns its assigned id.
	// Returns ErrDuplicateName when the provider name is already taken.
	Create(ctx context.Context, p *api.Provider) (int64, error)

	// Get returns the full record, credential included. Returns
	// ErrNotFound for unknown ids.
	Get(ctx context.Context, id int64) (*api.Provider, error)

	// List returns all records ordered by id. An empty table yields an
	// empty slice, not an error.
	List(ctx context.Context) ([]api.Provider, error)

	// Update merge-patches the record: only fields supplied in the patch
	// overwrite stored values. Returns the updated record or ErrNotFound.
	Update(ctx context.Context, id int64, patch api.ProviderPatch) (*api.Provider, error)

	// Delete removes the record. Returns ErrNotFound for unknown ids.
	// Dispatches that resolve the id afterwards fail with not-found
	// rather than seeing stale data.
	Delete(ctx context.Context, id int64) error

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases store resources.
	Close() error
}

// Package postgres provides a PostgreSQL implementation of
// storage.ProviderStore. It uses pgx/v5 for connection pooling and
// row-level locking to serialize merge-patch updates.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rabbithole-ai/warren/pkg/api"
	"github.com/rabbithole-ai/warren/pkg/storage"
)

const providerColumns = "id, provider_name, provider_syntax, endpoint, api_base, api_key"

// Store is a PostgreSQL-backed ProviderStore.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.ProviderStore at compile time.
var _ storage.ProviderStore = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Create inserts a provider record and returns its assigned id.
func (s *Store) Create(ctx context.Context, p *api.Provider) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO providers (provider_name, provider_syntax, endpoint, api_base, api_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.ProviderName, p.ProviderSyntax, p.Endpoint, p.APIBase, p.APIKey).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return 0, storage.ErrDuplicateName
		}
		return 0, fmt.Errorf("inserting provider: %w", err)
	}

	p.ID = id
	return id, nil
}

// Get retrieves the full record, credential included.
func (s *Store) Get(ctx context.Context, id int64) (*api.Provider, error) {
	var p api.Provider
	err := s.pool.QueryRow(ctx,
		"SELECT "+providerColumns+" FROM providers WHERE id = $1", id,
	).Scan(&p.ID, &p.ProviderName, &p.ProviderSyntax, &p.Endpoint, &p.APIBase, &p.APIKey)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying provider: %w", err)
	}
	return &p, nil
}

// List returns all records ordered by id.
func (s *Store) List(ctx context.Context) ([]api.Provider, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+providerColumns+" FROM providers ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing providers: %w", err)
	}
	defer rows.Close()

	providers := []api.Provider{}
	for rows.Next() {
		var p api.Provider
		if err := rows.Scan(&p.ID, &p.ProviderName, &p.ProviderSyntax, &p.Endpoint, &p.APIBase, &p.APIKey); err != nil {
			return nil, fmt.Errorf("scanning provider: %w", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing providers: %w", err)
	}
	return providers, nil
}

// Update merge-patches the record. The row is locked FOR UPDATE inside a
// transaction so concurrent patches serialize per record.
func (s *Store) Update(ctx context.Context, id int64, patch api.ProviderPatch) (*api.Provider, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning update: %w", err)
	}
	defer tx.Rollback(ctx)

	var p api.Provider
	err = tx.QueryRow(ctx,
		"SELECT "+providerColumns+" FROM providers WHERE id = $1 FOR UPDATE", id,
	).Scan(&p.ID, &p.ProviderName, &p.ProviderSyntax, &p.Endpoint, &p.APIBase, &p.APIKey)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying provider for update: %w", err)
	}

	patch.Apply(&p)
	p.ID = id

	_, err = tx.Exec(ctx, `
		UPDATE providers
		SET provider_name = $1, provider_syntax = $2, endpoint = $3, api_base = $4, api_key = $5
		WHERE id = $6
	`, p.ProviderName, p.ProviderSyntax, p.Endpoint, p.APIBase, p.APIKey, id)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicateName
		}
		return nil, fmt.Errorf("updating provider: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return &p, nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM providers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting provider: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

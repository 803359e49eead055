// Package sqlite provides a SQLite-backed implementation of
// storage.ProviderStore. It is the default backing store for single-node
// deployments: one local file, no external service.
//
// The driver is modernc.org/sqlite (pure Go, no cgo) through
// database/sql, with squirrel building the queries.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/rabbithole-ai/warren/pkg/api"
	"github.com/rabbithole-ai/warren/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS providers (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	provider_name   TEXT NOT NULL UNIQUE,
	provider_syntax TEXT NOT NULL DEFAULT 'openai',
	endpoint        TEXT NOT NULL DEFAULT '',
	api_base        TEXT NOT NULL DEFAULT '',
	api_key         TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_providers_name ON providers(provider_name);
`

// Store is a SQLite-backed ProviderStore.
type Store struct {
	db  *sql.DB
	sql sq.StatementBuilderType
}

// Ensure Store implements storage.ProviderStore at compile time.
var _ storage.ProviderStore = (*Store)(nil)

// Open opens (and creates if needed) the SQLite database at path and
// initializes the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite serializes writers; a single connection avoids busy errors
	// on concurrent mutations.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{
		db:  db,
		sql: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Create inserts a provider record and returns the assigned rowid.
func (s *Store) Create(ctx context.Context, p *api.Provider) (int64, error) {
	q := s.sql.Insert("providers").
		Columns("provider_name", "provider_syntax", "endpoint", "api_base", "api_key").
		Values(p.ProviderName, p.ProviderSyntax, p.Endpoint, p.APIBase, p.APIKey)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build provider insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, storage.ErrDuplicateName
		}
		return 0, fmt.Errorf("insert provider: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("provider insert id: %w", err)
	}
	p.ID = id
	return id, nil
}

// Get returns the full record, credential included.
func (s *Store) Get(ctx context.Context, id int64) (*api.Provider, error) {
	q := s.sql.Select("id", "provider_name", "provider_syntax", "endpoint", "api_base", "api_key").
		From("providers").
		Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build provider query: %w", err)
	}

	var p api.Provider
	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&p.ID, &p.ProviderName, &p.ProviderSyntax, &p.Endpoint, &p.APIBase, &p.APIKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return &p, nil
}

// List returns all records ordered by id.
func (s *Store) List(ctx context.Context) ([]api.Provider, error) {
	q := s.sql.Select("id", "provider_name", "provider_syntax", "endpoint", "api_base", "api_key").
		From("providers").
		OrderBy("id ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build provider list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	providers := []api.Provider{}
	for rows.Next() {
		var p api.Provider
		if err := rows.Scan(&p.ID, &p.ProviderName, &p.ProviderSyntax, &p.Endpoint, &p.APIBase, &p.APIKey); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return providers, nil
}

// Update merge-patches the record inside a transaction so concurrent
// patches to the same record serialize instead of losing fields.
func (s *Store) Update(ctx context.Context, id int64, patch api.ProviderPatch) (*api.Provider, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	sqlStr, args, err := s.sql.Select("id", "provider_name", "provider_syntax", "endpoint", "api_base", "api_key").
		From("providers").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build provider query: %w", err)
	}

	var p api.Provider
	err = tx.QueryRowContext(ctx, sqlStr, args...).Scan(
		&p.ID, &p.ProviderName, &p.ProviderSyntax, &p.Endpoint, &p.APIBase, &p.APIKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get provider for update: %w", err)
	}

	patch.Apply(&p)
	p.ID = id

	sqlStr, args, err = s.sql.Update("providers").
		Set("provider_name", p.ProviderName).
		Set("provider_syntax", p.ProviderSyntax).
		Set("endpoint", p.Endpoint).
		Set("api_base", p.APIBase).
		Set("api_key", p.APIKey).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build provider update: %w", err)
	}

	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicateName
		}
		return nil, fmt.Errorf("update provider: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return &p, nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := s.sql.Delete("providers").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build provider delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// HealthCheck verifies the database file is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// isUniqueViolation detects the SQLite unique constraint error on
// provider_name.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

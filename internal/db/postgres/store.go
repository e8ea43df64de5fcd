package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/stylesearch/internal/db"
)

// Compile-time checks.
var (
	_ db.Store          = (*Store)(nil)
	_ db.CatalogWriter  = (*Store)(nil)
	_ db.CatalogClearer = (*Store)(nil)
	_ db.CatalogDeleter = (*Store)(nil)
)

// Config holds connection parameters for a Postgres store.
type Config struct {
	URL      string
	MaxConns int32
}

// pool is the subset of *pgxpool.Pool the store uses.
type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Ping(ctx context.Context) error
	Close()
}

// Store implements db.Store over a pgvector-enabled products table.
type Store struct {
	pool pool
}

// NewStore creates a connection pool. Connectivity is checked by WaitForReady.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("url is required")
	}

	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &Store{pool: p}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// WaitForReady blocks until the database answers a ping or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

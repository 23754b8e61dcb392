package pg

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/ports"
	"moncfg-backend/internal/patterns"
)

// Compile-time check that Registry implements ports.Registry
var _ ports.Registry = (*Registry)(nil)

// PostgreSQLWriter interface for accessing transaction from writer
type PostgreSQLWriter interface {
	ports.Writer
	GetTx() pgx.Tx
}

// Registry implements the PostgreSQL-based registry pattern
type Registry struct {
	subject patterns.Subject
	pool    *pgxpool.Pool
	mu      sync.RWMutex
}

// NewRegistryFromURI creates a PostgreSQL registry with default pool settings
func NewRegistryFromURI(ctx context.Context, uri string) (*Registry, error) {
	cfg := DefaultConnectionConfig()
	cfg.URI = uri
	return NewRegistry(ctx, cfg)
}

// NewRegistry connects to PostgreSQL and makes sure the schema exists
func NewRegistry(ctx context.Context, cfg ConnectionConfig) (*Registry, error) {
	pool, err := connect(ctx, cfg)
	if err != nil {
		return nil, errors.WithMessage(err, "NewRegistry")
	}
	if err = EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.WithMessage(err, "NewRegistry")
	}
	return &Registry{
		subject: patterns.NewSubject(),
		pool:    pool,
	}, nil
}

// Pool returns the underlying connection pool
func (r *Registry) Pool() *pgxpool.Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool
}

// Subject returns the registry's subject for observer pattern
func (r *Registry) Subject() patterns.Subject {
	return r.subject
}

// Writer begins a read-committed transaction
func (r *Registry) Writer(ctx context.Context) (ports.Writer, error) {
	pool := r.Pool()
	if pool == nil {
		return nil, errors.New("registry is closed")
	}
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to begin transaction")
	}
	return &writer{
		registry: r,
		tx:       tx,
		ctx:      ctx,
	}, nil
}

// Reader creates a reader over the pool
func (r *Registry) Reader(ctx context.Context) (ports.Reader, error) {
	pool := r.Pool()
	if pool == nil {
		return nil, errors.New("registry is closed")
	}
	return &reader{pool: pool, ctx: ctx}, nil
}

// ReaderFromWriter creates a reader that uses the same transaction as the writer
func (r *Registry) ReaderFromWriter(ctx context.Context, w ports.Writer) (ports.Reader, error) {
	pool := r.Pool()
	if pool == nil {
		return nil, errors.New("registry is closed")
	}
	pgWriter, ok := w.(PostgreSQLWriter)
	if !ok {
		return nil, errors.New("writer is not a PostgreSQL writer")
	}
	return &reader{pool: pool, tx: pgWriter.GetTx(), ctx: ctx}, nil
}

// Close closes the registry and its connections
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
	return nil
}

package testutil

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

// Store operations counted by CountingRegistry
const (
	OpFindIDs = "FindIDs"
	OpList    = "List"
	OpGetByID = "GetByID"
	OpInsert  = "Insert"
	OpUpdate  = "Update"
	OpDelete  = "Delete"
)

// CountingRegistry decorates a registry and counts store calls per operation and kind
type CountingRegistry struct {
	ports.Registry

	mu     sync.Mutex
	calls  map[string]map[models.Kind]int
	denied map[models.Kind]bool
}

var _ ports.Registry = (*CountingRegistry)(nil)

// NewCountingRegistry wraps inner
func NewCountingRegistry(inner ports.Registry) *CountingRegistry {
	return &CountingRegistry{
		Registry: inner,
		calls:    make(map[string]map[models.Kind]int),
	}
}

func (r *CountingRegistry) count(op string, kind models.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.calls[op]
	if !ok {
		m = make(map[models.Kind]int)
		r.calls[op] = m
	}
	m[kind.Storage()]++
}

// Calls returns the number of op calls for kind
func (r *CountingRegistry) Calls(op string, kind models.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op][kind.Storage()]
}

// KindCalls returns the number of calls of any operation for kind
func (r *CountingRegistry) KindCalls(kind models.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.calls {
		n += m[kind.Storage()]
	}
	return n
}

// Total returns the number of calls of any operation for any kind
func (r *CountingRegistry) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.calls {
		for _, c := range m {
			n += c
		}
	}
	return n
}

// Reset forgets the counted calls
func (r *CountingRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = make(map[string]map[models.Kind]int)
}

// FailWrites makes every write of kind fail
func (r *CountingRegistry) FailWrites(kind models.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.denied == nil {
		r.denied = make(map[models.Kind]bool)
	}
	r.denied[kind.Storage()] = true
}

func (r *CountingRegistry) failing(kind models.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.denied[kind.Storage()] {
		return errors.Errorf("%s: write failed", kind.Storage())
	}
	return nil
}

// Writer returns a counting writer
func (r *CountingRegistry) Writer(ctx context.Context) (ports.Writer, error) {
	w, err := r.Registry.Writer(ctx)
	if err != nil {
		return nil, err
	}
	return &countingWriter{Writer: w, registry: r}, nil
}

// Reader returns a counting reader
func (r *CountingRegistry) Reader(ctx context.Context) (ports.Reader, error) {
	rd, err := r.Registry.Reader(ctx)
	if err != nil {
		return nil, err
	}
	return &countingReader{Reader: rd, registry: r}, nil
}

// ReaderFromWriter unwraps a counting writer for the wrapped registry
func (r *CountingRegistry) ReaderFromWriter(ctx context.Context, w ports.Writer) (ports.Reader, error) {
	if cw, ok := w.(*countingWriter); ok {
		w = cw.Writer
	}
	rd, err := r.Registry.ReaderFromWriter(ctx, w)
	if err != nil {
		return nil, err
	}
	return &countingReader{Reader: rd, registry: r}, nil
}

type countingReader struct {
	ports.Reader
	registry *CountingRegistry
}

func (c *countingReader) FindIDs(ctx context.Context, kind models.Kind, keys []models.NaturalKey) (map[models.NaturalKey]models.ID, error) {
	c.registry.count(OpFindIDs, kind)
	return c.Reader.FindIDs(ctx, kind, keys)
}

func (c *countingReader) List(ctx context.Context, kind models.Kind, consume func(models.Record) error, scope ports.Scope) error {
	c.registry.count(OpList, kind)
	return c.Reader.List(ctx, kind, consume, scope)
}

func (c *countingReader) GetByID(ctx context.Context, kind models.Kind, id models.ID) (models.Record, error) {
	c.registry.count(OpGetByID, kind)
	return c.Reader.GetByID(ctx, kind, id)
}

type countingWriter struct {
	ports.Writer
	registry *CountingRegistry
}

func (c *countingWriter) Insert(ctx context.Context, kind models.Kind, records []models.Record) ([]models.ID, error) {
	c.registry.count(OpInsert, kind)
	if err := c.registry.failing(kind); err != nil {
		return nil, err
	}
	return c.Writer.Insert(ctx, kind, records)
}

func (c *countingWriter) Update(ctx context.Context, kind models.Kind, records []models.Record) error {
	c.registry.count(OpUpdate, kind)
	if err := c.registry.failing(kind); err != nil {
		return err
	}
	return c.Writer.Update(ctx, kind, records)
}

func (c *countingWriter) Delete(ctx context.Context, kind models.Kind, ids []models.ID) error {
	c.registry.count(OpDelete, kind)
	if err := c.registry.failing(kind); err != nil {
		return err
	}
	return c.Writer.Delete(ctx, kind, ids)
}

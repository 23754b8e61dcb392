package mem

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/ports"
	"moncfg-backend/internal/patterns"
)

// ErrClosed is returned by a closed registry
var ErrClosed = errors.New("registry is closed")

// Registry is an in-memory store. Writers are serialized: a second Writer call blocks
// until the open transaction commits or aborts, so staged tables never overwrite each other.
type Registry struct {
	db     *MemDB
	mu     sync.RWMutex
	subj   patterns.Subject
	closed bool
	txLock chan struct{}
}

var _ ports.Registry = (*Registry)(nil)

// NewRegistry creates a new in-memory registry
func NewRegistry() *Registry {
	return &Registry{
		db:     NewMemDB(),
		subj:   patterns.NewSubject(),
		txLock: make(chan struct{}, 1),
	}
}

// Subject returns the registry's subject
func (r *Registry) Subject() patterns.Subject {
	return r.subj
}

func (r *Registry) checkOpen() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}

// Writer opens a transaction, waiting for the previous one to finish
func (r *Registry) Writer(ctx context.Context) (ports.Writer, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	select {
	case r.txLock <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.WithMessage(ctx.Err(), "waiting for the open transaction")
	}
	var once sync.Once
	return &writer{
		registry: r,
		ctx:      ctx,
		release:  func() { once.Do(func() { <-r.txLock }) },
	}, nil
}

// Reader returns a reader of committed data
func (r *Registry) Reader(ctx context.Context) (ports.Reader, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	return &reader{registry: r, ctx: ctx}, nil
}

// ReaderFromWriter returns a reader that can see changes made in the current transaction
func (r *Registry) ReaderFromWriter(ctx context.Context, w ports.Writer) (ports.Reader, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	memWriter, ok := w.(*writer)
	if !ok {
		return nil, errors.Errorf("writer %T is not a memory writer", w)
	}
	return &reader{registry: r, ctx: ctx, writer: memWriter}, nil
}

// Close closes the registry; open transactions may still commit
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

package services

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

// Resolver maps natural keys to stored ids. Keys are seeded first and resolved in one store
// round-trip per kind; ids once known never change for the lifetime of the resolver.
type Resolver struct {
	reader  ports.ReaderNoClose
	refs    map[models.NaturalKey]*models.EntityRef
	pending map[models.Kind][]models.NaturalKey
	queries int
}

// NewResolver creates a Resolver reading through reader
func NewResolver(reader ports.ReaderNoClose) *Resolver {
	return &Resolver{
		reader:  reader,
		refs:    make(map[models.NaturalKey]*models.EntityRef),
		pending: make(map[models.Kind][]models.NaturalKey),
	}
}

// Seed registers keys to resolve; seeding a key twice is a no-op
func (r *Resolver) Seed(keys ...models.NaturalKey) {
	for _, k := range keys {
		k = k.Storage()
		if _, ok := r.refs[k]; ok {
			continue
		}
		r.refs[k] = &models.EntityRef{Key: k}
		r.pending[k.Kind] = append(r.pending[k.Kind], k)
	}
}

// SeedSets seeds every key of sets
func (r *Resolver) SeedSets(sets *ReferenceSets) {
	for _, kind := range sets.Kinds() {
		r.Seed(sets.Keys(kind)...)
	}
}

// ResolveBatch resolves every pending key with one query per kind; misses stay unresolved
func (r *Resolver) ResolveBatch(ctx context.Context) error {
	kinds := make([]models.Kind, 0, len(r.pending))
	for k := range r.pending {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, kind := range kinds {
		if err := r.query(ctx, kind, r.pending[kind]); err != nil {
			return err
		}
		delete(r.pending, kind)
	}
	return nil
}

// Refresh re-resolves the still unresolved keys of a kind
func (r *Resolver) Refresh(ctx context.Context, kind models.Kind) error {
	kind = kind.Storage()
	var keys []models.NaturalKey
	for k, ref := range r.refs {
		if k.Kind == kind && !ref.Resolved() {
			keys = append(keys, k)
		}
	}
	delete(r.pending, kind)
	if len(keys) == 0 {
		return nil
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return r.query(ctx, kind, keys)
}

// Ensure seeds keys and resolves whatever is pending
func (r *Resolver) Ensure(ctx context.Context, keys ...models.NaturalKey) error {
	r.Seed(keys...)
	return r.ResolveBatch(ctx)
}

func (r *Resolver) query(ctx context.Context, kind models.Kind, keys []models.NaturalKey) error {
	if len(keys) == 0 {
		return nil
	}
	r.queries++
	found, err := r.reader.FindIDs(ctx, kind, keys)
	if err != nil {
		return validation.NewStoreError(err, "resolve %d %s key(s)", len(keys), kind)
	}
	for k, id := range found {
		if ref, ok := r.refs[k.Storage()]; ok && !ref.Resolved() {
			ref.ID = id
		}
	}
	klog.V(4).Infof("resolved %d of %d %s key(s)", len(found), len(keys), kind)
	return nil
}

// Resolve returns the id of key, zero when no such record exists.
// ErrKeyNotSeeded means the caller never seeded the key.
func (r *Resolver) Resolve(key models.NaturalKey) (models.ID, error) {
	ref, ok := r.refs[key.Storage()]
	if !ok {
		return 0, errors.WithMessagef(validation.ErrKeyNotSeeded, "%s", key)
	}
	return ref.ID, nil
}

// Record writes back the id of a record created in this operation
func (r *Resolver) Record(key models.NaturalKey, id models.ID) error {
	key = key.Storage()
	ref, ok := r.refs[key]
	if !ok {
		r.refs[key] = &models.EntityRef{Key: key, ID: id}
		return nil
	}
	if ref.Resolved() && ref.ID != id {
		return errors.Errorf("%s is already resolved to #%d, cannot rebind to #%d", key, ref.ID, id)
	}
	ref.ID = id
	return nil
}

// Forget drops keys of deleted records
func (r *Resolver) Forget(keys ...models.NaturalKey) {
	for _, k := range keys {
		k = k.Storage()
		if ref, ok := r.refs[k]; ok {
			ref.ID = 0
		}
	}
}

// Queries returns the number of store round-trips made so far
func (r *Resolver) Queries() int {
	return r.queries
}

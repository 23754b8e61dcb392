package mem

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

type writer struct {
	registry *Registry
	ctx      context.Context
	staged   map[models.Kind]table
	release  func()
}

// stage returns the staged copy of a table, creating it from committed data on first use
func (w *writer) stage(kind models.Kind) table {
	kind = kind.Storage()
	if w.staged == nil {
		w.staged = make(map[models.Kind]table)
	}
	t, ok := w.staged[kind]
	if !ok {
		t = w.registry.db.GetTable(kind)
		w.staged[kind] = t
	}
	return t
}

// Insert inserts records; a natural key already present in the table is a constraint violation
func (w *writer) Insert(_ context.Context, kind models.Kind, records []models.Record) ([]models.ID, error) {
	t := w.stage(kind)
	taken := make(map[models.NaturalKey]struct{}, len(t))
	for _, rec := range t {
		taken[rec.Key()] = struct{}{}
	}
	ids := make([]models.ID, 0, len(records))
	for _, rec := range records {
		key := rec.Key()
		if _, dup := taken[key]; dup {
			return nil, errors.WithMessagef(ports.ErrDuplicateKey, "insert %s %s", kind.Storage(), key)
		}
		taken[key] = struct{}{}
		c := rec.DeepCopy()
		c.SetID(w.registry.db.NextID())
		t[c.GetID()] = c
		ids = append(ids, c.GetID())
	}
	return ids, nil
}

// Update replaces records by id
func (w *writer) Update(_ context.Context, kind models.Kind, records []models.Record) error {
	t := w.stage(kind)
	for _, rec := range records {
		if _, ok := t[rec.GetID()]; !ok {
			return errors.WithMessagef(ports.ErrNotFound, "update %s #%d", kind.Storage(), rec.GetID())
		}
		t[rec.GetID()] = rec.DeepCopy()
	}
	return nil
}

// Delete deletes records by id; unknown ids are ignored
func (w *writer) Delete(_ context.Context, kind models.Kind, ids []models.ID) error {
	t := w.stage(kind)
	for _, id := range ids {
		delete(t, id)
	}
	return nil
}

func (w *writer) Commit() error {
	defer w.release()
	if len(w.staged) == 0 {
		return nil
	}
	kinds := make([]models.Kind, 0, len(w.staged))
	for k := range w.staged {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	w.registry.db.SetTables(w.staged)
	w.staged = nil
	w.registry.subj.Notify(models.CommitEvent{
		Kinds:     kinds,
		UpdatedAt: time.Now(),
	})
	return nil
}

func (w *writer) Abort() {
	w.staged = nil
	w.release()
}

package mem

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

type reader struct {
	registry *Registry
	ctx      context.Context
	writer   *writer
}

func (r *reader) Close() error {
	return nil
}

// tableOf returns staged data of the attached writer when present
func (r *reader) tableOf(kind models.Kind) table {
	if r.writer != nil {
		if t, ok := r.writer.staged[kind.Storage()]; ok {
			return t
		}
	}
	return r.registry.db.GetTable(kind)
}

// FindIDs looks up ids by natural key
func (r *reader) FindIDs(_ context.Context, kind models.Kind, keys []models.NaturalKey) (map[models.NaturalKey]models.ID, error) {
	ret := make(map[models.NaturalKey]models.ID, len(keys))
	if len(keys) == 0 {
		return ret, nil
	}
	wanted := make(map[models.NaturalKey][]models.NaturalKey, len(keys))
	for _, k := range keys {
		sk := k.Storage()
		wanted[sk] = append(wanted[sk], k)
	}
	for id, rec := range r.tableOf(kind) {
		for _, k := range wanted[rec.Key()] {
			ret[k] = id
		}
	}
	return ret, nil
}

// List lists records of a kind in id order
func (r *reader) List(_ context.Context, kind models.Kind, consume func(models.Record) error, scope ports.Scope) error {
	t := r.tableOf(kind)
	ids := make([]models.ID, 0, len(t))
	for id, rec := range t {
		if ports.Match(scope, rec) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := consume(t[id].DeepCopy()); err != nil {
			return err
		}
	}
	return nil
}

// GetByID gets a record by id
func (r *reader) GetByID(_ context.Context, kind models.Kind, id models.ID) (models.Record, error) {
	rec, ok := r.tableOf(kind)[id]
	if !ok {
		return nil, errors.WithMessagef(ports.ErrNotFound, "%s #%d", kind.Storage(), id)
	}
	return rec.DeepCopy(), nil
}

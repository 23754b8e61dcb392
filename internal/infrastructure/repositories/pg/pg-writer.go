package pg

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

type writer struct {
	registry *Registry
	tx       pgx.Tx
	ctx      context.Context
	touched  map[models.Kind]struct{}
}

// GetTx returns the writer transaction
func (w *writer) GetTx() pgx.Tx {
	return w.tx
}

func (w *writer) touch(kind models.Kind) {
	if w.touched == nil {
		w.touched = make(map[models.Kind]struct{})
	}
	w.touched[kind.Storage()] = struct{}{}
}

// Insert inserts records in one batch and returns their ids in input order
func (w *writer) Insert(ctx context.Context, kind models.Kind, records []models.Record) ([]models.ID, error) {
	if len(records) == 0 {
		return nil, nil
	}
	tbl, err := TableName(kind)
	if err != nil {
		return nil, err
	}
	query := "INSERT INTO " + tbl + " (natural_key, host_id, template_id, rule_id, payload) VALUES ($1, $2, $3, $4, $5) RETURNING id"
	batch := &pgx.Batch{}
	for _, rec := range records {
		rw, err := toRow(rec)
		if err != nil {
			return nil, err
		}
		batch.Queue(query, rw.naturalKey, rw.hostID, rw.templateID, rw.ruleID, rw.payload)
	}

	br := w.tx.SendBatch(ctx, batch)
	defer br.Close()
	ids := make([]models.ID, 0, len(records))
	for _, rec := range records {
		var id int64
		if err = br.QueryRow().Scan(&id); err != nil {
			if isUniqueViolation(err) {
				return nil, errors.WithMessagef(ports.ErrDuplicateKey, "insert %s %s", kind.Storage(), rec.Key())
			}
			return nil, errors.Wrapf(err, "failed to insert %s", rec.Key())
		}
		ids = append(ids, models.ID(id))
	}
	w.touch(kind)
	return ids, nil
}

// Update updates records in one batch
func (w *writer) Update(ctx context.Context, kind models.Kind, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}
	tbl, err := TableName(kind)
	if err != nil {
		return err
	}
	query := "UPDATE " + tbl + " SET natural_key = $2, host_id = $3, template_id = $4, rule_id = $5, payload = $6 WHERE id = $1"
	batch := &pgx.Batch{}
	for _, rec := range records {
		rw, err := toRow(rec)
		if err != nil {
			return err
		}
		batch.Queue(query, int64(rec.GetID()), rw.naturalKey, rw.hostID, rw.templateID, rw.ruleID, rw.payload)
	}

	br := w.tx.SendBatch(ctx, batch)
	defer br.Close()
	for _, rec := range records {
		tag, err := br.Exec()
		if err != nil {
			return errors.Wrapf(err, "failed to update %s #%d", rec.Key(), rec.GetID())
		}
		if tag.RowsAffected() == 0 {
			return errors.WithMessagef(ports.ErrNotFound, "update %s #%d", kind.Storage(), rec.GetID())
		}
	}
	w.touch(kind)
	return nil
}

// Delete deletes records by id
func (w *writer) Delete(ctx context.Context, kind models.Kind, ids []models.ID) error {
	if len(ids) == 0 {
		return nil
	}
	tbl, err := TableName(kind)
	if err != nil {
		return err
	}
	if _, err = w.tx.Exec(ctx, "DELETE FROM "+tbl+" WHERE id = ANY($1)", toInt64s(ids)); err != nil {
		return errors.Wrapf(err, "failed to delete %s", kind.Storage())
	}
	w.touch(kind)
	return nil
}

func (w *writer) Commit() error {
	if err := w.tx.Commit(w.ctx); err != nil {
		return errors.WithMessage(err, "commit")
	}
	if len(w.touched) > 0 {
		kinds := make([]models.Kind, 0, len(w.touched))
		for k := range w.touched {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		w.registry.subject.Notify(models.CommitEvent{Kinds: kinds, UpdatedAt: time.Now()})
	}
	return nil
}

func (w *writer) Abort() {
	_ = w.tx.Rollback(w.ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

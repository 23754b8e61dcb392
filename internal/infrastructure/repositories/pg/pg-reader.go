package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

type reader struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
	ctx  context.Context
}

// Close closes the reader (connection returned to pool automatically)
func (r *reader) Close() error {
	return nil
}

// query executes a query using either transaction or pool connection
func (r *reader) query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	if r.tx != nil {
		return r.tx.Query(ctx, query, args...)
	}
	return r.pool.Query(ctx, query, args...)
}

// queryRow executes a single-row query using either transaction or pool connection
func (r *reader) queryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	if r.tx != nil {
		return r.tx.QueryRow(ctx, query, args...)
	}
	return r.pool.QueryRow(ctx, query, args...)
}

// FindIDs looks up ids by natural key with a single query
func (r *reader) FindIDs(ctx context.Context, kind models.Kind, keys []models.NaturalKey) (map[models.NaturalKey]models.ID, error) {
	ret := make(map[models.NaturalKey]models.ID, len(keys))
	if len(keys) == 0 {
		return ret, nil
	}
	tbl, err := TableName(kind)
	if err != nil {
		return nil, err
	}
	byEncoded := make(map[string][]models.NaturalKey, len(keys))
	encoded := make([]string, 0, len(keys))
	for _, k := range keys {
		e := encodeKey(k)
		if _, seen := byEncoded[e]; !seen {
			encoded = append(encoded, e)
		}
		byEncoded[e] = append(byEncoded[e], k)
	}

	rows, err := r.query(ctx, "SELECT id, natural_key FROM "+tbl+" WHERE natural_key = ANY($1)", encoded)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %s ids", kind.Storage())
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id int64
			nk string
		)
		if err = rows.Scan(&id, &nk); err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s id", kind.Storage())
		}
		for _, k := range byEncoded[nk] {
			ret[k] = models.ID(id)
		}
	}
	return ret, rows.Err()
}

// List lists records of a kind in id order
func (r *reader) List(ctx context.Context, kind models.Kind, consume func(models.Record) error, scope ports.Scope) error {
	tbl, err := TableName(kind)
	if err != nil {
		return err
	}
	query := "SELECT id, payload FROM " + tbl
	where, args := scopeFilter(scope)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "failed to query %s", kind.Storage())
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id      int64
			payload []byte
		)
		if err = rows.Scan(&id, &payload); err != nil {
			return errors.Wrapf(err, "failed to scan %s", kind.Storage())
		}
		rec, err := fromRow(kind, id, payload)
		if err != nil {
			return err
		}
		if err = consume(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// GetByID gets a record by id
func (r *reader) GetByID(ctx context.Context, kind models.Kind, id models.ID) (models.Record, error) {
	tbl, err := TableName(kind)
	if err != nil {
		return nil, err
	}
	var payload []byte
	err = r.queryRow(ctx, "SELECT payload FROM "+tbl+" WHERE id = $1", int64(id)).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.WithMessagef(ports.ErrNotFound, "%s #%d", kind.Storage(), id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s #%d", kind.Storage(), id)
	}
	return fromRow(kind, int64(id), payload)
}

// scopeFilter builds a WHERE clause for scope
func scopeFilter(scope ports.Scope) (string, []interface{}) {
	if scope == nil || scope.IsEmpty() {
		return "", nil
	}
	var (
		column string
		ids    []models.ID
	)
	switch s := scope.(type) {
	case ports.IDScope:
		column, ids = "id", s.IDs
	case ports.HostScope:
		column, ids = "host_id", s.HostIDs
	case ports.TemplateScope:
		column, ids = "template_id", s.TemplateIDs
	case ports.RuleScope:
		column, ids = "rule_id", s.RuleIDs
	case ports.DependencyScope:
		return "EXISTS (SELECT 1 FROM jsonb_array_elements_text(payload->'dependencyIds') AS dep WHERE dep::bigint = ANY($1))",
			[]interface{}{toInt64s(s.TriggerIDs)}
	default:
		return "", nil
	}
	return fmt.Sprintf("%s = ANY($1)", column), []interface{}{toInt64s(ids)}
}

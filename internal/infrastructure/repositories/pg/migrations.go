package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"moncfg-backend/internal/domain/models"
)

var tableDDL = []string{
	`CREATE TABLE IF NOT EXISTS %[1]s (
		id          BIGSERIAL PRIMARY KEY,
		natural_key TEXT      NOT NULL UNIQUE,
		host_id     BIGINT    NOT NULL DEFAULT 0,
		template_id BIGINT    NOT NULL DEFAULT 0,
		rule_id     BIGINT    NOT NULL DEFAULT 0,
		payload     JSONB     NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS %[2]s_host_id_idx ON %[1]s (host_id)`,
	`CREATE INDEX IF NOT EXISTS %[2]s_template_id_idx ON %[1]s (template_id)`,
	`CREATE INDEX IF NOT EXISTS %[2]s_rule_id_idx ON %[1]s (rule_id)`,
}

// EnsureSchema creates the schema and one table per storage kind if they do not exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+SchemaName); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}
	for _, kind := range models.StorageKinds {
		tbl, err := TableName(kind)
		if err != nil {
			return err
		}
		for _, stmt := range tableDDL {
			if _, err = pool.Exec(ctx, fmt.Sprintf(stmt, tbl, kind2table[kind])); err != nil {
				return errors.Wrapf(err, "failed to create table %s", tbl)
			}
		}
	}
	return nil
}

// Truncate removes all rows of every table; used by tests
func Truncate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, kind := range models.StorageKinds {
		tbl, err := TableName(kind)
		if err != nil {
			return err
		}
		if _, err = pool.Exec(ctx, "TRUNCATE "+tbl+" RESTART IDENTITY"); err != nil {
			return errors.Wrapf(err, "failed to truncate %s", tbl)
		}
	}
	return nil
}

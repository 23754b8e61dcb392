package ports

import (
	"context"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/patterns"
)

type (
	// Scope defines the scope of operations
	Scope interface {
		IsEmpty() bool
		String() string
	}

	// ReaderNoClose defines read operations without close
	ReaderNoClose interface {
		// FindIDs looks up surrogate ids by natural key in one round-trip; misses are omitted
		FindIDs(ctx context.Context, kind models.Kind, keys []models.NaturalKey) (map[models.NaturalKey]models.ID, error)

		// List streams records of a storage kind matching scope
		List(ctx context.Context, kind models.Kind, consume func(models.Record) error, scope Scope) error

		// GetByID returns one record or ErrNotFound
		GetByID(ctx context.Context, kind models.Kind, id models.ID) (models.Record, error)
	}

	// Reader defines read operations
	Reader interface {
		ReaderNoClose
		Close() error
	}

	// Writer defines write operations; all of them are staged in one transaction
	Writer interface {
		// Insert creates records and returns their ids in input order
		Insert(ctx context.Context, kind models.Kind, records []models.Record) ([]models.ID, error)

		// Update replaces stored records identified by their ids
		Update(ctx context.Context, kind models.Kind, records []models.Record) error

		// Delete removes records by id
		Delete(ctx context.Context, kind models.Kind, ids []models.ID) error

		Commit() error
		Abort()
	}

	// Registry defines the registry interface
	Registry interface {
		Subject() patterns.Subject
		Writer(ctx context.Context) (Writer, error)
		Reader(ctx context.Context) (Reader, error)
		// ReaderFromWriter returns a reader that can see changes made in the current transaction
		ReaderFromWriter(ctx context.Context, writer Writer) (Reader, error)
		Close() error
	}

	// PermissionChecker answers whether the caller may write the given records
	PermissionChecker interface {
		CanWrite(ctx context.Context, kind models.Kind, ids []models.ID) (bool, error)
	}
)

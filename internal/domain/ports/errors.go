package ports

import "github.com/pkg/errors"

// Store errors; backends wrap them with the failing operation
var (
	// ErrNotFound is returned when no record has the requested id
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert would repeat a natural key of its table
	ErrDuplicateKey = errors.New("duplicate natural key")
)

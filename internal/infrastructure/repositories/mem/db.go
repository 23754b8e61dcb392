package mem

import (
	"sync"
	"sync/atomic"
	"time"

	"moncfg-backend/internal/domain/models"
)

type table map[models.ID]models.Record

// MemDB is an in-memory database
type MemDB struct {
	mu        sync.RWMutex
	tables    map[models.Kind]table
	seq       atomic.Uint64
	updatedAt time.Time
}

// NewMemDB creates a new in-memory database
func NewMemDB() *MemDB {
	db := &MemDB{
		tables: make(map[models.Kind]table, len(models.StorageKinds)),
	}
	for _, k := range models.StorageKinds {
		db.tables[k] = make(table)
	}
	return db
}

// NextID allocates a surrogate id; ids are never reused even if the transaction aborts
func (db *MemDB) NextID() models.ID {
	return models.ID(db.seq.Add(1))
}

// GetTable returns a shallow copy of the table of a storage kind
func (db *MemDB) GetTable(kind models.Kind) table {
	db.mu.RLock()
	defer db.mu.RUnlock()
	src := db.tables[kind.Storage()]
	ret := make(table, len(src))
	for id, rec := range src {
		ret[id] = rec
	}
	return ret
}

// SetTables replaces tables
func (db *MemDB) SetTables(tables map[models.Kind]table) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for k, t := range tables {
		db.tables[k] = t
	}
	db.updatedAt = time.Now()
}

// UpdatedAt returns the time of the last commit
func (db *MemDB) UpdatedAt() time.Time {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.updatedAt
}

// Package history persists simulation runs as an insertion-ordered,
// append-only log with newest-first retrieval. Two backends are provided:
// an in-memory store and a SQLite-backed one.
package history

import (
	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/hierarchy"
	"github.com/dath2006/cache-insights/memory"
)

// A Record is one saved run: the configuration that produced it, the trace
// length, and the resulting statistics. The ID is assigned by the store.
type Record struct {
	ID          string
	TimestampMS int64

	Config hierarchy.Config
	Memory memory.Config

	TraceLength int

	L1Stats     *cache.Stats
	L2Stats     *cache.Stats
	Combined    cache.Stats
	MemoryStats *memory.Stats
}

// A Store is an append-only run log.
type Store interface {
	// Save appends a record and returns its assigned id.
	Save(r Record) (string, error)

	// ListAll returns all records, newest first.
	ListAll() ([]Record, error)

	// Delete removes a record by id and reports whether it existed.
	Delete(id string) (bool, error)

	// Clear removes all records.
	Clear() error

	// Close releases the backing resources.
	Close() error
}

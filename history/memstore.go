package history

import (
	"time"

	"github.com/rs/xid"
)

// A MemStore keeps the run log in memory; nothing outlives the process.
type MemStore struct {
	records []Record
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Save appends the record, stamping its id and timestamp.
func (s *MemStore) Save(r Record) (string, error) {
	r.ID = xid.New().String()
	if r.TimestampMS == 0 {
		r.TimestampMS = time.Now().UnixMilli()
	}

	s.records = append(s.records, r)

	return r.ID, nil
}

// ListAll returns a copy of the log, newest first.
func (s *MemStore) ListAll() ([]Record, error) {
	out := make([]Record, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}

	return out, nil
}

// Delete removes the record with the given id.
func (s *MemStore) Delete(id string) (bool, error) {
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}

	return false, nil
}

// Clear removes all records.
func (s *MemStore) Clear() error {
	s.records = nil
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}

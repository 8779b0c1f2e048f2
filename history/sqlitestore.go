package history

import (
	"database/sql"
	"encoding/json"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/hierarchy"
	"github.com/dath2006/cache-insights/memory"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT UNIQUE NOT NULL,
	timestamp_ms  INTEGER NOT NULL,
	config        TEXT NOT NULL,
	trace_length  INTEGER NOT NULL,
	stats         TEXT NOT NULL,
	memory_stats  TEXT
)`

// configColumn is the JSON shape of the config column.
type configColumn struct {
	Hierarchy hierarchy.Config `json:"hierarchy"`
	Memory    memory.Config    `json:"memory"`
}

// statsColumn is the JSON shape of the stats column.
type statsColumn struct {
	L1       *cache.Stats `json:"l1,omitempty"`
	L2       *cache.Stats `json:"l2,omitempty"`
	Combined cache.Stats  `json:"combined"`
}

// A SQLiteStore persists the run log in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path. An empty path
// picks a fresh xid-suffixed filename in the working directory. The store
// is closed automatically at process exit.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "cache_insights_history_" + xid.New().String() + ".sqlite3"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(createRunsTable); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	atexit.Register(func() { s.Close() })

	return s, nil
}

// Save appends the record, stamping its id and timestamp.
func (s *SQLiteStore) Save(r Record) (string, error) {
	r.ID = xid.New().String()
	if r.TimestampMS == 0 {
		r.TimestampMS = time.Now().UnixMilli()
	}

	configJSON, err := json.Marshal(configColumn{r.Config, r.Memory})
	if err != nil {
		return "", err
	}

	statsJSON, err := json.Marshal(statsColumn{r.L1Stats, r.L2Stats, r.Combined})
	if err != nil {
		return "", err
	}

	var memStats any
	if r.MemoryStats != nil {
		b, err := json.Marshal(r.MemoryStats)
		if err != nil {
			return "", err
		}
		memStats = string(b)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs
			(id, timestamp_ms, config, trace_length, stats, memory_stats)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.TimestampMS, string(configJSON), r.TraceLength,
		string(statsJSON), memStats)
	if err != nil {
		return "", err
	}

	return r.ID, nil
}

// ListAll returns all records, newest first.
func (s *SQLiteStore) ListAll() ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, timestamp_ms, config, trace_length, stats, memory_stats
		 FROM runs ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r            Record
			configJSON   string
			statsJSON    string
			memStatsJSON sql.NullString
		)

		err := rows.Scan(&r.ID, &r.TimestampMS, &configJSON,
			&r.TraceLength, &statsJSON, &memStatsJSON)
		if err != nil {
			return nil, err
		}

		var config configColumn
		if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
			return nil, err
		}
		r.Config = config.Hierarchy
		r.Memory = config.Memory

		var stats statsColumn
		if err := json.Unmarshal([]byte(statsJSON), &stats); err != nil {
			return nil, err
		}
		r.L1Stats = stats.L1
		r.L2Stats = stats.L2
		r.Combined = stats.Combined

		if memStatsJSON.Valid {
			r.MemoryStats = &memory.Stats{}
			err := json.Unmarshal([]byte(memStatsJSON.String), r.MemoryStats)
			if err != nil {
				return nil, err
			}
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

// Delete removes a record by id.
func (s *SQLiteStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	return n > 0, err
}

// Clear removes all records.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM runs`)
	return err
}

// Close closes the database. Safe to call more than once.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

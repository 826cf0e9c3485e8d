package persist

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// StatsCache is an optional SQLite-backed store for hash-cons
// statistics (the SI, value-set and tree cache sizes of each run)
// keyed by the binary's hash and the run time, so repeated `vsa analyze` runs on the same
// target can report cache effectiveness trends across invocations
// rather than only within one process lifetime.
type StatsCache struct {
	db *sql.DB
}

// OpenStatsCache opens (creating if necessary) the SQLite database at
// path and ensures its schema exists.
func OpenStatsCache(path string) (*StatsCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("persist: opening cache db %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS hashcons_stats (
	binary_hash TEXT NOT NULL,
	run_at      INTEGER NOT NULL,
	si_count    INTEGER NOT NULL,
	vs_count    INTEGER NOT NULL,
	tree_count  INTEGER NOT NULL,
	PRIMARY KEY (binary_hash, run_at)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: creating schema: %w", err)
	}
	return &StatsCache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *StatsCache) Close() error { return c.db.Close() }

// Record stores one run's hash-cons cache sizes for binaryHash at
// runAt (a Unix timestamp, supplied by the caller since this package
// is forbidden from calling time.Now itself to stay deterministic
// under test).
func (c *StatsCache) Record(binaryHash string, runAt int64, siCount, vsCount, treeCount int) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO hashcons_stats (binary_hash, run_at, si_count, vs_count, tree_count) VALUES (?, ?, ?, ?, ?)`,
		binaryHash, runAt, siCount, vsCount, treeCount,
	)
	return err
}

// History returns every recorded (runAt, siCount, vsCount, treeCount)
// row for binaryHash, most recent first.
func (c *StatsCache) History(binaryHash string) ([][4]int64, error) {
	rows, err := c.db.Query(
		`SELECT run_at, si_count, vs_count, tree_count FROM hashcons_stats WHERE binary_hash = ? ORDER BY run_at DESC`,
		binaryHash,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][4]int64
	for rows.Next() {
		var row [4]int64
		if err := rows.Scan(&row[0], &row[1], &row[2], &row[3]); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

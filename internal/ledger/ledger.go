// Package ledger records which entity URLs a previous run already handled,
// backed by a single SQLite file so resume works across process restarts.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS extracted (
	url          TEXT PRIMARY KEY,
	found        INTEGER NOT NULL,
	extracted_at TEXT NOT NULL
);`

// Ledger is the cross-run extraction history.
type Ledger struct {
	db *sql.DB
}

// Open creates or opens the ledger database at path.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// One writer, one file; concurrency comes from the crawl loop being
	// sequential, not from connection pooling.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Seen reports whether a URL was handled by a previous run.
func (l *Ledger) Seen(url string) (bool, error) {
	var one int
	err := l.db.QueryRow(`SELECT 1 FROM extracted WHERE url = ?`, url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger lookup: %w", err)
	}
	return true, nil
}

// MarkExtracted records the outcome for a URL, overwriting any previous entry.
func (l *Ledger) MarkExtracted(url string, found bool) error {
	foundInt := 0
	if found {
		foundInt = 1
	}
	_, err := l.db.Exec(
		`INSERT INTO extracted (url, found, extracted_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET found = excluded.found, extracted_at = excluded.extracted_at`,
		url, foundInt, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("ledger write: %w", err)
	}
	return nil
}

// Count returns how many URLs the ledger holds.
func (l *Ledger) Count() (int, error) {
	var n int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM extracted`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ledger count: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

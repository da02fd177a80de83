// Package storage persists venue metadata lookups (SQLite) and
// canonical ranked papers (JSONL).
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matsen/scholarank/internal/citation"
	"github.com/matsen/scholarank/internal/dblp"
)

// Cache stores successful venue metadata lookups so repeat runs skip
// the network. Failed lookups are never stored.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the metadata cache at the given path.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	schema := `
		CREATE TABLE IF NOT EXISTS venue_meta (
			venue_type TEXT NOT NULL,
			abbrev TEXT NOT NULL,
			title TEXT,
			issns_json TEXT,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (venue_type, abbrev)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached metadata for a venue, if present.
func (c *Cache) Get(vt citation.VenueType, abbrev string) (dblp.Meta, bool, error) {
	var title, issnsJSON string
	err := c.db.QueryRow(
		`SELECT title, issns_json FROM venue_meta WHERE venue_type = ? AND abbrev = ?`,
		string(vt), abbrev,
	).Scan(&title, &issnsJSON)
	if err == sql.ErrNoRows {
		return dblp.Meta{}, false, nil
	}
	if err != nil {
		return dblp.Meta{}, false, fmt.Errorf("reading cache: %w", err)
	}

	meta := dblp.Meta{Title: title}
	if issnsJSON != "" {
		if err := json.Unmarshal([]byte(issnsJSON), &meta.ISSNs); err != nil {
			return dblp.Meta{}, false, fmt.Errorf("parsing cached issns: %w", err)
		}
	}
	return meta, true, nil
}

// Put stores the metadata for a venue, replacing any earlier entry.
func (c *Cache) Put(vt citation.VenueType, abbrev string, meta dblp.Meta) error {
	issnsJSON, err := json.Marshal(meta.ISSNs)
	if err != nil {
		return fmt.Errorf("encoding issns: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO venue_meta (venue_type, abbrev, title, issns_json, fetched_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(vt), abbrev, meta.Title, string(issnsJSON), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Package sqlite owns the corpus database handle. The database carries the
// article metadata table and the precomputed embedding matrix; at runtime it
// is opened read-mostly and shared across requests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // sqlite driver
)

// DB wraps the sql handle for the corpus store.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the corpus database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		return nil, fmt.Errorf("set synchronous: %w", err)
	}
	return &DB{db}, nil
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// InitSchema creates the corpus tables. Used by the index builder and tests;
// the API server only reads.
func (d *DB) InitSchema(ctx context.Context) error {
	_, err := d.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			headline TEXT NOT NULL,
			short_description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			keywords_proper_nouns TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			published_at TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS article_embeddings (
			id TEXT PRIMARY KEY REFERENCES articles(id),
			dim INTEGER NOT NULL,
			vec BLOB NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

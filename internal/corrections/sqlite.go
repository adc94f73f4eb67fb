package corrections

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE corrections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	pattern TEXT NOT NULL,
	correction TEXT NOT NULL,
	topic TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT ''
)`

// LoadDB reads a catalog artifact produced by BuildDB. The file must exist;
// the returned catalog is immutable, so the database is closed before
// returning.
func LoadDB(path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening corrections catalog: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT pattern, correction, topic, source_url FROM corrections ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("reading corrections: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Pattern, &e.Correction, &e.Topic, &e.SourceURL); err != nil {
			return nil, fmt.Errorf("scanning correction: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return NewCatalog(entries)
}

// BuildDB writes entries to a fresh catalog artifact at path, replacing any
// existing file. Row order follows entry order, which fixes lookup
// precedence.
func BuildDB(path string, entries []Entry) error {
	// Validate before touching the filesystem.
	if _, err := NewCatalog(entries); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating catalog directory: %w", err)
		}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replacing existing catalog: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating corrections table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning catalog transaction: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.Exec(
			`INSERT INTO corrections (pattern, correction, topic, source_url) VALUES (?, ?, ?, ?)`,
			e.Pattern, e.Correction, e.Topic, e.SourceURL,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting correction %q: %w", e.Pattern, err)
		}
	}
	return tx.Commit()
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	return db, nil
}

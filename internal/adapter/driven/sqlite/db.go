// Package sqlite persists collected slots, candidate history and the
// feature store in a single SQLite file.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Pragmas applied to every connection. WAL is only meaningful on disk, so
// file databases add journal_mode on top of these.
var basePragmas = []string{
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
	"cache_size(-64000)",
}

// DB holds a single-connection writer and a small reader pool over the same
// database. Pipelines are sequential, so one writer never contends.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// buildDSN renders the modernc DSN for target. A memory database is shared
// between the writer and reader pools by name.
func buildDSN(target string, memory bool) string {
	params := make([]string, 0, len(basePragmas)+3)
	if memory {
		params = append(params, "mode=memory", "cache=shared")
	} else {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	for _, p := range basePragmas {
		params = append(params, "_pragma="+p)
	}
	return fmt.Sprintf("file:%s?%s", target, strings.Join(params, "&"))
}

// NewDB opens the database file at dbPath.
func NewDB(dbPath string) (*DB, error) {
	return open(buildDSN(dbPath, false), dbPath)
}

func open(dsn, path string) (*DB, error) {
	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.Ping(); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.Ping(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader, path: path}, nil
}

// Path returns the database location the DB was opened with.
func (db *DB) Path() string { return db.path }

// Close closes both pools and returns the first error.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}

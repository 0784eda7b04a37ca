// Package database implements the catalogue store on embedded DuckDB.
// The schema is relational: recipes, categories and ingredients with two
// join tables carrying the membership rows the query engine filters on.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/ppetrovna/povarenok/internal/config"
	"github.com/ppetrovna/povarenok/internal/logging"
)

// queryTimeout bounds any single catalogue query. The catalogue is small;
// anything slower than this indicates a wedged connection.
const queryTimeout = 10 * time.Second

// DB wraps the DuckDB connection and implements catalog.Store.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens (creating if needed) the DuckDB database file and initializes
// the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists so a fresh deployment does not
	// fail with "No such file or directory".
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	// Auto-install/auto-load are disabled: the schema uses no extensions,
	// and leaving them on can hang startup in restricted networks.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	db.configureConnectionPool()

	if err := db.createSchema(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Str("max_memory", maxMemory).
		Msg("Database opened")

	return db, nil
}

// configureConnectionPool sizes the database/sql pool. DuckDB is embedded,
// so connections are cheap, but writes take a database-wide lock; a small
// pool keeps readers concurrent without piling up writers.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(4)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
}

// Conn returns the underlying SQL connection, for tests and seeding.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the store is reachable. Used by the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close releases the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// queryContext derives a bounded context for a single catalogue query.
func queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

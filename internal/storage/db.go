// Package storage implements the sample store behind the provider boundary,
// backed by either PostgreSQL or a single-file SQLite database.
package storage

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/provider"
)

// Store is a sample provider that also accepts writes from ingest.
type Store interface {
	provider.SampleProvider
	InsertSamples(ctx context.Context, rows []models.Sample) (int64, error)
	InsertWorkouts(ctx context.Context, rows []models.WorkoutRecord) (int64, error)
	Close()
}

// DB wraps a pgxpool.Pool and implements Store.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Available reports whether the database answers a ping.
func (db *DB) Available(ctx context.Context) bool {
	return db.Pool.Ping(ctx) == nil
}

// SchemaVersion reads the provider schema version recorded by migrations.
// Falls back to the newest known version when the row is missing.
func (db *DB) SchemaVersion(ctx context.Context) int {
	var v int
	err := db.Pool.QueryRow(ctx, `SELECT version FROM schema_info LIMIT 1`).Scan(&v)
	if err != nil || v == 0 {
		return 2
	}
	return v
}

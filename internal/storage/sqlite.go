package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/provider"
)

// Lite is the single-file SQLite store used for standalone deployments and
// the import CLI. It implements Store with the same semantics as DB.
type Lite struct {
	db *sql.DB
}

// OpenLite opens (or creates) the SQLite store at the given path and
// ensures the schema exists.
func OpenLite(path string) (*Lite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS health_samples (
			metric     TEXT NOT NULL,
			value      REAL NOT NULL,
			start_time TIMESTAMP NOT NULL,
			end_time   TIMESTAMP NOT NULL,
			source     TEXT NOT NULL DEFAULT '',
			UNIQUE (metric, start_time, end_time, source)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_metric_start ON health_samples (metric, start_time)`,
		`CREATE TABLE IF NOT EXISTS workouts (
			id            TEXT PRIMARY KEY,
			activity_code INTEGER NOT NULL,
			start_time    TIMESTAMP NOT NULL,
			end_time      TIMESTAMP NOT NULL,
			duration_min  REAL NOT NULL,
			energy_kcal   REAL,
			distance_km   REAL
		)`,
		`CREATE TABLE IF NOT EXISTS schema_info (version INTEGER NOT NULL)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating sqlite schema: %w", err)
		}
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_info`).Scan(&count); err == nil && count == 0 {
		if _, err := db.Exec(`INSERT INTO schema_info (version) VALUES (2)`); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding schema version: %w", err)
		}
	}

	return &Lite{db: db}, nil
}

// Close closes the store.
func (l *Lite) Close() {
	l.db.Close()
}

// Available reports whether the store answers a ping.
func (l *Lite) Available(ctx context.Context) bool {
	return l.db.PingContext(ctx) == nil
}

// SchemaVersion reads the recorded provider schema version.
func (l *Lite) SchemaVersion(ctx context.Context) int {
	var v int
	err := l.db.QueryRowContext(ctx, `SELECT version FROM schema_info LIMIT 1`).Scan(&v)
	if err != nil || v == 0 {
		return 2
	}
	return v
}

// InsertSamples batch-inserts sample rows, skipping duplicates.
func (l *Lite) InsertSamples(ctx context.Context, rows []models.Sample) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT OR IGNORE INTO health_samples (metric, value, start_time, end_time, source) VALUES `
	args := make([]any, 0, len(rows)*5)
	valueStrings := make([]string, 0, len(rows))
	for _, r := range rows {
		valueStrings = append(valueStrings, "(?,?,?,?,?)")
		args = append(args, string(r.Metric), r.Value, r.Start, r.End, r.SourceName)
	}
	query += strings.Join(valueStrings, ",")

	res, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting samples: %w", err)
	}
	return res.RowsAffected()
}

// LatestValue returns the most recent sample value for a metric.
func (l *Lite) LatestValue(ctx context.Context, metric models.Metric) (float64, error) {
	var v float64
	err := l.db.QueryRowContext(ctx,
		`SELECT value FROM health_samples WHERE metric = ? ORDER BY start_time DESC LIMIT 1`,
		string(metric)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, provider.ErrNoData
	}
	if err != nil {
		return 0, fmt.Errorf("querying latest %s: %w", metric, err)
	}
	return v, nil
}

// CumulativeToday sums a metric's values from local start of day to now.
func (l *Lite) CumulativeToday(ctx context.Context, metric models.Metric) (float64, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var sum sql.NullFloat64
	err := l.db.QueryRowContext(ctx,
		`SELECT SUM(value) FROM health_samples WHERE metric = ? AND start_time >= ? AND start_time <= ?`,
		string(metric), startOfDay, now).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("querying today's %s: %w", metric, err)
	}
	if !sum.Valid {
		return 0, provider.ErrNoData
	}
	return sum.Float64, nil
}

// IntervalSamples returns interval samples for a category inside the window.
func (l *Lite) IntervalSamples(ctx context.Context, category models.Metric, start, end time.Time) ([]models.Sample, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT metric, value, start_time, end_time, source
		 FROM health_samples
		 WHERE metric = ? AND start_time >= ? AND start_time < ?
		 ORDER BY start_time ASC`,
		string(category), start, end)
	if err != nil {
		return nil, fmt.Errorf("querying %s samples: %w", category, err)
	}
	defer rows.Close()

	var result []models.Sample
	for rows.Next() {
		var s models.Sample
		var metric string
		if err := rows.Scan(&metric, &s.Value, &s.Start, &s.End, &s.SourceName); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		s.Metric = models.Metric(metric)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, provider.ErrNoData
	}
	return result, nil
}

// InsertWorkouts batch-inserts workout rows, assigning IDs where missing.
func (l *Lite) InsertWorkouts(ctx context.Context, rows []models.WorkoutRecord) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT OR IGNORE INTO workouts (id, activity_code, start_time, end_time, duration_min, energy_kcal, distance_km) VALUES `
	args := make([]any, 0, len(rows)*7)
	valueStrings := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		valueStrings = append(valueStrings, "(?,?,?,?,?,?,?)")
		args = append(args, r.ID.String(), r.ActivityTypeCode, r.Start, r.End, r.DurationMinutes, r.TotalEnergyKcal, r.TotalDistanceKm)
	}
	query += strings.Join(valueStrings, ",")

	res, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workouts: %w", err)
	}
	return res.RowsAffected()
}

// Workouts returns up to limit workouts inside the window, newest first.
func (l *Lite) Workouts(ctx context.Context, start, end time.Time, limit int) ([]models.WorkoutRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, activity_code, start_time, end_time, duration_min, energy_kcal, distance_km
		 FROM workouts
		 WHERE start_time >= ? AND start_time < ?
		 ORDER BY start_time DESC
		 LIMIT ?`,
		start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRecord
	for rows.Next() {
		var w models.WorkoutRecord
		var id string
		if err := rows.Scan(&id, &w.ActivityTypeCode, &w.Start, &w.End, &w.DurationMinutes, &w.TotalEnergyKcal, &w.TotalDistanceKm); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		if parsed, err := uuid.Parse(id); err == nil {
			w.ID = parsed
		}
		w.ActivityTypeName = models.ActivityTypeName(w.ActivityTypeCode)
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, provider.ErrNoData
	}
	return result, nil
}

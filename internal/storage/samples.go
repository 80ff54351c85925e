package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/provider"
)

// InsertSamples batch-inserts sample rows. Returns the number actually
// inserted (duplicates skipped via ON CONFLICT DO NOTHING).
func (db *DB) InsertSamples(ctx context.Context, rows []models.Sample) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO health_samples (metric, value, start_time, end_time, source) VALUES `
	args := make([]any, 0, len(rows)*5)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, r.Metric, r.Value, r.Start, r.End, r.SourceName)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting samples: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LatestValue returns the most recent sample value for a metric, or
// provider.ErrNoData when none exists.
func (db *DB) LatestValue(ctx context.Context, metric models.Metric) (float64, error) {
	var v float64
	err := db.Pool.QueryRow(ctx,
		`SELECT value FROM health_samples WHERE metric = $1 ORDER BY start_time DESC LIMIT 1`,
		metric).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, provider.ErrNoData
	}
	if err != nil {
		return 0, fmt.Errorf("querying latest %s: %w", metric, err)
	}
	return v, nil
}

// CumulativeToday sums a metric's values from local start of day to now.
// A day with no samples yields provider.ErrNoData.
func (db *DB) CumulativeToday(ctx context.Context, metric models.Metric) (float64, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var sum *float64
	err := db.Pool.QueryRow(ctx,
		`SELECT SUM(value) FROM health_samples WHERE metric = $1 AND start_time >= $2 AND start_time <= $3`,
		metric, startOfDay, now).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("querying today's %s: %w", metric, err)
	}
	if sum == nil {
		return 0, provider.ErrNoData
	}
	return *sum, nil
}

// IntervalSamples returns interval samples for a category inside the
// window, ordered by start time.
func (db *DB) IntervalSamples(ctx context.Context, category models.Metric, start, end time.Time) ([]models.Sample, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT metric, value, start_time, end_time, source
		 FROM health_samples
		 WHERE metric = $1 AND start_time >= $2 AND start_time < $3
		 ORDER BY start_time ASC`,
		category, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying %s samples: %w", category, err)
	}
	defer rows.Close()

	var result []models.Sample
	for rows.Next() {
		var s models.Sample
		if err := rows.Scan(&s.Metric, &s.Value, &s.Start, &s.End, &s.SourceName); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
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
func (db *DB) InsertWorkouts(ctx context.Context, rows []models.WorkoutRecord) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO workouts (id, activity_code, start_time, end_time, duration_min, energy_kcal, distance_km) VALUES `
	args := make([]any, 0, len(rows)*7)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		base := i * 7
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		args = append(args, r.ID, r.ActivityTypeCode, r.Start, r.End, r.DurationMinutes, r.TotalEnergyKcal, r.TotalDistanceKm)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workouts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Workouts returns up to limit workouts inside the window, newest first.
func (db *DB) Workouts(ctx context.Context, start, end time.Time, limit int) ([]models.WorkoutRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, activity_code, start_time, end_time, duration_min, energy_kcal, distance_km
		 FROM workouts
		 WHERE start_time >= $1 AND start_time < $2
		 ORDER BY start_time DESC
		 LIMIT $3`,
		start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRecord
	for rows.Next() {
		var w models.WorkoutRecord
		if err := rows.Scan(&w.ID, &w.ActivityTypeCode, &w.Start, &w.End, &w.DurationMinutes, &w.TotalEnergyKcal, &w.TotalDistanceKm); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
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

// Package provider defines the sample-source boundary consumed by the
// snapshot engine, together with its error taxonomy.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/claude/vitalsnap/internal/models"
)

// ErrNoData is the benign "no samples match this query" response. Callers
// treat it as absence, never as failure.
var ErrNoData = errors.New("no data for query")

// ErrUnavailable means the sample source is inaccessible on this host. The
// aggregator surfaces it as an unauthorized snapshot, not as an error.
var ErrUnavailable = errors.New("sample source unavailable")

// SampleProvider supplies raw health samples. All methods may return a
// wrapped provider failure; ErrNoData must be distinguishable from genuine
// failures via errors.Is.
type SampleProvider interface {
	// Available reports whether the sample source can be queried at all.
	Available(ctx context.Context) bool

	// SchemaVersion reports the provider's data schema version, used to
	// gate metrics that older schemas cannot answer.
	SchemaVersion(ctx context.Context) int

	// LatestValue returns the most recent sample value for a metric.
	LatestValue(ctx context.Context, metric models.Metric) (float64, error)

	// CumulativeToday returns the metric's sum from start of day to now.
	CumulativeToday(ctx context.Context, metric models.Metric) (float64, error)

	// IntervalSamples returns interval samples for a category inside the
	// window, ordered by start time.
	IntervalSamples(ctx context.Context, category models.Metric, start, end time.Time) ([]models.Sample, error)

	// Workouts returns up to limit workouts inside the window, newest
	// first.
	Workouts(ctx context.Context, start, end time.Time, limit int) ([]models.WorkoutRecord, error)
}

// IsNoData reports whether err is the benign no-samples response.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

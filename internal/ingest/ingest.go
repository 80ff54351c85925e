// Package ingest converts exported health payloads into sample rows and
// stores them.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/storage"
)

// Result holds the outcome of an ingest operation.
type Result struct {
	SamplesReceived int   `json:"samples_received"`
	SamplesInserted int64 `json:"samples_inserted"`
	SamplesSkipped  int64 `json:"samples_skipped"`
	SamplesDropped  int   `json:"samples_dropped"`

	WorkoutsReceived int   `json:"workouts_received,omitempty"`
	WorkoutsInserted int64 `json:"workouts_inserted,omitempty"`
}

// Processor stores parsed payloads.
type Processor struct {
	store storage.Store
	log   *slog.Logger
}

// New creates a Processor over a store.
func New(store storage.Store, log *slog.Logger) *Processor {
	return &Processor{store: store, log: log}
}

// Ingest converts a payload into sample and workout rows and batch-inserts
// them. Non-finite quantities and empty intervals are dropped, not stored.
func (p *Processor) Ingest(ctx context.Context, payload *Payload) (*Result, error) {
	result := &Result{}

	var samples []models.Sample
	for _, m := range payload.Data.Metrics {
		for _, dp := range m.Data {
			result.SamplesReceived++
			if math.IsNaN(dp.Qty) || math.IsInf(dp.Qty, 0) {
				result.SamplesDropped++
				continue
			}
			end := dp.Date.Time
			if dp.End != nil {
				end = dp.End.Time
			}
			samples = append(samples, models.Sample{
				Metric:     models.Metric(m.Name),
				Value:      dp.Qty,
				Start:      dp.Date.Time,
				End:        end,
				SourceName: dp.Source,
			})
		}
	}

	for _, s := range payload.Data.Sleep {
		result.SamplesReceived++
		if !s.EndDate.After(s.StartDate.Time) {
			result.SamplesDropped++
			continue
		}
		samples = append(samples, models.Sample{
			Metric:     models.CategorySleepAnalysis,
			Value:      float64(s.Stage),
			Start:      s.StartDate.Time,
			End:        s.EndDate.Time,
			SourceName: s.Source,
		})
	}

	if len(samples) > 0 {
		inserted, err := p.store.InsertSamples(ctx, samples)
		if err != nil {
			return result, fmt.Errorf("inserting samples: %w", err)
		}
		result.SamplesInserted = inserted
		result.SamplesSkipped = int64(len(samples)) - inserted
	}

	var workouts []models.WorkoutRecord
	for _, w := range payload.Data.Workouts {
		result.WorkoutsReceived++
		duration := w.End.Sub(w.Start.Time).Minutes()
		if duration <= 0 {
			p.log.Warn("skipping workout with non-positive duration", "activity_code", w.ActivityTypeCode)
			continue
		}
		workouts = append(workouts, models.WorkoutRecord{
			ActivityTypeCode: w.ActivityTypeCode,
			ActivityTypeName: models.ActivityTypeName(w.ActivityTypeCode),
			Start:            w.Start.Time,
			End:              w.End.Time,
			DurationMinutes:  duration,
			TotalEnergyKcal:  w.TotalEnergyKcal,
			TotalDistanceKm:  w.TotalDistanceKm,
		})
	}

	if len(workouts) > 0 {
		inserted, err := p.store.InsertWorkouts(ctx, workouts)
		if err != nil {
			return result, fmt.Errorf("inserting workouts: %w", err)
		}
		result.WorkoutsInserted = inserted
	}

	return result, nil
}

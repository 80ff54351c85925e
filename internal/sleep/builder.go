// Package sleep builds sleep summaries from raw sleep-analysis interval
// samples, with a long-lookback fallback when the primary window is empty.
package sleep

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/claude/vitalsnap/internal/cluster"
	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/provider"
)

const (
	// PrimaryWindow is the trailing window checked first for sleep data.
	PrimaryWindow = 36 * time.Hour

	// FallbackLookback is how far back the builder searches for the most
	// recent usable night when the primary window has none.
	FallbackLookback = 365 * 24 * time.Hour
)

// ScoreFunc derives a sleep score from stage minute totals. Kept as a
// separate function type so the scoring constants can be revisited without
// touching the builder.
type ScoreFunc func(asleep, awake, deep, rem float64) int

// DefaultScore is a heuristic display score, not a clinical measure. It
// centers the ideal sleep duration at 450 minutes, penalizes awake time
// heavily, rewards deep and REM sleep lightly, and clamps to 45–98.
func DefaultScore(asleep, awake, deep, rem float64) int {
	base := 95 -
		math.Abs(asleep-450)*0.08 -
		awake*0.45 +
		deep*0.03 +
		rem*0.02
	return int(math.Round(math.Min(98, math.Max(45, base))))
}

// Builder produces sleep summaries from a sample provider.
type Builder struct {
	Provider provider.SampleProvider
	Score    ScoreFunc
}

// New returns a Builder using the default scoring function.
func New(p provider.SampleProvider) *Builder {
	return &Builder{Provider: p, Score: DefaultScore}
}

// Build returns the sleep summary for the primary window ending at now, or
// the most recent usable night inside the fallback lookback. A nil summary
// with nil error means no usable sleep data exists anywhere; callers omit
// the section rather than reporting a zero score.
func (b *Builder) Build(ctx context.Context, now time.Time) (*models.SleepSummary, error) {
	schema := b.Provider.SchemaVersion(ctx)

	primary, err := b.segments(ctx, schema, now.Add(-PrimaryWindow), now)
	if err != nil {
		return nil, err
	}
	if s := b.summarize(primary, models.ScoreSourceToday); s != nil {
		return s, nil
	}

	// No asleep minutes in the primary window: search the long lookback,
	// newest night first.
	history, err := b.segments(ctx, schema, now.Add(-FallbackLookback), now)
	if err != nil {
		return nil, err
	}
	nights := cluster.Segments(history, cluster.HistoryGap)
	for i := len(nights) - 1; i >= 0; i-- {
		if s := b.summarize(nights[i], models.ScoreSourceLatestAvailable); s != nil {
			return s, nil
		}
	}
	return nil, nil
}

// segments queries interval samples and converts them to stage segments,
// dropping zero-duration intervals. A NoData response yields an empty slice.
func (b *Builder) segments(ctx context.Context, schema int, start, end time.Time) ([]models.IntervalSegment, error) {
	samples, err := b.Provider.IntervalSamples(ctx, models.CategorySleepAnalysis, start, end)
	if err != nil {
		if provider.IsNoData(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying sleep samples: %w", err)
	}

	segs := make([]models.IntervalSegment, 0, len(samples))
	for _, s := range samples {
		stage := models.StageForCode(schema, int(s.Value))
		if seg, ok := models.NewIntervalSegment(stage, s.Start, s.End); ok {
			segs = append(segs, seg)
		}
	}
	return segs, nil
}

// summarize totals the segments into a summary, or returns nil when they
// contain no asleep minutes.
func (b *Builder) summarize(segs []models.IntervalSegment, source models.ScoreSource) *models.SleepSummary {
	if len(segs) == 0 {
		return nil
	}

	stageMinutes := make(map[models.Stage]float64)
	var asleep, awake, inBed float64
	for _, seg := range segs {
		stageMinutes[seg.Stage] += seg.DurationMinutes
		switch {
		case seg.Stage.Asleep():
			asleep += seg.DurationMinutes
		case seg.Stage == models.StageAwake:
			awake += seg.DurationMinutes
		case seg.Stage == models.StageInBed:
			inBed += seg.DurationMinutes
		}
	}
	if asleep <= 0 {
		return nil
	}

	score := b.Score
	if score == nil {
		score = DefaultScore
	}

	return &models.SleepSummary{
		StageMinutes:  stageMinutes,
		AsleepMinutes: asleep,
		AwakeMinutes:  awake,
		InBedMinutes:  inBed,
		SampleCount:   len(segs),
		SleepScore:    score(asleep, awake, stageMinutes[models.StageAsleepDeep], stageMinutes[models.StageAsleepREM]),
		ScoreSource:   source,
		Segments:      segs,
	}
}

// MainBlock returns the block with the most asleep minutes after clustering
// the summary's segments with the tight main-sleep tolerance. Used to report
// the night's start and end times.
func MainBlock(s *models.SleepSummary) (models.SleepBlock, bool) {
	if s == nil || len(s.Segments) == 0 {
		return models.SleepBlock{}, false
	}
	var best models.SleepBlock
	found := false
	for _, c := range cluster.Segments(s.Segments, cluster.MainSleepGap) {
		b := cluster.Block(c)
		if !found || b.AsleepMinutes > best.AsleepMinutes {
			best = b
			found = true
		}
	}
	if !found || best.AsleepMinutes <= 0 {
		return models.SleepBlock{}, false
	}
	return best, true
}

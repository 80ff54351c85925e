// Package snapshot fans out one query per metric against the sample
// provider and assembles the results into a single immutable snapshot.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/vitalsnap/internal/apnea"
	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/numeric"
	"github.com/claude/vitalsnap/internal/provider"
	"github.com/claude/vitalsnap/internal/sleep"
)

const (
	// DefaultQueryTimeout bounds each fanned-out query so a provider that
	// never answers cannot stall the join forever.
	DefaultQueryTimeout = 30 * time.Second

	workoutWindow = 7 * 24 * time.Hour
	workoutLimit  = 10
)

// Aggregator orchestrates the concurrent metric queries behind one
// snapshot. Safe for concurrent use; each call owns its own state.
type Aggregator struct {
	provider     provider.SampleProvider
	sleep        *sleep.Builder
	log          *slog.Logger
	queryTimeout time.Duration
	moveGoalKcal float64
	now          func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithQueryTimeout overrides the per-query timeout.
func WithQueryTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.queryTimeout = d }
}

// WithMoveGoal sets the daily active-energy goal used for the activity goal
// summary. Zero disables the goal keys.
func WithMoveGoal(kcal float64) Option {
	return func(a *Aggregator) { a.moveGoalKcal = kcal }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New creates an Aggregator over a sample provider.
func New(p provider.SampleProvider, log *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		provider:     p,
		sleep:        sleep.New(p),
		log:          log,
		queryTimeout: DefaultQueryTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Snapshot runs every metric query concurrently and assembles one snapshot.
// Callers get either a complete snapshot or a single error: the first
// genuine query failure aborts the whole call. Benign no-data responses
// leave their key absent, and capability-gated metrics a provider cannot
// answer become notes instead of queries.
func (a *Aggregator) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	now := a.now()

	if !a.provider.Available(ctx) {
		a.log.Warn("sample source unavailable, returning unauthorized snapshot")
		return &models.Snapshot{
			ID:          uuid.New(),
			Authorized:  false,
			GeneratedAt: now,
			Note:        "health data source is not available on this host",
		}, nil
	}

	schema := a.provider.SchemaVersion(ctx)
	st := newAggState()

	var wg sync.WaitGroup
	for _, q := range metricQueries {
		if q.minSchema > schema {
			st.note(fmt.Sprintf("%s requires provider schema >= %d, skipped", q.key, q.minSchema))
			continue
		}
		wg.Add(1)
		go func(q metricQuery) {
			defer wg.Done()
			a.runMetricQuery(ctx, st, q)
		}(q)
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		a.runSleepQuery(ctx, st, now)
	}()
	go func() {
		defer wg.Done()
		a.runApneaQuery(ctx, st, now)
	}()
	go func() {
		defer wg.Done()
		a.runActivityGoalQuery(ctx, st)
	}()
	go func() {
		defer wg.Done()
		a.runWorkoutQuery(ctx, st, now)
	}()

	wg.Wait()

	if st.firstErr != nil {
		return nil, st.firstErr
	}

	snap := &models.Snapshot{
		ID:          uuid.New(),
		Authorized:  true,
		GeneratedAt: now,
		Workouts:    st.workouts,
	}
	if len(st.notes) > 0 {
		sort.Strings(st.notes)
		snap.Note = strings.Join(st.notes, "; ")
	}
	for section, keys := range st.sections {
		if len(keys) == 0 {
			continue
		}
		if snap.Sections == nil {
			snap.Sections = make(map[models.Section]map[string]any)
		}
		snap.Sections[section] = keys
	}
	return snap, nil
}

func (a *Aggregator) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.queryTimeout)
}

func (a *Aggregator) runMetricQuery(ctx context.Context, st *aggState, q metricQuery) {
	qctx, cancel := a.queryCtx(ctx)
	defer cancel()

	var value float64
	var err error
	if q.cumulative {
		value, err = a.provider.CumulativeToday(qctx, q.metric)
	} else {
		value, err = a.provider.LatestValue(qctx, q.metric)
	}
	if err != nil {
		if provider.IsNoData(err) {
			return
		}
		a.log.Error("metric query failed", "metric", q.metric, "error", err)
		st.fail(fmt.Errorf("querying %s: %w", q.metric, err))
		return
	}

	if q.transform != nil {
		value = q.transform(value)
	}
	st.put(q.section, q.key, numeric.Round(value, 2))
}

func (a *Aggregator) runSleepQuery(ctx context.Context, st *aggState, now time.Time) {
	qctx, cancel := a.queryCtx(ctx)
	defer cancel()

	summary, err := a.sleep.Build(qctx, now)
	if err != nil {
		st.fail(err)
		return
	}
	if summary == nil {
		return
	}

	st.put(models.SectionSleep, "sleepScore", summary.SleepScore)
	st.put(models.SectionSleep, "scoreSource", string(summary.ScoreSource))
	st.put(models.SectionSleep, "asleepMinutes", numeric.Round(summary.AsleepMinutes, 2))
	st.put(models.SectionSleep, "awakeMinutes", numeric.Round(summary.AwakeMinutes, 2))
	st.put(models.SectionSleep, "inBedMinutes", numeric.Round(summary.InBedMinutes, 2))
	st.put(models.SectionSleep, "coreMinutes", numeric.Round(summary.StageMinutes[models.StageAsleepCore], 2))
	st.put(models.SectionSleep, "deepMinutes", numeric.Round(summary.StageMinutes[models.StageAsleepDeep], 2))
	st.put(models.SectionSleep, "remMinutes", numeric.Round(summary.StageMinutes[models.StageAsleepREM], 2))
	st.put(models.SectionSleep, "sampleCount", summary.SampleCount)

	if block, ok := sleep.MainBlock(summary); ok {
		st.put(models.SectionSleep, "sleepStart", block.Start.Format(time.RFC3339))
		st.put(models.SectionSleep, "sleepEnd", block.End.Format(time.RFC3339))
	}
}

func (a *Aggregator) runApneaQuery(ctx context.Context, st *aggState, now time.Time) {
	qctx, cancel := a.queryCtx(ctx)
	defer cancel()

	summary, err := apnea.Summarize(qctx, a.provider, now)
	if err != nil {
		st.fail(err)
		return
	}

	st.put(models.SectionSleep, "apneaRiskLevel", string(summary.RiskLevel))
	st.put(models.SectionSleep, "apneaEventCount30d", summary.EventCount)
	st.put(models.SectionSleep, "apneaTotalMinutes30d", summary.TotalMinutes)
	st.put(models.SectionSleep, "apneaReminder", summary.Reminder)
	if summary.LatestEvent != nil {
		st.put(models.SectionSleep, "apneaLatestEvent", summary.LatestEvent.Format(time.RFC3339))
	}
}

// runActivityGoalQuery derives move-goal progress from the day's active
// energy. Disabled when no goal is configured.
func (a *Aggregator) runActivityGoalQuery(ctx context.Context, st *aggState) {
	if a.moveGoalKcal <= 0 {
		return
	}

	qctx, cancel := a.queryCtx(ctx)
	defer cancel()

	active, err := a.provider.CumulativeToday(qctx, models.MetricActiveEnergy)
	if err != nil {
		if provider.IsNoData(err) {
			return
		}
		st.fail(fmt.Errorf("querying activity goal: %w", err))
		return
	}

	st.put(models.SectionActivity, "moveGoalKcal", numeric.Round(a.moveGoalKcal, 2))
	st.put(models.SectionActivity, "moveProgressPercent", numeric.Round(active/a.moveGoalKcal*100, 2))
}

func (a *Aggregator) runWorkoutQuery(ctx context.Context, st *aggState, now time.Time) {
	qctx, cancel := a.queryCtx(ctx)
	defer cancel()

	workouts, err := a.provider.Workouts(qctx, now.Add(-workoutWindow), now, workoutLimit)
	if err != nil {
		if provider.IsNoData(err) {
			return
		}
		st.fail(fmt.Errorf("querying workouts: %w", err))
		return
	}
	if len(workouts) > 0 {
		st.setWorkouts(workouts)
	}
}

package sleep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/provider"
)

// fakeProvider implements provider.SampleProvider with a pluggable interval
// query; the non-interval methods report no data.
type fakeProvider struct {
	schema    int
	intervals func(category models.Metric, start, end time.Time) ([]models.Sample, error)
}

func (f *fakeProvider) Available(context.Context) bool      { return true }
func (f *fakeProvider) SchemaVersion(context.Context) int   { return f.schema }
func (f *fakeProvider) LatestValue(context.Context, models.Metric) (float64, error) {
	return 0, provider.ErrNoData
}
func (f *fakeProvider) CumulativeToday(context.Context, models.Metric) (float64, error) {
	return 0, provider.ErrNoData
}
func (f *fakeProvider) IntervalSamples(_ context.Context, category models.Metric, start, end time.Time) ([]models.Sample, error) {
	return f.intervals(category, start, end)
}
func (f *fakeProvider) Workouts(context.Context, time.Time, time.Time, int) ([]models.WorkoutRecord, error) {
	return nil, provider.ErrNoData
}

var now = time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

// sleepSample builds a sleep-analysis sample with the given stage code over
// [start, start+minutes).
func sleepSample(code int, start time.Time, minutes int) models.Sample {
	return models.Sample{
		Metric: models.CategorySleepAnalysis,
		Value:  float64(code),
		Start:  start,
		End:    start.Add(time.Duration(minutes) * time.Minute),
	}
}

// TestBuildPrimaryWindow verifies that a night inside the primary window
// produces a summary tagged "today" with the expected stage totals.
func TestBuildPrimaryWindow(t *testing.T) {
	night := now.Add(-10 * time.Hour)
	samples := []models.Sample{
		sleepSample(0, night, 15),                     // in bed
		sleepSample(3, night.Add(15*time.Minute), 240), // core
		sleepSample(2, night.Add(255*time.Minute), 15), // awake
		sleepSample(4, night.Add(270*time.Minute), 60), // deep
		sleepSample(5, night.Add(330*time.Minute), 90), // rem
	}
	p := &fakeProvider{schema: 2, intervals: func(_ models.Metric, start, _ time.Time) ([]models.Sample, error) {
		return samples, nil
	}}

	s, err := New(p).Build(context.Background(), now)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if s == nil {
		t.Fatal("expected a summary")
	}
	if s.ScoreSource != models.ScoreSourceToday {
		t.Errorf("ScoreSource = %q, want %q", s.ScoreSource, models.ScoreSourceToday)
	}
	if s.AsleepMinutes != 390 {
		t.Errorf("AsleepMinutes = %v, want 390", s.AsleepMinutes)
	}
	if s.AwakeMinutes != 15 {
		t.Errorf("AwakeMinutes = %v, want 15", s.AwakeMinutes)
	}
	if s.InBedMinutes != 15 {
		t.Errorf("InBedMinutes = %v, want 15", s.InBedMinutes)
	}
	if s.SampleCount != 5 {
		t.Errorf("SampleCount = %d, want 5", s.SampleCount)
	}
	// base = 95 - |390-450|*0.08 - 15*0.45 + 60*0.03 + 90*0.02 = 87.05
	if s.SleepScore != 87 {
		t.Errorf("SleepScore = %d, want 87", s.SleepScore)
	}
}

// TestBuildFallbackPicksMostRecentUsableNight verifies the fallback scan:
// with an empty primary window and history nights [usable day-5, unusable
// day-1], the builder must skip the newer unusable night and accept the
// day-5 night, tagged latestAvailable.
func TestBuildFallbackPicksMostRecentUsableNight(t *testing.T) {
	unusableOld := now.AddDate(0, 0, -10)
	usable := now.AddDate(0, 0, -5)
	unusableNew := now.AddDate(0, 0, -2) // outside the 36h primary window

	history := []models.Sample{
		// day-10: in-bed only, no asleep minutes
		sleepSample(0, unusableOld, 60),
		// day-5: a real night
		sleepSample(1, usable, 120),
		// day-2: awake segments only
		sleepSample(2, unusableNew, 30),
	}
	p := &fakeProvider{schema: 2, intervals: func(_ models.Metric, start, _ time.Time) ([]models.Sample, error) {
		if now.Sub(start) <= PrimaryWindow {
			return nil, provider.ErrNoData
		}
		return history, nil
	}}

	s, err := New(p).Build(context.Background(), now)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if s == nil {
		t.Fatal("expected a fallback summary")
	}
	if s.ScoreSource != models.ScoreSourceLatestAvailable {
		t.Errorf("ScoreSource = %q, want %q", s.ScoreSource, models.ScoreSourceLatestAvailable)
	}
	if s.AsleepMinutes != 120 {
		t.Errorf("AsleepMinutes = %v, want 120 (the day-5 night)", s.AsleepMinutes)
	}
	if len(s.Segments) != 1 || !s.Segments[0].Start.Equal(usable) {
		t.Errorf("accepted segments = %+v, want the single day-5 segment", s.Segments)
	}
}

// TestBuildNoUsableData verifies that when neither window yields asleep
// minutes the builder reports no summary instead of a zero score.
func TestBuildNoUsableData(t *testing.T) {
	p := &fakeProvider{schema: 2, intervals: func(_ models.Metric, start, _ time.Time) ([]models.Sample, error) {
		if now.Sub(start) <= PrimaryWindow {
			return nil, provider.ErrNoData
		}
		// History has only awake/in-bed intervals.
		return []models.Sample{
			sleepSample(0, now.AddDate(0, 0, -3), 45),
			sleepSample(2, now.AddDate(0, 0, -3).Add(45*time.Minute), 20),
		}, nil
	}}

	s, err := New(p).Build(context.Background(), now)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if s != nil {
		t.Fatalf("expected no summary, got %+v", s)
	}
}

// TestBuildProviderFailure verifies a genuine provider failure propagates
// instead of being treated as absence.
func TestBuildProviderFailure(t *testing.T) {
	boom := errors.New("permission revoked")
	p := &fakeProvider{schema: 2, intervals: func(models.Metric, time.Time, time.Time) ([]models.Sample, error) {
		return nil, boom
	}}

	_, err := New(p).Build(context.Background(), now)
	if !errors.Is(err, boom) {
		t.Fatalf("Build error = %v, want wrapped %v", err, boom)
	}
}

// TestDefaultScoreValues pins the scoring formula to known inputs.
func TestDefaultScoreValues(t *testing.T) {
	cases := []struct {
		asleep, awake, deep, rem float64
		want                     int
	}{
		{450, 0, 0, 0, 95},
		{450, 200, 0, 0, 45},  // heavy fragmentation clamps to the floor
		{450, 0, 100, 100, 98}, // bonus clamps to the ceiling
		{390, 20, 60, 90, 85},  // 95 - 4.8 - 9 + 1.8 + 1.8 = 84.8
	}
	for _, tc := range cases {
		got := DefaultScore(tc.asleep, tc.awake, tc.deep, tc.rem)
		if got != tc.want {
			t.Errorf("DefaultScore(%v, %v, %v, %v) = %d, want %d",
				tc.asleep, tc.awake, tc.deep, tc.rem, got, tc.want)
		}
	}
}

// TestDefaultScoreBounds verifies the 45–98 clamp over a grid of inputs.
func TestDefaultScoreBounds(t *testing.T) {
	for asleep := 0.0; asleep <= 960; asleep += 120 {
		for awake := 0.0; awake <= 240; awake += 60 {
			for deep := 0.0; deep <= 240; deep += 120 {
				got := DefaultScore(asleep, awake, deep, deep/2)
				if got < 45 || got > 98 {
					t.Fatalf("DefaultScore(%v, %v, %v, %v) = %d, outside [45, 98]",
						asleep, awake, deep, deep/2, got)
				}
			}
		}
	}
}

// TestMainBlock verifies the main-sleep-block pick: given a short nap and a
// long night separated by well over the tight gap tolerance, the night wins.
func TestMainBlock(t *testing.T) {
	napStart := now.Add(-20 * time.Hour)
	nightStart := now.Add(-9 * time.Hour)
	s := &models.SleepSummary{
		AsleepMinutes: 450,
		Segments: []models.IntervalSegment{
			mustSegment(t, models.StageAsleepUnspecified, napStart, 40),
			mustSegment(t, models.StageAsleepCore, nightStart, 300),
			mustSegment(t, models.StageAsleepDeep, nightStart.Add(300*time.Minute), 110),
		},
	}

	block, ok := MainBlock(s)
	if !ok {
		t.Fatal("expected a main block")
	}
	if !block.Start.Equal(nightStart) {
		t.Errorf("block start = %v, want %v", block.Start, nightStart)
	}
	if block.AsleepMinutes != 410 {
		t.Errorf("block asleep minutes = %v, want 410", block.AsleepMinutes)
	}
}

func mustSegment(t *testing.T, stage models.Stage, start time.Time, minutes int) models.IntervalSegment {
	t.Helper()
	seg, ok := models.NewIntervalSegment(stage, start, start.Add(time.Duration(minutes)*time.Minute))
	if !ok {
		t.Fatal("segment rejected")
	}
	return seg
}

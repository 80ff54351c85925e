package models

import (
	"time"

	"github.com/google/uuid"
)

// Sample is a single raw observation from the sample provider. End equals
// Start for instantaneous readings. Immutable once returned.
type Sample struct {
	Metric     Metric    `json:"metric"`
	Value      float64   `json:"value"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	SourceName string    `json:"source_name,omitempty"`
}

// IntervalSegment is one interval-bearing sample translated into a sleep
// stage segment. Segments with non-positive duration are discarded upstream.
type IntervalSegment struct {
	Stage           Stage     `json:"stage"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// NewIntervalSegment builds a segment from a raw interval. Returns false when
// the interval has no positive duration.
func NewIntervalSegment(stage Stage, start, end time.Time) (IntervalSegment, bool) {
	mins := end.Sub(start).Minutes()
	if mins <= 0 {
		return IntervalSegment{}, false
	}
	return IntervalSegment{Stage: stage, Start: start, End: end, DurationMinutes: mins}, true
}

// SleepBlock is a contiguous cluster of interval segments (one "night").
type SleepBlock struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AsleepMinutes float64   `json:"asleep_minutes"`
	AwakeMinutes  float64   `json:"awake_minutes"`
	InBedMinutes  float64   `json:"in_bed_minutes"`
	TotalMinutes  float64   `json:"total_minutes"`
}

// ScoreSource tags which window supplied a sleep summary's data.
type ScoreSource string

const (
	ScoreSourceToday           ScoreSource = "today"
	ScoreSourceLatestAvailable ScoreSource = "latestAvailable"
)

// SleepSummary aggregates sleep stage data over one window.
type SleepSummary struct {
	StageMinutes  map[Stage]float64 `json:"stage_minutes"`
	AsleepMinutes float64           `json:"asleep_minutes"`
	AwakeMinutes  float64           `json:"awake_minutes"`
	InBedMinutes  float64           `json:"in_bed_minutes"`
	SampleCount   int               `json:"sample_count"`
	SleepScore    int               `json:"sleep_score"`
	ScoreSource   ScoreSource       `json:"score_source"`
	Segments      []IntervalSegment `json:"segments,omitempty"`
}

// ApneaRisk is the classified risk tier for breathing disturbance events.
type ApneaRisk string

const (
	ApneaRiskNone  ApneaRisk = "none"
	ApneaRiskWatch ApneaRisk = "watch"
	ApneaRiskHigh  ApneaRisk = "high"
)

// ApneaSummary aggregates breathing disturbance events over a fixed lookback.
type ApneaSummary struct {
	EventCount   int        `json:"event_count"`
	TotalMinutes float64    `json:"total_minutes"`
	RiskLevel    ApneaRisk  `json:"risk_level"`
	Reminder     string     `json:"reminder"`
	LatestEvent  *time.Time `json:"latest_event,omitempty"`
}

// Snapshot is the unified aggregation result. Sections with no populated
// keys are omitted; every numeric leaf value is finite. Constructed once per
// aggregation call and never mutated afterward.
type Snapshot struct {
	ID          uuid.UUID                  `json:"id"`
	Authorized  bool                       `json:"authorized"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Note        string                     `json:"note,omitempty"`
	Sections    map[Section]map[string]any `json:"sections,omitempty"`
	Workouts    []WorkoutRecord            `json:"workouts,omitempty"`
}

// WorkoutRecord is one recorded workout.
type WorkoutRecord struct {
	ID               uuid.UUID `json:"id"`
	ActivityTypeCode int       `json:"activity_type_code"`
	ActivityTypeName string    `json:"activity_type_name"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	DurationMinutes  float64   `json:"duration_minutes"`
	TotalEnergyKcal  *float64  `json:"total_energy_kcal,omitempty"`
	TotalDistanceKm  *float64  `json:"total_distance_km,omitempty"`
}

package ingest

import (
	"encoding/json"
	"fmt"
	"time"
)

// VSTime is a timestamp in an export payload. Exporters disagree on the
// format, so parsing walks vsTimeLayouts in order; serialization always
// uses the first layout.
type VSTime struct {
	time.Time
}

// vsTimeLayouts, most specific first. Full export datetime, date-only for
// exporters that truncate, then RFC 3339 as the general fallback.
var vsTimeLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02",
	time.RFC3339,
}

func (t *VSTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.Parse(s)
}

func (t VSTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(vsTimeLayouts[0]))
}

// Parse parses an export time string against the known layouts.
func (t *VSTime) Parse(s string) error {
	for _, layout := range vsTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("time %q matches no known export layout", s)
}

// Payload is the top-level ingest JSON structure.
type Payload struct {
	Data PayloadData `json:"data"`
}

// PayloadData contains the arrays of health data.
type PayloadData struct {
	Metrics  []MetricEntry  `json:"metrics"`
	Sleep    []SleepEntry   `json:"sleep"`
	Workouts []WorkoutEntry `json:"workouts"`
}

// MetricEntry is a single metric with its data points.
type MetricEntry struct {
	Name  string            `json:"name"`
	Units string            `json:"units"`
	Data  []MetricDataPoint `json:"data"`
}

// MetricDataPoint is one quantity reading. End is optional; instantaneous
// readings carry only a date.
type MetricDataPoint struct {
	Date   VSTime  `json:"date"`
	End    *VSTime `json:"end,omitempty"`
	Qty    float64 `json:"qty"`
	Source string  `json:"source,omitempty"`
}

// SleepEntry is one sleep-analysis interval with its raw stage code.
type SleepEntry struct {
	StartDate VSTime `json:"startDate"`
	EndDate   VSTime `json:"endDate"`
	Stage     int    `json:"stage"`
	Source    string `json:"source,omitempty"`
}

// WorkoutEntry is one workout.
type WorkoutEntry struct {
	ActivityTypeCode int      `json:"activityTypeCode"`
	Start            VSTime   `json:"start"`
	End              VSTime   `json:"end"`
	TotalEnergyKcal  *float64 `json:"totalEnergyKcal,omitempty"`
	TotalDistanceKm  *float64 `json:"totalDistanceKm,omitempty"`
}

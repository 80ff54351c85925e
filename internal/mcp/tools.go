package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/vitalsnap/internal/apnea"
	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/provider"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func marshalJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// --- Tool definitions ---

var toolGetSnapshot = mcp.NewTool("get_snapshot",
	mcp.WithDescription("Assemble the unified health snapshot: activity totals for today, the sleep summary with score, heart/oxygen/metabolic readings, breathing disturbance risk, and recent workouts. Skipped metrics are listed in the note field."),
)

var toolGetSleepSummary = mcp.NewTool("get_sleep_summary",
	mcp.WithDescription("Build the most recent night's sleep summary: per-stage minutes, the 45-98 sleep score, and whether the data came from last night or an earlier night."),
)

var toolGetApneaRisk = mcp.NewTool("get_apnea_risk",
	mcp.WithDescription("Classify breathing disturbance events from the last 30 days into a none/watch/high risk tier. Not a medical diagnosis."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("List workouts in a time range with duration, energy, and distance."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithNumber("limit", mcp.Description("Maximum workouts to return. Defaults to 50.")),
)

// --- Tool handlers ---

func (h *handlers) getSnapshot(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.agg.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp get_snapshot", "error", err)
		return mcp.NewToolResultError("snapshot failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(snap)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSleepSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := h.sleep.Build(ctx, time.Now())
	if err != nil {
		h.log.Error("mcp get_sleep_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if summary == nil {
		return mcp.NewToolResultText("no sleep data recorded"), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getApneaRisk(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := apnea.Summarize(ctx, h.store, time.Now())
	if err != nil {
		h.log.Error("mcp get_apnea_risk", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	limit := req.GetInt("limit", 50)
	if limit < 1 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}

	workouts, err := h.store.Workouts(ctx, start, end, limit)
	if err != nil && !provider.IsNoData(err) {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if workouts == nil {
		workouts = []models.WorkoutRecord{}
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

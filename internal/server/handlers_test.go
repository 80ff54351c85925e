package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/provider"
	"github.com/claude/vitalsnap/internal/snapshot"
)

// fakeStore is an in-memory storage.Store for handler tests.
type fakeStore struct {
	available  bool
	schema     int
	latest     map[models.Metric]float64
	cumulative map[models.Metric]float64
	intervals  []models.Sample
	workouts   []models.WorkoutRecord
	samples    []models.Sample
}

func (f *fakeStore) Available(context.Context) bool    { return f.available }
func (f *fakeStore) SchemaVersion(context.Context) int { return f.schema }

func (f *fakeStore) LatestValue(_ context.Context, metric models.Metric) (float64, error) {
	v, ok := f.latest[metric]
	if !ok {
		return 0, provider.ErrNoData
	}
	return v, nil
}

func (f *fakeStore) CumulativeToday(_ context.Context, metric models.Metric) (float64, error) {
	v, ok := f.cumulative[metric]
	if !ok {
		return 0, provider.ErrNoData
	}
	return v, nil
}

func (f *fakeStore) IntervalSamples(_ context.Context, category models.Metric, start, end time.Time) ([]models.Sample, error) {
	var out []models.Sample
	for _, s := range f.intervals {
		if s.Metric == category && s.Start.Before(end) && s.End.After(start) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, provider.ErrNoData
	}
	return out, nil
}

func (f *fakeStore) Workouts(_ context.Context, start, end time.Time, limit int) ([]models.WorkoutRecord, error) {
	if len(f.workouts) == 0 {
		return nil, provider.ErrNoData
	}
	if limit > 0 && len(f.workouts) > limit {
		return f.workouts[:limit], nil
	}
	return f.workouts, nil
}

func (f *fakeStore) InsertSamples(_ context.Context, rows []models.Sample) (int64, error) {
	f.samples = append(f.samples, rows...)
	return int64(len(rows)), nil
}

func (f *fakeStore) InsertWorkouts(_ context.Context, rows []models.WorkoutRecord) (int64, error) {
	f.workouts = append(f.workouts, rows...)
	return int64(len(rows)), nil
}

func (f *fakeStore) Close() {}

func newTestServer(store *fakeStore) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	agg := snapshot.New(store, log)
	return New(store, agg, nil, "test-key", log)
}

// TestHealthz verifies the liveness endpoint.
func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeStore{available: true, schema: 2})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestIngestRequiresAPIKey verifies the ingest route is gated on the key.
func TestIngestRequiresAPIKey(t *testing.T) {
	srv := newTestServer(&fakeStore{available: true, schema: 2})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(`{"data":{}}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestIngestPayload verifies a valid payload is stored and counted.
func TestIngestPayload(t *testing.T) {
	store := &fakeStore{available: true, schema: 2}
	srv := newTestServer(store)

	body := `{"data":{"metrics":[{"name":"steps","units":"count","data":[{"date":"2025-03-01 08:00:00 +0000","qty":512}]}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(body))
	req.Header.Set("X-API-Key", "test-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result struct {
		SamplesInserted int64 `json:"samples_inserted"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.SamplesInserted != 1 {
		t.Errorf("samples_inserted = %d, want 1", result.SamplesInserted)
	}
	if len(store.samples) != 1 {
		t.Errorf("stored %d samples, want 1", len(store.samples))
	}
}

// TestIngestBadJSON verifies malformed payloads get 400.
func TestIngestBadJSON(t *testing.T) {
	srv := newTestServer(&fakeStore{available: true, schema: 2})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(`{not json`))
	req.Header.Set("X-API-Key", "test-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestSnapshotEndpoint verifies the snapshot handler returns an assembled
// snapshot with data from the store.
func TestSnapshotEndpoint(t *testing.T) {
	store := &fakeStore{
		available:  true,
		schema:     2,
		cumulative: map[models.Metric]float64{models.MetricSteps: 8342},
	}
	srv := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var snap models.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if !snap.Authorized {
		t.Error("snapshot not authorized")
	}
	activity, ok := snap.Sections[models.SectionActivity]
	if !ok {
		t.Fatal("activity section missing")
	}
	if got := activity["stepsToday"]; got != 8342.0 {
		t.Errorf("stepsToday = %v, want 8342", got)
	}
}

// TestAuthorizeEndpoint verifies the authorization check reflects store
// availability.
func TestAuthorizeEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{available: true, schema: 2})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/authorize", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Authorized    bool `json:"authorized"`
		SchemaVersion int  `json:"schemaVersion"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Authorized || resp.SchemaVersion != 2 {
		t.Errorf("resp = %+v, want authorized with schema 2", resp)
	}
}

// TestSleepSummaryNoData verifies 404 when no sleep samples exist at all.
func TestSleepSummaryNoData(t *testing.T) {
	srv := newTestServer(&fakeStore{available: true, schema: 2})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sleep/summary", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestApneaEndpoint verifies the apnea handler reports the no-events tier
// when the store has no apnea samples.
func TestApneaEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{available: true, schema: 2})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/apnea", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var summary models.ApneaSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if summary.RiskLevel != models.ApneaRiskNone {
		t.Errorf("risk = %q, want %q", summary.RiskLevel, models.ApneaRiskNone)
	}
}

// TestWorkoutsEndpoint verifies workouts are listed and an empty store
// yields an empty array rather than an error.
func TestWorkoutsEndpoint(t *testing.T) {
	start := time.Now().Add(-2 * time.Hour)
	store := &fakeStore{
		available: true,
		schema:    2,
		workouts: []models.WorkoutRecord{{
			ActivityTypeCode: 37,
			ActivityTypeName: "Running",
			Start:            start,
			End:              start.Add(45 * time.Minute),
			DurationMinutes:  45,
		}},
	}
	srv := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var workouts []models.WorkoutRecord
	if err := json.NewDecoder(rec.Body).Decode(&workouts); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(workouts) != 1 || workouts[0].ActivityTypeName != "Running" {
		t.Errorf("workouts = %+v", workouts)
	}

	// Empty store: still 200 with [].
	srv = newTestServer(&fakeStore{available: true, schema: 2})
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workouts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("empty store status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("empty store body = %q, want []", body)
	}
}

// TestParseTimeRangeEndOnly verifies an explicit end without a start bounds
// the default 7-day window at that end, not at now.
func TestParseTimeRangeEndOnly(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts?end=2025-02-01T00:00:00Z", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantEnd := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
	if !start.Equal(wantEnd.AddDate(0, 0, -7)) {
		t.Errorf("start = %v, want 7 days before end", start)
	}

	// Date-only end rolls to the end of that day.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/workouts?end=2025-02-01", nil)
	_, end, err = parseTimeRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !end.Equal(wantEnd.Add(24 * time.Hour)) {
		t.Errorf("date-only end = %v, want %v", end, wantEnd.Add(24*time.Hour))
	}
}

// TestWorkoutsInvalidLimit verifies limit validation.
func TestWorkoutsInvalidLimit(t *testing.T) {
	srv := newTestServer(&fakeStore{available: true, schema: 2})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts?limit=zero", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

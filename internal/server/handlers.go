package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/vitalsnap/internal/apnea"
	"github.com/claude/vitalsnap/internal/ingest"
	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/provider"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var payload ingest.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.proc.Ingest(r.Context(), &payload)
	if err != nil {
		s.log.Error("ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.cache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if cached := s.cache.GetSnapshot(r.Context()); cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	snap, err := s.agg.Snapshot(r.Context())
	if err != nil {
		s.log.Error("snapshot error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.cache.PutSnapshot(r.Context(), snap)
	writeJSON(w, http.StatusOK, snap)
}

// handleAuthorize reports whether the sample source can be queried, mirroring
// a health-store authorization check. There is nothing to grant server-side;
// the response tells the client whether snapshots will carry data.
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	authorized := s.store.Available(r.Context())
	resp := map[string]any{"authorized": authorized}
	if authorized {
		resp["schemaVersion"] = s.store.SchemaVersion(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSleepSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.sleep.Build(r.Context(), time.Now())
	if err != nil {
		s.log.Error("sleep summary error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no sleep data"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleApnea(w http.ResponseWriter, r *http.Request) {
	summary, err := apnea.Summarize(r.Context(), s.store, time.Now())
	if err != nil {
		s.log.Error("apnea summary error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
	}

	workouts, err := s.store.Workouts(r.Context(), start, end, limit)
	if err != nil && !provider.IsNoData(err) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.WorkoutRecord{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}

	if startStr == "" {
		// Default: the 7 days leading up to end
		start = end.AddDate(0, 0, -7)
		return
	}
	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return
}

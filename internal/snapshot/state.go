package snapshot

import (
	"sync"

	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/numeric"
)

// aggState is the shared mutable state of one aggregation call: section
// maps, the first recorded error, soft notes, and the workout list. It is
// created fresh per call, mutated only under mu, and discarded once the
// snapshot is assembled.
type aggState struct {
	mu       sync.Mutex
	sections map[models.Section]map[string]any
	firstErr error
	notes    []string
	workouts []models.WorkoutRecord
}

func newAggState() *aggState {
	return &aggState{sections: make(map[models.Section]map[string]any)}
}

// put merges one key/value pair into a section. Values that are not
// bridge-safe (non-finite numerics, unsupported types) are dropped.
func (st *aggState) put(section models.Section, key string, value any) {
	if !numeric.IsBridgeSafe(value) {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	m, ok := st.sections[section]
	if !ok {
		m = make(map[string]any)
		st.sections[section] = m
	}
	m[key] = value
}

// fail records a genuine query failure. The first error wins; later ones
// are dropped.
func (st *aggState) fail(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.firstErr == nil {
		st.firstErr = err
	}
}

// note appends a soft informational note.
func (st *aggState) note(msg string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.notes = append(st.notes, msg)
}

// setWorkouts stores the workout list.
func (st *aggState) setWorkouts(ws []models.WorkoutRecord) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.workouts = ws
}

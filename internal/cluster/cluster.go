// Package cluster groups chronologically adjacent interval segments into
// contiguous blocks, tolerating gaps up to a per-call-site maximum.
package cluster

import (
	"sort"
	"time"

	"github.com/claude/vitalsnap/internal/models"
)

// Gap tolerances. Main-sleep-block detection uses the tight tolerance so a
// night is not glued to an afternoon nap; historical-night segmentation uses
// the coarse one so brief wake-ups never split a night in two. These are
// tuned independently and must not be unified.
const (
	MainSleepGap = 45 * time.Minute
	HistoryGap   = 2 * time.Hour
)

// Segments partitions the input into ordered clusters. Within a cluster the
// gap between consecutive segments never exceeds maxGap; between clusters it
// always does. Every input segment appears in exactly one cluster. The input
// slice is not modified.
func Segments(segs []models.IntervalSegment, maxGap time.Duration) [][]models.IntervalSegment {
	if len(segs) == 0 {
		return nil
	}

	sorted := make([]models.IntervalSegment, len(segs))
	copy(sorted, segs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].End.Before(sorted[j].End)
	})

	var clusters [][]models.IntervalSegment
	current := []models.IntervalSegment{sorted[0]}

	for _, seg := range sorted[1:] {
		gap := seg.Start.Sub(current[len(current)-1].End)
		if gap <= maxGap {
			current = append(current, seg)
			continue
		}
		clusters = append(clusters, current)
		current = []models.IntervalSegment{seg}
	}
	return append(clusters, current)
}

// Block summarizes one cluster into a SleepBlock with per-category minute
// totals.
func Block(segs []models.IntervalSegment) models.SleepBlock {
	var b models.SleepBlock
	if len(segs) == 0 {
		return b
	}
	b.Start = segs[0].Start
	b.End = segs[0].End
	for _, seg := range segs {
		if seg.Start.Before(b.Start) {
			b.Start = seg.Start
		}
		if seg.End.After(b.End) {
			b.End = seg.End
		}
		switch {
		case seg.Stage.Asleep():
			b.AsleepMinutes += seg.DurationMinutes
		case seg.Stage == models.StageAwake:
			b.AwakeMinutes += seg.DurationMinutes
		case seg.Stage == models.StageInBed:
			b.InBedMinutes += seg.DurationMinutes
		}
		b.TotalMinutes += seg.DurationMinutes
	}
	return b
}

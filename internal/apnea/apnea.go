// Package apnea classifies breathing disturbance events into a risk tier
// and produces user-facing guidance text.
package apnea

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/numeric"
	"github.com/claude/vitalsnap/internal/provider"
)

// Lookback is the fixed event window behind the apnea summary.
const Lookback = 30 * 24 * time.Hour

// disclaimer always accompanies guidance text. It is load-bearing: the
// classification is a prompt to seek evaluation, not a diagnosis.
const disclaimer = "This is not a medical diagnosis. Consult a clinician for evaluation."

// Classify maps an event count and total event-duration minutes over the
// lookback window to a risk tier. The thresholds are exact:
// zero events is none; at most two events under 20 total minutes is watch;
// anything more is high.
func Classify(eventCount int, totalMinutes float64) models.ApneaRisk {
	switch {
	case eventCount == 0:
		return models.ApneaRiskNone
	case eventCount <= 2 && totalMinutes < 20:
		return models.ApneaRiskWatch
	default:
		return models.ApneaRiskHigh
	}
}

// Reminder returns the guidance text for a tier and event count. Every tier
// carries the non-diagnostic disclaimer.
func Reminder(risk models.ApneaRisk, eventCount int) string {
	switch risk {
	case models.ApneaRiskNone:
		return "No breathing disturbance events recorded in the last 30 days. " + disclaimer
	case models.ApneaRiskWatch:
		return fmt.Sprintf("%d breathing disturbance event(s) recorded in the last 30 days. Keep an eye on your sleep quality. %s", eventCount, disclaimer)
	default:
		return fmt.Sprintf("%d breathing disturbance event(s) recorded in the last 30 days. Consider discussing these with a clinician. %s", eventCount, disclaimer)
	}
}

// Summarize queries apnea events over the lookback window ending at now and
// builds the summary. A NoData response yields a none-tier summary.
func Summarize(ctx context.Context, p provider.SampleProvider, now time.Time) (*models.ApneaSummary, error) {
	samples, err := p.IntervalSamples(ctx, models.CategoryApneaEvent, now.Add(-Lookback), now)
	if err != nil && !provider.IsNoData(err) {
		return nil, fmt.Errorf("querying apnea events: %w", err)
	}

	var total float64
	var latest *time.Time
	count := 0
	for _, s := range samples {
		mins := s.End.Sub(s.Start).Minutes()
		if mins <= 0 {
			continue
		}
		count++
		total += mins
		if latest == nil || s.End.After(*latest) {
			end := s.End
			latest = &end
		}
	}

	risk := Classify(count, total)
	return &models.ApneaSummary{
		EventCount:   count,
		TotalMinutes: numeric.Round(total, 2),
		RiskLevel:    risk,
		Reminder:     Reminder(risk, count),
		LatestEvent:  latest,
	}, nil
}

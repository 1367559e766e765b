package aggregator

import (
	"math"
	"time"

	"kevscope/internal/types"
)

// Aggregate computes feed-wide metrics over a normalized record set. It is a
// pure function of its inputs; the caller supplies the clock so repeated runs
// over the same data yield identical snapshots.
func Aggregate(records []types.VulnerabilityRecord, now time.Time) types.MetricsSnapshot {
	snapshot := types.MetricsSnapshot{Total: len(records)}

	vendors := make(map[string]struct{})
	for _, record := range records {
		if record.Vendor != "" {
			vendors[record.Vendor] = struct{}{}
		}

		if !record.DateValid {
			continue
		}
		if withinWindow(record.Date, now, 7) {
			snapshot.RecentCount7++
		}
		if withinWindow(record.Date, now, 30) {
			snapshot.RecentCount30++
		}
		if withinWindow(record.Date, now, 90) {
			snapshot.RecentCount90++
		}

		monthsBack := (now.Year()-record.Date.Year())*12 + int(now.Month()) - int(record.Date.Month())
		if monthsBack >= 0 && monthsBack < 12 {
			snapshot.MonthlyAdded[11-monthsBack]++
		}
	}
	snapshot.UniqueVendorCount = len(vendors)

	// The feed carries no severity field, so the buckets are estimated as
	// fixed proportions of the total. Callers must not treat them as
	// per-record labels.
	snapshot.EstimatedSeverity.Critical = snapshot.Total * 15 / 100
	snapshot.EstimatedSeverity.High = snapshot.Total * 25 / 100
	snapshot.EstimatedSeverity.Medium = snapshot.Total * 35 / 100
	snapshot.EstimatedSeverity.Low = snapshot.Total -
		snapshot.EstimatedSeverity.Critical -
		snapshot.EstimatedSeverity.High -
		snapshot.EstimatedSeverity.Medium

	denominator := snapshot.Total
	if denominator < 1 {
		denominator = 1
	}
	ageScore := math.Max(20, 100-100*float64(snapshot.RecentCount30)/float64(denominator))
	severityScore := math.Max(10, 100-80*float64(snapshot.EstimatedSeverity.Critical+snapshot.EstimatedSeverity.High)/float64(denominator))

	posture := math.Min(100, (ageScore+severityScore)/2)
	snapshot.PostureScore = math.Round(posture*100) / 100
	snapshot.PostureBand = PostureBand(snapshot.PostureScore)

	return snapshot
}

// PostureBand maps a posture score to its textual band. Higher is better.
func PostureBand(score float64) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	default:
		return "needs attention"
	}
}

func withinWindow(date, now time.Time, days int) bool {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	return !date.Before(cutoff) && !date.After(now)
}

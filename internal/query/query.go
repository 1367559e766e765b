package query

import (
	"strings"
	"time"

	"kevscope/internal/types"
)

// Apply filters a record set with AND-combined predicates and truncates the
// result for paged display. The input order is preserved and MatchedCount
// always reports the full filtered size, so a caller can implement
// "show more" without a second pass.
func Apply(records []types.VulnerabilityRecord, criteria types.FilterCriteria, limit int, now time.Time) types.QueryResult {
	matched := make([]types.VulnerabilityRecord, 0, len(records))
	for _, record := range records {
		if matches(record, criteria, now) {
			matched = append(matched, record)
		}
	}

	result := types.QueryResult{Matched: matched, MatchedCount: len(matched)}
	if limit > 0 && limit < len(matched) {
		result.Matched = matched[:limit]
	}
	return result
}

func matches(record types.VulnerabilityRecord, criteria types.FilterCriteria, now time.Time) bool {
	if !containsFold(record.Product, criteria.Product) {
		return false
	}
	if !containsFold(record.Vendor, criteria.Vendor) {
		return false
	}
	if !containsFold(record.ID, criteria.CVEID) {
		return false
	}
	if !containsFold(record.Name, criteria.Name) {
		return false
	}
	if !containsFold(record.CWEText(), criteria.CWE) {
		return false
	}

	if days, restricted := criteria.WindowDays(); restricted {
		// records without a parseable date never fall inside a window
		if !record.DateValid {
			return false
		}
		cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
		if record.Date.Before(cutoff) || record.Date.After(now) {
			return false
		}
	}

	return true
}

// containsFold is a case-insensitive substring match; a blank needle matches
// everything, i.e. no filtering on that field.
func containsFold(value, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}

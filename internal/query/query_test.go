package query

import (
	"testing"
	"time"

	"kevscope/internal/types"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 8, 28, 12, 0, 0, 0, time.UTC)

func record(id, vendor, product, name string, daysAgo int, weaknesses ...string) types.VulnerabilityRecord {
	r := types.VulnerabilityRecord{
		ID:         id,
		Vendor:     vendor,
		Product:    product,
		Name:       name,
		Weaknesses: weaknesses,
	}
	if daysAgo >= 0 {
		r.Date = now.Add(-time.Duration(daysAgo) * 24 * time.Hour)
		r.DateAdded = r.Date.Format("2006-01-02")
		r.DateValid = true
	}
	return r
}

func testRecords() []types.VulnerabilityRecord {
	return []types.VulnerabilityRecord{
		record("CVE-2025-0001", "Microsoft", "Windows", "Windows Kernel Elevation", 3, "CWE-787"),
		record("CVE-2025-0002", "Apache", "HTTP Server", "Apache Path Traversal", 10, "CWE-22"),
		record("CVE-2025-0003", "Microsoft", "Exchange", "Exchange SSRF", 40, "CWE-918"),
		record("CVE-2025-0004", "Oracle", "WebLogic", "WebLogic Deserialization", -1),
	}
}

func TestApplyNoCriteriaSelectsAll(t *testing.T) {
	records := testRecords()

	result := Apply(records, types.FilterCriteria{}, 0, now)

	assert.Equal(t, len(records), result.MatchedCount)
	assert.Equal(t, records, result.Matched)
}

func TestApplyANDSemantics(t *testing.T) {
	criteria := types.FilterCriteria{Vendor: "micro", Product: "win"}

	result := Apply(testRecords(), criteria, 0, now)

	assert.Equal(t, 1, result.MatchedCount)
	assert.Equal(t, "CVE-2025-0001", result.Matched[0].ID)
}

func TestApplyCaseInsensitive(t *testing.T) {
	tests := []struct {
		name     string
		criteria types.FilterCriteria
		expected []string
	}{
		{
			name:     "vendor uppercase needle",
			criteria: types.FilterCriteria{Vendor: "MICROSOFT"},
			expected: []string{"CVE-2025-0001", "CVE-2025-0003"},
		},
		{
			name:     "name fragment",
			criteria: types.FilterCriteria{Name: "traversal"},
			expected: []string{"CVE-2025-0002"},
		},
		{
			name:     "cve fragment",
			criteria: types.FilterCriteria{CVEID: "2025-000"},
			expected: []string{"CVE-2025-0001", "CVE-2025-0002", "CVE-2025-0003", "CVE-2025-0004"},
		},
		{
			name:     "weakness text",
			criteria: types.FilterCriteria{CWE: "cwe-918"},
			expected: []string{"CVE-2025-0003"},
		},
		{
			name:     "no match",
			criteria: types.FilterCriteria{Vendor: "cisco"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Apply(testRecords(), tt.criteria, 0, now)
			ids := make([]string, 0, len(result.Matched))
			for _, r := range result.Matched {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestApplyDateWindow(t *testing.T) {
	// a record dated 3 days back falls inside the 7-day window, one dated 10
	// days back does not
	result := Apply(testRecords(), types.FilterCriteria{DateRange: types.DateRangeLast7}, 0, now)
	assert.Equal(t, 1, result.MatchedCount)
	assert.Equal(t, "CVE-2025-0001", result.Matched[0].ID)

	result = Apply(testRecords(), types.FilterCriteria{DateRange: types.DateRangeLast30}, 0, now)
	assert.Equal(t, 2, result.MatchedCount)

	result = Apply(testRecords(), types.FilterCriteria{DateRange: types.DateRangeLast90}, 0, now)
	assert.Equal(t, 3, result.MatchedCount)
}

func TestApplyDateWindowExcludesUnknownDates(t *testing.T) {
	// the WebLogic record has no parseable date: in every window it is
	// excluded, with "all" it passes
	result := Apply(testRecords(), types.FilterCriteria{DateRange: types.DateRangeLast90}, 0, now)
	for _, r := range result.Matched {
		assert.NotEqual(t, "CVE-2025-0004", r.ID)
	}

	result = Apply(testRecords(), types.FilterCriteria{DateRange: types.DateRangeAll}, 0, now)
	assert.Equal(t, 4, result.MatchedCount)
}

func TestApplyLimit(t *testing.T) {
	records := testRecords()

	result := Apply(records, types.FilterCriteria{}, 2, now)

	// truncated for display, but the full filtered size is still reported
	assert.Len(t, result.Matched, 2)
	assert.Equal(t, 4, result.MatchedCount)
	assert.Equal(t, "CVE-2025-0001", result.Matched[0].ID)
	assert.Equal(t, "CVE-2025-0002", result.Matched[1].ID)
}

func TestApplyPreservesOrder(t *testing.T) {
	records := testRecords()

	result := Apply(records, types.FilterCriteria{Vendor: "microsoft"}, 0, now)

	assert.Equal(t, "CVE-2025-0001", result.Matched[0].ID)
	assert.Equal(t, "CVE-2025-0003", result.Matched[1].ID)
}

func TestApplyEmptyInput(t *testing.T) {
	result := Apply(nil, types.FilterCriteria{Vendor: "x"}, 10, now)

	assert.Equal(t, 0, result.MatchedCount)
	assert.Empty(t, result.Matched)
}

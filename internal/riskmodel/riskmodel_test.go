package riskmodel

import (
	"testing"

	"kevscope/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestScoreSQLInjectionSingleton(t *testing.T) {
	// CWE-89 as the only weakness of a single-record set: f=1, all membership
	// flags on.
	counts := map[string]int{"CWE-89": 1}

	risk := Score("CWE-89", counts, 1)

	assert.InDelta(t, 0.8625, risk, 1e-9)
}

func TestScoreUnknownIdentifierDefaults(t *testing.T) {
	counts := map[string]int{"CWE-89": 10, "CWE-79": 5}

	risk := Score("CWE-9999", counts, 100)

	// defaults m'=0.2, M'=0.5, f=0, no membership: 0.07+0.075+0.05
	assert.InDelta(t, 0.195, risk, 1e-9)
}

func TestScoreBounds(t *testing.T) {
	countVariants := []map[string]int{
		{},
		nil,
		{"CWE-89": 1},
		{"CWE-89": 1000000},
	}
	totals := []int{0, 1, 50, 1000000}

	for id := range riskWeights {
		for _, counts := range countVariants {
			for _, total := range totals {
				risk := Score(id, counts, total)
				assert.GreaterOrEqual(t, risk, 0.0, "id %s", id)
				assert.LessOrEqual(t, risk, 1.0, "id %s", id)
			}
		}
	}
}

func TestScoreDeterminism(t *testing.T) {
	counts := map[string]int{"CWE-79": 3, "CWE-89": 7}

	first := Score("CWE-79", counts, 42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score("CWE-79", counts, 42))
	}
}

func TestScoreEmptyPopulation(t *testing.T) {
	// denominator is guarded with a minimum of 1, so a zero-record population
	// must not divide by zero
	risk := Score("CWE-89", map[string]int{}, 0)
	assert.False(t, risk != risk, "score must not be NaN")
	assert.GreaterOrEqual(t, risk, 0.0)
	assert.LessOrEqual(t, risk, 1.0)
}

func TestPopulationCounts(t *testing.T) {
	records := []types.VulnerabilityRecord{
		{Weaknesses: []string{"CWE-79", "CWE-89"}},
		{Weaknesses: []string{"CWE-79"}},
		{Weaknesses: []string{types.NoCWEPlaceholder}},
		{Weaknesses: []string{}},
	}

	counts := PopulationCounts(records)

	assert.Equal(t, map[string]int{"CWE-79": 2, "CWE-89": 1}, counts)
}

func TestPopulationCountsExpandsDelimitedEntries(t *testing.T) {
	// a record whose weaknesses arrived as one joined string contributes
	// every identifier inside it
	records := []types.VulnerabilityRecord{
		{Weaknesses: []string{"CWE-79, CWE-89"}},
		{Weaknesses: []string{"CWE-89"}},
	}

	counts := PopulationCounts(records)

	assert.Equal(t, map[string]int{"CWE-79": 1, "CWE-89": 2}, counts)
}

func TestSplitWeaknesses(t *testing.T) {
	tests := []struct {
		name       string
		weaknesses []string
		expected   []string
	}{
		{
			name:       "already individual identifiers",
			weaknesses: []string{"CWE-79", "CWE-89"},
			expected:   []string{"CWE-79", "CWE-89"},
		},
		{
			name:       "single delimited string",
			weaknesses: []string{"CWE-79, CWE-89"},
			expected:   []string{"CWE-79", "CWE-89"},
		},
		{
			name:       "delimited string with duplicates and blanks",
			weaknesses: []string{"CWE-79, ,CWE-79 , CWE-22"},
			expected:   []string{"CWE-79", "CWE-22"},
		},
		{
			name:       "placeholder only",
			weaknesses: []string{types.NoCWEPlaceholder},
			expected:   []string{},
		},
		{
			name:       "empty",
			weaknesses: nil,
			expected:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitWeaknesses(tt.weaknesses))
		})
	}
}

func TestMembershipSets(t *testing.T) {
	assert.True(t, IsTop25("CWE-89"))
	assert.True(t, IsTop10("CWE-89"))
	assert.True(t, IsExploitedCommon("CWE-89"))

	// CWE-476 sits in the Top 25 but not in the Top 10 or the commonly
	// exploited set
	assert.True(t, IsTop25("CWE-476"))
	assert.False(t, IsTop10("CWE-476"))
	assert.False(t, IsExploitedCommon("CWE-476"))

	assert.False(t, IsTop25("CWE-9999"))
}

func TestSetTop25Swap(t *testing.T) {
	defer SetTop25(top25List)

	SetTop25([]string{"CWE-1"})

	assert.True(t, IsTop25("CWE-1"))
	assert.False(t, IsTop25("CWE-89"))
	// the Top 10 set is independent and stays intact
	assert.True(t, IsTop10("CWE-89"))
}

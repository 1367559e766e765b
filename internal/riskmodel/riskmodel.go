package riskmodel

import (
	"math"
	"strings"
	"sync"

	"kevscope/internal/types"
)

// Formula weights, fixed constants summing to 1.0.
const (
	weightMeanSeverity = 0.35
	weightMaxSeverity  = 0.15
	weightFrequency    = 0.20
	weightRecency      = 0.10
	weightExploited    = 0.15
	weightTop25        = 0.05

	// recencySignal is a hardcoded constant, not derived from record age.
	recencySignal = 0.5

	defaultMeanSeverity = 2.0
	defaultMaxSeverity  = 5.0
)

// RiskWeight is the static reference entry for one weakness identifier.
// Severities are on the CVSS 0-10 scale; FrequencyShare is the expected
// population share and is only a fallback signal.
type RiskWeight struct {
	MeanSeverity   float64
	MaxSeverity    float64
	FrequencyShare float64
}

var riskWeights = map[string]RiskWeight{
	"CWE-787": {MeanSeverity: 8.1, MaxSeverity: 9.8, FrequencyShare: 0.15},  // Out-of-bounds Write
	"CWE-79":  {MeanSeverity: 6.1, MaxSeverity: 9.6, FrequencyShare: 0.12},  // Cross-site Scripting
	"CWE-89":  {MeanSeverity: 7.5, MaxSeverity: 10.0, FrequencyShare: 0.08}, // SQL Injection
	"CWE-416": {MeanSeverity: 7.8, MaxSeverity: 9.8, FrequencyShare: 0.06},  // Use After Free
	"CWE-78":  {MeanSeverity: 8.6, MaxSeverity: 10.0, FrequencyShare: 0.05}, // OS Command Injection
	"CWE-20":  {MeanSeverity: 6.8, MaxSeverity: 9.3, FrequencyShare: 0.07},  // Improper Input Validation
	"CWE-125": {MeanSeverity: 6.5, MaxSeverity: 9.1, FrequencyShare: 0.04},  // Out-of-bounds Read
	"CWE-22":  {MeanSeverity: 6.1, MaxSeverity: 9.1, FrequencyShare: 0.03},  // Path Traversal
	"CWE-352": {MeanSeverity: 6.8, MaxSeverity: 8.8, FrequencyShare: 0.03},  // CSRF
	"CWE-434": {MeanSeverity: 8.8, MaxSeverity: 10.0, FrequencyShare: 0.02}, // Unrestricted Upload
	"CWE-862": {MeanSeverity: 7.5, MaxSeverity: 9.8, FrequencyShare: 0.02},  // Missing Authorization
	"CWE-476": {MeanSeverity: 5.5, MaxSeverity: 7.5, FrequencyShare: 0.02},  // NULL Pointer Dereference
	"CWE-287": {MeanSeverity: 9.8, MaxSeverity: 10.0, FrequencyShare: 0.02}, // Improper Authentication
	"CWE-190": {MeanSeverity: 5.0, MaxSeverity: 9.3, FrequencyShare: 0.02},  // Integer Overflow
	"CWE-502": {MeanSeverity: 9.8, MaxSeverity: 10.0, FrequencyShare: 0.01}, // Deserialization
	"CWE-77":  {MeanSeverity: 8.1, MaxSeverity: 10.0, FrequencyShare: 0.01}, // Command Injection
	"CWE-119": {MeanSeverity: 6.9, MaxSeverity: 9.3, FrequencyShare: 0.01},  // Buffer Errors
	"CWE-798": {MeanSeverity: 9.8, MaxSeverity: 10.0, FrequencyShare: 0.01}, // Hard-coded Credentials
	"CWE-918": {MeanSeverity: 8.6, MaxSeverity: 10.0, FrequencyShare: 0.01}, // SSRF
	"CWE-306": {MeanSeverity: 9.8, MaxSeverity: 10.0, FrequencyShare: 0.01}, // Missing Authentication
	"CWE-362": {MeanSeverity: 6.8, MaxSeverity: 8.1, FrequencyShare: 0.01},  // Race Condition
	"CWE-269": {MeanSeverity: 8.8, MaxSeverity: 10.0, FrequencyShare: 0.01}, // Improper Privilege Management
	"CWE-94":  {MeanSeverity: 8.8, MaxSeverity: 10.0, FrequencyShare: 0.01}, // Code Injection
	"CWE-863": {MeanSeverity: 7.5, MaxSeverity: 9.1, FrequencyShare: 0.01},  // Incorrect Authorization
	"CWE-276": {MeanSeverity: 6.8, MaxSeverity: 8.8, FrequencyShare: 0.01},  // Incorrect Default Permissions
}

// CWE Top 25 (2023) - most dangerous software weaknesses.
var top25List = []string{
	"CWE-787", "CWE-79", "CWE-89", "CWE-416", "CWE-78", "CWE-20", "CWE-125",
	"CWE-22", "CWE-352", "CWE-434", "CWE-862", "CWE-476", "CWE-287", "CWE-190",
	"CWE-502", "CWE-77", "CWE-119", "CWE-798", "CWE-918", "CWE-306", "CWE-362",
	"CWE-269", "CWE-94", "CWE-863", "CWE-276",
}

// Top 10 slice of the Top 25, highest priority.
var top10List = []string{
	"CWE-787", "CWE-79", "CWE-89", "CWE-416", "CWE-78", "CWE-20", "CWE-125",
	"CWE-22", "CWE-352", "CWE-434",
}

// Weaknesses commonly weaponized in the KEV catalog.
var exploitedCommonList = []string{
	"CWE-79", "CWE-89", "CWE-78", "CWE-22", "CWE-352", "CWE-434", "CWE-287",
	"CWE-502", "CWE-77", "CWE-798", "CWE-918", "CWE-94", "CWE-863",
}

var (
	setMu           sync.RWMutex
	top25           = newSet(top25List)
	top10           = newSet(top10List)
	exploitedCommon = newSet(exploitedCommonList)
)

func newSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func IsTop25(id string) bool {
	setMu.RLock()
	defer setMu.RUnlock()
	_, ok := top25[id]
	return ok
}

func IsTop10(id string) bool {
	setMu.RLock()
	defer setMu.RUnlock()
	_, ok := top10[id]
	return ok
}

func IsExploitedCommon(id string) bool {
	setMu.RLock()
	defer setMu.RUnlock()
	_, ok := exploitedCommon[id]
	return ok
}

// SetTop25 swaps the Top 25 membership set wholesale, typically after a
// catalog refresh. The compiled-in set stays in place until the swap.
func SetTop25(ids []string) {
	replacement := newSet(ids)
	setMu.Lock()
	top25 = replacement
	setMu.Unlock()
}

// SplitWeaknesses expands weakness entries into individual identifiers.
// The normalizer keeps a single delimited string whole, so grouping for
// scoring splits on commas here, trims each part and drops placeholders,
// deduplicating in first-seen order.
func SplitWeaknesses(weaknesses []string) []string {
	ids := make([]string, 0, len(weaknesses))
	seen := make(map[string]struct{}, len(weaknesses))

	for _, weakness := range weaknesses {
		for _, part := range strings.Split(weakness, ",") {
			id := strings.TrimSpace(part)
			if id == "" || id == types.NoCWEPlaceholder {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	return ids
}

// PopulationCounts tallies how often each weakness identifier appears across
// a record set. Callers compute this once per set and hand it to Score so the
// frequency signal is not recomputed per identifier.
func PopulationCounts(records []types.VulnerabilityRecord) map[string]int {
	counts := make(map[string]int)
	for _, record := range records {
		for _, id := range SplitWeaknesses(record.Weaknesses) {
			counts[id]++
		}
	}
	return counts
}

// Score computes the composite risk of one weakness identifier in [0, 1].
// Identifiers without a reference entry fall back to conservative defaults
// and never error.
func Score(id string, counts map[string]int, totalRecords int) float64 {
	meanSeverity, maxSeverity := defaultMeanSeverity, defaultMaxSeverity
	if weight, ok := riskWeights[id]; ok {
		meanSeverity, maxSeverity = weight.MeanSeverity, weight.MaxSeverity
	}

	mPrime := meanSeverity / 10
	mMaxPrime := maxSeverity / 10

	sum := 0
	for _, count := range counts {
		sum += count
	}
	denominator := sum
	if totalRecords > denominator {
		denominator = totalRecords
	}
	if denominator < 1 {
		denominator = 1
	}
	frequency := float64(counts[id]) / float64(denominator)

	exploited, inTop25 := 0.0, 0.0
	if IsExploitedCommon(id) {
		exploited = 1
	}
	if IsTop25(id) {
		inTop25 = 1
	}

	risk := weightMeanSeverity*mPrime +
		weightMaxSeverity*mMaxPrime +
		weightFrequency*math.Min(4*frequency, 1) +
		weightRecency*recencySignal +
		weightExploited*exploited +
		weightTop25*inTop25

	return math.Max(0, math.Min(1, risk))
}

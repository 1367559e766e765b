package types

import (
	"encoding/json"
	"strings"
	"time"
)

// NoCWEPlaceholder is what the presentation layer shows when a record
// resolved to zero weaknesses.
const NoCWEPlaceholder = "—"

type RiskTier string

const (
	TierHigh   RiskTier = "high"
	TierMedium RiskTier = "medium"
	TierLow    RiskTier = "low"
	TierNone   RiskTier = "none"
)

// RawVulnerability is one element of the KEV feed as it arrives on the wire.
// Every field is optional; cwes can be an array of strings, an array of
// {cweID, description} objects, a single string, or absent entirely.
type RawVulnerability struct {
	CVEID             string          `json:"cveID"`
	VendorProject     string          `json:"vendorProject"`
	Product           string          `json:"product"`
	VulnerabilityName string          `json:"vulnerabilityName"`
	DateAdded         string          `json:"dateAdded"`
	CWEs              json.RawMessage `json:"cwes"`
}

// VulnerabilityRecord is the canonical form every downstream stage works on.
type VulnerabilityRecord struct {
	ID        string    `json:"id"`
	Vendor    string    `json:"vendor"`
	Product   string    `json:"product"`
	Name      string    `json:"name"`
	DateAdded string    `json:"dateAdded"`
	Date      time.Time `json:"-"`
	DateValid bool      `json:"-"`
	// Weaknesses is always a list of trimmed, non-empty identifiers with the
	// first-seen order preserved.
	Weaknesses []string `json:"weaknesses"`
	RiskTier   RiskTier `json:"riskTier"`
}

// CWEText joins the weakness identifiers into the display string the
// presentation layer expects.
func (r VulnerabilityRecord) CWEText() string {
	if len(r.Weaknesses) == 0 {
		return NoCWEPlaceholder
	}
	return strings.Join(r.Weaknesses, ", ")
}

type SeverityBuckets struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// MetricsSnapshot is the result of one aggregation run over a record set.
// The severity buckets are estimated proportions of the total, not measured
// per-record labels; the feed carries no severity field.
type MetricsSnapshot struct {
	Total             int             `json:"total"`
	UniqueVendorCount int             `json:"uniqueVendors"`
	RecentCount7      int             `json:"recent7Days"`
	RecentCount30     int             `json:"recent30Days"`
	RecentCount90     int             `json:"recent90Days"`
	EstimatedSeverity SeverityBuckets `json:"estimatedSeverity"`
	PostureScore      float64         `json:"postureScore"`
	PostureBand       string          `json:"postureBand"`
	// MonthlyAdded counts records per calendar month over the trailing
	// twelve months, current month last.
	MonthlyAdded [12]int `json:"monthlyAdded"`
}

const (
	DateRangeAll    = "all"
	DateRangeLast7  = "last7days"
	DateRangeLast30 = "last30days"
	DateRangeLast90 = "last90days"
)

// FilterCriteria is passed by value and never mutated by the engine. Blank
// text fields match everything.
type FilterCriteria struct {
	Product   string
	Vendor    string
	CVEID     string
	Name      string
	CWE       string
	DateRange string
}

// WindowDays reports the trailing window in days and whether the criteria
// restrict by date at all. Unrecognized ranges behave like "all".
func (c FilterCriteria) WindowDays() (int, bool) {
	switch c.DateRange {
	case DateRangeLast7:
		return 7, true
	case DateRangeLast30:
		return 30, true
	case DateRangeLast90:
		return 90, true
	default:
		return 0, false
	}
}

// ActiveCount returns how many predicates are actually filtering, for the
// filter UI's badge.
func (c FilterCriteria) ActiveCount() int {
	count := 0
	for _, value := range []string{c.Product, c.Vendor, c.CVEID, c.Name, c.CWE} {
		if strings.TrimSpace(value) != "" {
			count++
		}
	}
	if _, restricted := c.WindowDays(); restricted {
		count++
	}
	return count
}

type QueryResult struct {
	Matched      []VulnerabilityRecord `json:"matched"`
	MatchedCount int                   `json:"matchedCount"`
}

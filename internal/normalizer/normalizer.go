package normalizer

import (
	"encoding/json"
	"strings"
	"time"

	"kevscope/internal/types"
)

// Normalize converts one raw feed element into its canonical form. It never
// fails: every field has a safe default, so a malformed record degrades to
// empty values instead of aborting the rest of the feed.
func Normalize(raw types.RawVulnerability) types.VulnerabilityRecord {
	record := types.VulnerabilityRecord{
		ID:         raw.CVEID,
		Vendor:     raw.VendorProject,
		Product:    raw.Product,
		Name:       raw.VulnerabilityName,
		DateAdded:  raw.DateAdded,
		Weaknesses: normalizeCWEs(raw.CWEs),
		RiskTier:   types.TierNone,
	}

	if parsed, ok := parseDate(raw.DateAdded); ok {
		record.Date = parsed
		record.DateValid = true
	}

	return record
}

type cweObject struct {
	CWEID       string `json:"cweID"`
	Description string `json:"description"`
}

func normalizeCWEs(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err == nil {
		parts := make([]string, 0, len(elements))
		for _, element := range elements {
			var identifier string
			if err := json.Unmarshal(element, &identifier); err == nil {
				parts = append(parts, identifier)
				continue
			}

			var object cweObject
			if err := json.Unmarshal(element, &object); err == nil {
				if object.CWEID != "" {
					parts = append(parts, object.CWEID)
				} else if object.Description != "" {
					parts = append(parts, object.Description)
				}
			}
			// anything else (numbers, nested arrays) is dropped
		}
		return dedupe(parts)
	}

	// A single delimited string is kept whole; grouping for scoring expands
	// it downstream.
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
		return dedupe([]string{single})
	}

	return []string{}
}

func dedupe(parts []string) []string {
	result := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}

	return result
}

// parseDate accepts the feed's plain calendar dates plus RFC 3339 timestamps.
// Anything else counts as unknown; unknown dates are excluded from windowed
// computations, never coerced to the current time.
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, true
	}
	if len(value) > 10 {
		if parsed, err := time.Parse("2006-01-02", value[:10]); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

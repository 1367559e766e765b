package classifier

import (
	"kevscope/internal/riskmodel"
	"kevscope/internal/types"
)

const (
	highThreshold   = 0.66
	mediumThreshold = 0.33
)

// Classify turns a record's weakness list into a discrete risk tier. A
// weakness flagged as commonly exploited or in the Top 10 is always high,
// regardless of its numeric score. Delimited entries are expanded so every
// identifier inside a joined string is scored on its own.
func Classify(weaknesses []string, counts map[string]int, totalRecords int) types.RiskTier {
	ids := riskmodel.SplitWeaknesses(weaknesses)
	if len(ids) == 0 {
		return types.TierNone
	}

	maxRisk := 0.0
	anyExploited, anyTop10, anyTop25 := false, false, false

	for _, id := range ids {
		if risk := riskmodel.Score(id, counts, totalRecords); risk > maxRisk {
			maxRisk = risk
		}
		if riskmodel.IsExploitedCommon(id) {
			anyExploited = true
		}
		if riskmodel.IsTop10(id) {
			anyTop10 = true
		}
		if riskmodel.IsTop25(id) {
			anyTop25 = true
		}
	}

	switch {
	case maxRisk >= highThreshold || anyExploited || anyTop10:
		return types.TierHigh
	case maxRisk >= mediumThreshold || anyTop25:
		return types.TierMedium
	default:
		return types.TierLow
	}
}

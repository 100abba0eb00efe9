package indicators

import "CoinSight/internal/domain/models"

// ClassifyTrend derives the trend state from the moving averages.
// All comparisons are strict; equal values never count as aligned and fall
// through to the otherwise-branch of their rule.
func ClassifyTrend(ma7, ma25, ma99 *float64) models.TrendStatus {
	if ma7 == nil {
		return models.TrendInsufficientData
	}

	if ma25 != nil && ma99 != nil {
		switch {
		case *ma7 > *ma25 && *ma25 > *ma99:
			return models.TrendBullishAligned
		case *ma7 < *ma25 && *ma25 < *ma99:
			return models.TrendBearishAligned
		default:
			return models.TrendConsolidating
		}
	}

	if ma25 != nil {
		if *ma7 > *ma25 {
			return models.TrendShortBullish
		}
		return models.TrendShortBearish
	}

	return models.TrendInsufficientData
}

package indicators

import "CoinSight/internal/domain/models"

// ClassifyBias buckets the MA7 deviation percent into a risk zone.
// Boundary values fall into the lower (safer) bucket. An absent bias
// defaults to the normal zone.
func ClassifyBias(bias7 *float64, th Thresholds) models.BiasLevel {
	if bias7 == nil {
		return models.BiasNormal
	}

	b := *bias7
	switch {
	case b < -th.Caution:
		return models.BiasOversold
	case b < 0:
		return models.BiasLowRisk
	case b < th.Low:
		return models.BiasNormal
	case b < th.Caution:
		return models.BiasCaution
	default:
		return models.BiasHighRisk
	}
}

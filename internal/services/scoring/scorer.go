package scoring

import (
	"CoinSight/internal/domain/models"
)

// Input carries everything the scorer reads. Optional fields are pointers;
// BuySellRatio must default to 1.0 when the asset has no sell count.
type Input struct {
	Trend           models.TrendStatus
	Bias            models.BiasLevel
	PriceChange24h  float64
	VolumeChange24h *float64
	BuySellRatio    float64
	HolderChange24h *int
	Warnings        []models.Warning
}

// Outcome is the scored signal with its justification tags.
type Outcome struct {
	Signal   models.SignalType
	Strength int // 0..100
	Reasons  []models.Reason
}

const baseScore = 50

// Score combines trend, bias, momentum and onchain facts into a bounded
// strength score and maps it to a discrete signal. Pure function; one shot.
func Score(in Input) Outcome {
	score := baseScore
	var reasons []models.Reason

	addReason := func(code models.ReasonCode) {
		reasons = append(reasons, models.Reason{Code: code})
	}

	switch in.Trend {
	case models.TrendBullishAligned:
		score += 20
		addReason(models.ReasonBullishAligned)
	case models.TrendBearishAligned:
		score -= 20
		addReason(models.ReasonBearishAligned)
	case models.TrendShortBullish:
		score += 10
		addReason(models.ReasonShortBullish)
	case models.TrendShortBearish:
		score -= 10
		addReason(models.ReasonShortBearish)
	}

	switch in.Bias {
	case models.BiasOversold:
		score += 15
		addReason(models.ReasonOversold)
	case models.BiasLowRisk:
		score += 10
		addReason(models.ReasonLowRiskZone)
	case models.BiasCaution:
		score -= 10
		addReason(models.ReasonBiasHigh)
	case models.BiasHighRisk:
		score -= 20
		addReason(models.ReasonNoChasing)
	}

	switch {
	case in.PriceChange24h > 20:
		score -= 10
		addReason(models.ReasonSurge24h)
	case in.PriceChange24h > 10:
		score -= 5
	case in.PriceChange24h < -20:
		score += 5
		addReason(models.ReasonPullback)
	case in.PriceChange24h < -10:
		score += 3
	}

	if in.VolumeChange24h != nil {
		if *in.VolumeChange24h > 100 {
			score += 5
			addReason(models.ReasonVolumeSurge)
		} else if *in.VolumeChange24h < -50 {
			score -= 5
			addReason(models.ReasonVolumeShrink)
		}
	}

	if in.BuySellRatio > 1.5 {
		score += 10
		addReason(models.ReasonBuyPressure)
	} else if in.BuySellRatio < 0.5 {
		score -= 10
		addReason(models.ReasonSellPressure)
	}

	if in.HolderChange24h != nil {
		if *in.HolderChange24h > 100 {
			score += 5
			addReason(models.ReasonHoldersUp)
		} else if *in.HolderChange24h < -100 {
			score -= 5
			addReason(models.ReasonHoldersDown)
		}
	}

	score -= len(in.Warnings) * 5

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	signal := mapSignal(score)

	// Too many independent risks cap the upside by exactly one tier.
	// HOLD and below have no downgrade path; that asymmetry is intentional.
	if len(in.Warnings) >= 3 {
		switch signal {
		case models.SignalStrongBuy:
			signal = models.SignalBuy
		case models.SignalBuy:
			signal = models.SignalHold
		}
		addReason(models.ReasonMultipleRisks)
	}

	return Outcome{Signal: signal, Strength: score, Reasons: reasons}
}

// mapSignal maps a clamped score to a signal; first match wins.
func mapSignal(score int) models.SignalType {
	switch {
	case score >= 80:
		return models.SignalStrongBuy
	case score >= 65:
		return models.SignalBuy
	case score >= 45:
		return models.SignalHold
	case score >= 30:
		return models.SignalSell
	default:
		return models.SignalStrongSell
	}
}

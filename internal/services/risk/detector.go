package risk

import (
	"time"

	"CoinSight/internal/domain/models"
)

const (
	liquidityFloorUSD   = 10_000
	liquidityLowUSD     = 50_000
	fdvRatioCeiling     = 10.0
	sellPressureRatio   = 0.5
	newPoolRiskHours    = 24
	newPoolCautionHours = 72
)

// Detect evaluates the onchain risk rules against the indicators and returns
// the warnings that fired, in rule order. Every rule degrades to no warning
// when its inputs are absent; Detect never fails.
func Detect(on models.OnchainIndicators, now time.Time) []models.Warning {
	var warnings []models.Warning

	// Stricter liquidity rule wins.
	if on.LiquidityUSD < liquidityFloorUSD {
		warnings = append(warnings, models.Warning{Code: models.WarnLiquidityVeryLow})
	} else if on.LiquidityUSD < liquidityLowUSD {
		warnings = append(warnings, models.Warning{Code: models.WarnLiquidityLow})
	}

	if on.FDV != nil && on.MarketCap != nil && *on.MarketCap > 0 {
		ratio := *on.FDV / *on.MarketCap
		if ratio > fdvRatioCeiling {
			warnings = append(warnings, models.Warning{Code: models.WarnFDVRatioHigh, Value: &ratio})
		}
	}

	if on.Sells24h > 0 {
		ratio := float64(on.Buys24h) / float64(on.Sells24h)
		if ratio < sellPressureRatio {
			warnings = append(warnings, models.Warning{Code: models.WarnSellPressure, Value: &ratio})
		}
	}

	if on.PoolCreatedAt != nil {
		age := now.Sub(*on.PoolCreatedAt).Hours()
		if age < newPoolRiskHours {
			warnings = append(warnings, models.Warning{Code: models.WarnNewPool24h})
		} else if age < newPoolCautionHours {
			warnings = append(warnings, models.Warning{Code: models.WarnNewPool72h})
		}
	}

	return warnings
}

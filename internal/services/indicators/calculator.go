package indicators

import (
	"CoinSight/internal/domain/models"
)

// Thresholds are the bias-zone boundaries in percent. Immutable once built;
// the deployment override comes from config, never from package state.
type Thresholds struct {
	Low     float64 // low-risk/normal boundary
	Caution float64 // caution/high-risk boundary
}

// DefaultThresholds returns the crypto-adjusted bias thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 5.0, Caution: 10.0}
}

// Compute derives all technical indicators from a chronological candle series.
// Fewer than 7 candles yields an empty record with insufficient-data trend;
// that is a degraded input, not an error. Compute is a pure function.
func Compute(candles []models.Candle, th Thresholds) models.TechnicalIndicators {
	ind := models.TechnicalIndicators{
		TrendStatus: models.TrendInsufficientData,
		BiasLevel:   models.BiasNormal,
	}

	n := len(candles)
	if n < 7 {
		return ind
	}

	closes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
	}
	latest := closes[n-1]

	ind.MA7 = fptr(sma(closes, 7))
	if n >= 25 {
		ind.MA25 = fptr(sma(closes, 25))
	}
	if n >= 99 {
		ind.MA99 = fptr(sma(closes, 99))
	}

	if ind.MA7 != nil && *ind.MA7 != 0 {
		ind.Bias7 = fptr((latest - *ind.MA7) / *ind.MA7 * 100)
	}
	if ind.MA25 != nil && *ind.MA25 != 0 {
		ind.Bias25 = fptr((latest - *ind.MA25) / *ind.MA25 * 100)
	}

	ind.TrendStatus = ClassifyTrend(ind.MA7, ind.MA25, ind.MA99)
	ind.BiasLevel = ClassifyBias(ind.Bias7, th)

	if rsi, ok := rsi14(closes); ok {
		ind.RSI14 = fptr(rsi)
	}

	if n >= 2 && candles[n-2].Volume != 0 {
		prev := candles[n-2].Volume
		ind.VolumeChange24h = fptr((candles[n-1].Volume - prev) / prev * 100)
	}

	if n >= 20 {
		low := candles[n-20].Low
		high := candles[n-20].High
		for _, c := range candles[n-19:] {
			if c.Low < low {
				low = c.Low
			}
			if c.High > high {
				high = c.High
			}
		}
		ind.SupportLevel = fptr(low)
		ind.ResistanceLevel = fptr(high)
	}

	return ind
}

// sma averages the trailing `period` values. Caller guarantees len >= period.
func sma(values []float64, period int) float64 {
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period)
}

// rsi14 computes the Wilder-smoothed RSI over 14 periods.
// Returns false when fewer than 15 closes are available.
func rsi14(closes []float64) (float64, bool) {
	const period = 14
	if len(closes) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= period
	avgLoss /= period

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(period-1) + gain) / period
		avgLoss = (avgLoss*(period-1) + loss) / period
	}

	if avgLoss == 0 {
		return 100.0, true
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), true
}

func fptr(v float64) *float64 { return &v }

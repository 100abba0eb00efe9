package models

import "time"

// TrendStatus classifies the MA7/MA25/MA99 alignment.
type TrendStatus string

const (
	TrendBullishAligned   TrendStatus = "bullish_aligned" // MA7 > MA25 > MA99
	TrendBearishAligned   TrendStatus = "bearish_aligned" // MA7 < MA25 < MA99
	TrendShortBullish     TrendStatus = "short_bullish"   // MA7 > MA25, no MA99
	TrendShortBearish     TrendStatus = "short_bearish"
	TrendConsolidating    TrendStatus = "consolidating"
	TrendInsufficientData TrendStatus = "insufficient_data"
)

// BiasLevel grades the MA7 deviation into a risk zone.
type BiasLevel string

const (
	BiasOversold BiasLevel = "oversold"
	BiasLowRisk  BiasLevel = "low_risk"
	BiasNormal   BiasLevel = "normal"
	BiasCaution  BiasLevel = "caution"
	BiasHighRisk BiasLevel = "high_risk"
)

// TechnicalIndicators holds the computed technical facts for one symbol.
// Pointer fields are absent when the series is too short to compute them.
type TechnicalIndicators struct {
	MA7  *float64 `json:"ma7,omitempty"`
	MA25 *float64 `json:"ma25,omitempty"`
	MA99 *float64 `json:"ma99,omitempty"`

	// Deviation from the moving average, percent.
	Bias7  *float64 `json:"bias7,omitempty"`
	Bias25 *float64 `json:"bias25,omitempty"`

	TrendStatus TrendStatus `json:"trend_status"`
	BiasLevel   BiasLevel   `json:"bias_level"`

	RSI14           *float64 `json:"rsi14,omitempty"`
	VolumeChange24h *float64 `json:"volume_change_24h,omitempty"`

	SupportLevel    *float64 `json:"support_level,omitempty"`
	ResistanceLevel *float64 `json:"resistance_level,omitempty"`
}

// OnchainIndicators holds holder, liquidity and trade-flow facts.
type OnchainIndicators struct {
	HolderCount     *int     `json:"holder_count,omitempty"`
	HolderChange24h *int     `json:"holder_change_24h,omitempty"`
	Top10Pct        *float64 `json:"top10_pct,omitempty"`

	LiquidityUSD float64 `json:"liquidity_usd"`

	Txns24h      int     `json:"txns_24h"`
	Buys24h      int     `json:"buys_24h"`
	Sells24h     int     `json:"sells_24h"`
	BuySellRatio float64 `json:"buy_sell_ratio"` // 1.0 when sells_24h is zero

	FDV       *float64 `json:"fdv,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`

	PoolCreatedAt *time.Time `json:"pool_created_at,omitempty"`
}

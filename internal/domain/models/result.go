package models

import (
	"fmt"
	"time"
)

// SignalType is the discrete trading signal, ordered most to least bullish.
type SignalType string

const (
	SignalStrongBuy  SignalType = "strong_buy"
	SignalBuy        SignalType = "buy"
	SignalHold       SignalType = "hold"
	SignalSell       SignalType = "sell"
	SignalStrongSell SignalType = "strong_sell"
)

// Source of the analyzed asset.
const (
	SourceExchange = "exchange"
	SourceOnchain  = "onchain"
)

// ReasonCode tags a score modifier that fired.
type ReasonCode string

const (
	ReasonBullishAligned ReasonCode = "bullish_aligned"
	ReasonBearishAligned ReasonCode = "bearish_aligned"
	ReasonShortBullish   ReasonCode = "short_bullish"
	ReasonShortBearish   ReasonCode = "short_bearish"
	ReasonOversold       ReasonCode = "oversold_zone"
	ReasonLowRiskZone    ReasonCode = "low_risk_zone"
	ReasonBiasHigh       ReasonCode = "bias_overextended"
	ReasonNoChasing      ReasonCode = "no_chasing_highs"
	ReasonSurge24h       ReasonCode = "surge_24h"
	ReasonPullback       ReasonCode = "sharp_pullback"
	ReasonVolumeSurge    ReasonCode = "volume_surge"
	ReasonVolumeShrink   ReasonCode = "volume_shrinking"
	ReasonBuyPressure    ReasonCode = "buy_pressure"
	ReasonSellPressure   ReasonCode = "sell_pressure"
	ReasonHoldersUp      ReasonCode = "holders_increasing"
	ReasonHoldersDown    ReasonCode = "holders_decreasing"
	ReasonMultipleRisks  ReasonCode = "multiple_risks"
)

// Reason is a structured signal-reason tag with an optional numeric payload.
type Reason struct {
	Code  ReasonCode `json:"code"`
	Value *float64   `json:"value,omitempty"`
}

func (r Reason) String() string {
	switch r.Code {
	case ReasonBullishAligned:
		return "bullish MA alignment"
	case ReasonBearishAligned:
		return "bearish MA alignment"
	case ReasonShortBullish:
		return "short-term bullish"
	case ReasonShortBearish:
		return "short-term bearish"
	case ReasonOversold:
		return "oversold zone"
	case ReasonLowRiskZone:
		return "low-risk entry zone"
	case ReasonBiasHigh:
		return "bias overextended"
	case ReasonNoChasing:
		return "do not chase highs"
	case ReasonSurge24h:
		return "24h gain overextended"
	case ReasonPullback:
		return "sharp pullback"
	case ReasonVolumeSurge:
		return "volume surge"
	case ReasonVolumeShrink:
		return "volume shrinking"
	case ReasonBuyPressure:
		return "strong buy pressure"
	case ReasonSellPressure:
		return "strong sell pressure"
	case ReasonHoldersUp:
		return "holders increasing"
	case ReasonHoldersDown:
		return "holders decreasing"
	case ReasonMultipleRisks:
		return "multiple risk factors"
	}
	return string(r.Code)
}

// WarningCode tags an onchain risk rule that fired.
type WarningCode string

const (
	WarnLiquidityVeryLow WarningCode = "liquidity_very_low"
	WarnLiquidityLow     WarningCode = "liquidity_low"
	WarnFDVRatioHigh     WarningCode = "fdv_ratio_high"
	WarnSellPressure     WarningCode = "sell_pressure"
	WarnNewPool24h       WarningCode = "new_pool_24h"
	WarnNewPool72h       WarningCode = "new_pool_72h"
)

// Warning is a structured risk-warning tag with an optional numeric payload.
type Warning struct {
	Code  WarningCode `json:"code"`
	Value *float64    `json:"value,omitempty"`
}

func (w Warning) String() string {
	switch w.Code {
	case WarnLiquidityVeryLow:
		return "liquidity extremely low (<$10K)"
	case WarnLiquidityLow:
		return "liquidity low (<$50K)"
	case WarnFDVRatioHigh:
		if w.Value != nil {
			return fmt.Sprintf("FDV/market cap ratio high (%.1fx)", *w.Value)
		}
		return "FDV/market cap ratio high"
	case WarnSellPressure:
		if w.Value != nil {
			return fmt.Sprintf("heavy sell pressure (buy/sell %.2f)", *w.Value)
		}
		return "heavy sell pressure"
	case WarnNewPool24h:
		return "new pool risk (<24h)"
	case WarnNewPool72h:
		return "new pool (<3d)"
	}
	return string(w.Code)
}

// AnalysisResult is the full per-symbol outcome of one analysis pass.
// It is built in one shot and never mutated afterwards.
type AnalysisResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Source   string `json:"source"` // exchange | onchain
	Exchange string `json:"exchange,omitempty"`
	Chain    string `json:"chain,omitempty"`
	Address  string `json:"address,omitempty"`

	CurrentPrice   float64 `json:"current_price"`
	PriceChange1h  float64 `json:"price_change_1h"`
	PriceChange24h float64 `json:"price_change_24h"`
	PriceChange7d  float64 `json:"price_change_7d"`
	Volume24h      float64 `json:"volume_24h"`

	Technical TechnicalIndicators `json:"technical"`
	Onchain   OnchainIndicators   `json:"onchain"`

	Signal         SignalType `json:"signal"`
	SignalStrength int        `json:"signal_strength"` // 0..100
	SignalReasons  []Reason   `json:"signal_reasons"`
	RiskWarnings   []Warning  `json:"risk_warnings"`

	AnalysisTime time.Time `json:"analysis_time"`
}

// SummaryStats aggregates a batch of analysis results.
type SummaryStats struct {
	TotalCount         int                 `json:"total_count"`
	SignalDistribution map[SignalType]int  `json:"signal_distribution"`
	TrendDistribution  map[TrendStatus]int `json:"trend_distribution"`
	AverageBias        float64             `json:"average_bias"`
	AverageChange24h   float64             `json:"average_change_24h"`
	TopPerformers      []Performer         `json:"top_performers"`
	WorstPerformers    []Performer         `json:"worst_performers"`
}

// Performer is a symbol ranked by 24h price change.
type Performer struct {
	Symbol    string  `json:"symbol"`
	Change24h float64 `json:"change_24h"`
}

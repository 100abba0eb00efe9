package models

import "time"

// Candle represents one OHLCV bar.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Quote is a realtime market snapshot for an exchange-listed symbol.
type Quote struct {
	Symbol       string
	BaseCurrency string
	Price        float64
	Change24h    float64 // percent
	Volume24h    float64 // quote volume
	High24h      float64
	Low24h       float64
	Timestamp    time.Time
}

// TokenInfo is the onchain snapshot returned by the token data provider.
type TokenInfo struct {
	Symbol          string
	Name            string
	PriceUSD        float64
	PriceChange1h   float64
	PriceChange24h  float64
	Volume24h       float64
	MarketCap       *float64
	FDV             *float64
	LiquidityUSD    float64
	Txns24h         int
	Buys24h         int
	Sells24h        int
	HolderCount     *int
	HolderChange24h *int
	Top10Pct        *float64
	PoolCreatedAt   *time.Time
	MainPoolAddress string
}

package models

// Requests for the analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	// Identifier accepts "BTC/USDT", "binance:ETH/USDT" or "sol:<address>".
	Identifier string `query:"symbol" json:"symbol" validate:"required"`
	Timeframe  string `query:"tf" json:"tf" default:"4h" validate:"oneof=1h 4h 1d"`
}

type BatchRequest struct {
	Identifiers []string `json:"symbols" validate:"required,min=1,max=50,dive,required"`
	Timeframe   string   `json:"tf" default:"4h" validate:"oneof=1h 4h 1d"`
}

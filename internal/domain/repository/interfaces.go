package repository

import (
	"context"

	"CoinSight/internal/domain/models"
)

// MarketData supplies realtime quotes and candle history for exchange symbols.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	Klines(ctx context.Context, symbol string, tf Timeframe, limit int) ([]models.Candle, error)
}

// OnchainData supplies token snapshots and pool candles for onchain assets.
type OnchainData interface {
	Token(ctx context.Context, chain, address string) (*models.TokenInfo, error)
	PoolCandles(ctx context.Context, chain, poolAddress string, limit int) ([]models.Candle, error)
}

// ResultStore persists finished analysis results.
type ResultStore interface {
	Store(ctx context.Context, r *models.AnalysisResult) error
	StoreBatch(ctx context.Context, rs []*models.AnalysisResult) error
	Close() error
}

// ResultPublisher pushes finished results onto the downstream bus.
type ResultPublisher interface {
	Publish(ctx context.Context, r *models.AnalysisResult) error
	Close() error
}

// Metrics records operational counters for the analyzer.
type Metrics interface {
	RecordAnalysis(source, signal string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordSignalStrength(symbol string, strength float64)
}

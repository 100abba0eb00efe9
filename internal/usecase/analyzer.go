package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	"CoinSight/internal/services/indicators"
	"CoinSight/internal/services/risk"
	"CoinSight/internal/services/scoring"
	applogger "CoinSight/pkg/logger"
)

// Config is the analyzer's read-only configuration, fixed at construction.
type Config struct {
	Thresholds indicators.Thresholds
	MaxWorkers int
	Timeframe  drepo.Timeframe
	KlineLimit int
	Exchange   string // default exchange name for bare pair identifiers
}

// Analyzer drives the per-symbol analysis pipeline: fetch, indicators,
// risk detection, scoring, result assembly. All engine steps are pure;
// only the fetch collaborators block.
type Analyzer struct {
	market  drepo.MarketData
	onchain drepo.OnchainData
	store   drepo.ResultStore     // optional
	pub     drepo.ResultPublisher // optional
	metrics drepo.Metrics
	l       *applogger.Logger
	cfg     Config
}

func NewAnalyzer(
	market drepo.MarketData,
	onchain drepo.OnchainData,
	store drepo.ResultStore,
	pub drepo.ResultPublisher,
	metrics drepo.Metrics,
	l *applogger.Logger,
	cfg Config,
) *Analyzer {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 3
	}
	if cfg.KlineLimit <= 0 {
		cfg.KlineLimit = 100
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = drepo.DefaultTimeframe()
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "binance"
	}
	return &Analyzer{
		market:  market,
		onchain: onchain,
		store:   store,
		pub:     pub,
		metrics: metrics,
		l:       l,
		cfg:     cfg,
	}
}

// Analyze runs the full pipeline for one identifier on the configured
// candle timeframe.
func (a *Analyzer) Analyze(ctx context.Context, identifier string) (*models.AnalysisResult, error) {
	return a.AnalyzeTimeframe(ctx, identifier, a.cfg.Timeframe)
}

// AnalyzeTimeframe runs the full pipeline with an explicit candle timeframe.
func (a *Analyzer) AnalyzeTimeframe(ctx context.Context, identifier string, tf drepo.Timeframe) (*models.AnalysisResult, error) {
	result, err := a.analyze(ctx, identifier, tf)
	if err != nil {
		return nil, err
	}
	a.persist(ctx, result)
	return result, nil
}

// analyze runs the pipeline without persisting; the batch runner persists
// collected results in one pass instead.
func (a *Analyzer) analyze(ctx context.Context, identifier string, tf drepo.Timeframe) (*models.AnalysisResult, error) {
	start := time.Now()

	id, err := ParseIdentifier(identifier)
	if err != nil {
		a.metrics.RecordError("parse_identifier")
		return nil, err
	}

	var result *models.AnalysisResult
	switch id.Kind {
	case KindExchange:
		result, err = a.analyzeExchange(ctx, id, tf)
	case KindOnchain:
		result, err = a.analyzeOnchain(ctx, id)
	default:
		err = fmt.Errorf("unknown identifier kind %q", id.Kind)
	}
	if err != nil {
		a.metrics.RecordError("analyze")
		return nil, fmt.Errorf("analyze %s: %w", identifier, err)
	}

	a.metrics.RecordAnalysis(result.Source, string(result.Signal))
	a.metrics.RecordSignalStrength(result.Symbol, float64(result.SignalStrength))
	a.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	a.l.Info("analysis complete",
		applogger.String("symbol", result.Symbol),
		applogger.String("signal", string(result.Signal)),
		applogger.Int("strength", result.SignalStrength),
	)
	return result, nil
}

func (a *Analyzer) analyzeExchange(ctx context.Context, id Identifier, tf drepo.Timeframe) (*models.AnalysisResult, error) {
	exchange := id.Exchange
	if exchange == "" {
		exchange = a.cfg.Exchange
	}

	quote, err := a.market.Quote(ctx, id.Symbol)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", id.Symbol, err)
	}

	result := &models.AnalysisResult{
		Symbol:         id.Symbol,
		Name:           quote.BaseCurrency,
		Source:         models.SourceExchange,
		Exchange:       exchange,
		CurrentPrice:   quote.Price,
		PriceChange24h: quote.Change24h,
		Volume24h:      quote.Volume24h,
		Onchain:        models.OnchainIndicators{BuySellRatio: 1.0},
		AnalysisTime:   time.Now(),
	}

	// A missing candle series degrades to insufficient-data indicators.
	candles, err := a.market.Klines(ctx, id.Symbol, tf, a.cfg.KlineLimit)
	if err != nil {
		a.l.Warn("klines unavailable, scoring without technicals",
			applogger.String("symbol", id.Symbol),
			applogger.Error(err),
		)
		a.metrics.RecordError("klines")
		candles = nil
	}
	result.Technical = indicators.Compute(candles, a.cfg.Thresholds)

	a.score(result)
	return result, nil
}

func (a *Analyzer) analyzeOnchain(ctx context.Context, id Identifier) (*models.AnalysisResult, error) {
	token, err := a.onchain.Token(ctx, id.Chain, id.Address)
	if err != nil {
		return nil, fmt.Errorf("token %s:%s: %w", id.Chain, id.Address, err)
	}

	result := &models.AnalysisResult{
		Symbol:         token.Symbol,
		Name:           token.Name,
		Source:         models.SourceOnchain,
		Chain:          id.Chain,
		Address:        id.Address,
		CurrentPrice:   token.PriceUSD,
		PriceChange1h:  token.PriceChange1h,
		PriceChange24h: token.PriceChange24h,
		Volume24h:      token.Volume24h,
		Onchain: models.OnchainIndicators{
			HolderCount:     token.HolderCount,
			HolderChange24h: token.HolderChange24h,
			Top10Pct:        token.Top10Pct,
			LiquidityUSD:    token.LiquidityUSD,
			Txns24h:         token.Txns24h,
			Buys24h:         token.Buys24h,
			Sells24h:        token.Sells24h,
			BuySellRatio:    1.0,
			FDV:             token.FDV,
			MarketCap:       token.MarketCap,
			PoolCreatedAt:   token.PoolCreatedAt,
		},
		AnalysisTime: time.Now(),
	}
	if token.Sells24h > 0 {
		result.Onchain.BuySellRatio = float64(token.Buys24h) / float64(token.Sells24h)
	}

	if token.MainPoolAddress != "" {
		candles, err := a.onchain.PoolCandles(ctx, id.Chain, token.MainPoolAddress, a.cfg.KlineLimit)
		if err != nil {
			a.l.Warn("pool candles unavailable, scoring without technicals",
				applogger.String("chain", id.Chain),
				applogger.String("pool", token.MainPoolAddress),
				applogger.Error(err),
			)
			a.metrics.RecordError("pool_candles")
			candles = nil
		}
		result.Technical = indicators.Compute(candles, a.cfg.Thresholds)
	} else {
		result.Technical = indicators.Compute(nil, a.cfg.Thresholds)
	}

	result.RiskWarnings = risk.Detect(result.Onchain, time.Now())

	a.score(result)
	return result, nil
}

// score runs the pure scorer over computed facts and fills the signal fields.
func (a *Analyzer) score(r *models.AnalysisResult) {
	out := scoring.Score(scoring.Input{
		Trend:           r.Technical.TrendStatus,
		Bias:            r.Technical.BiasLevel,
		PriceChange24h:  r.PriceChange24h,
		VolumeChange24h: r.Technical.VolumeChange24h,
		BuySellRatio:    r.Onchain.BuySellRatio,
		HolderChange24h: r.Onchain.HolderChange24h,
		Warnings:        r.RiskWarnings,
	})
	r.Signal = out.Signal
	r.SignalStrength = out.Strength
	r.SignalReasons = out.Reasons
}

// persist writes the result to the store and bus, best-effort. Persistence
// failures never fail the analysis itself.
func (a *Analyzer) persist(ctx context.Context, r *models.AnalysisResult) {
	if a.store != nil {
		if err := a.store.Store(ctx, r); err != nil {
			a.metrics.RecordError("result_store")
			a.l.Warn("result store failed", applogger.String("symbol", r.Symbol), applogger.Error(err))
		}
	}
	a.publish(ctx, r)
}

// persistBatch writes a completed batch in one insert and publishes each
// result. Best-effort, same as persist.
func (a *Analyzer) persistBatch(ctx context.Context, rs []*models.AnalysisResult) {
	if len(rs) == 0 {
		return
	}
	if a.store != nil {
		if err := a.store.StoreBatch(ctx, rs); err != nil {
			a.metrics.RecordError("result_store")
			a.l.Warn("batch result store failed", applogger.Int("results", len(rs)), applogger.Error(err))
		}
	}
	for _, r := range rs {
		a.publish(ctx, r)
	}
}

func (a *Analyzer) publish(ctx context.Context, r *models.AnalysisResult) {
	if a.pub == nil {
		return
	}
	if err := a.pub.Publish(ctx, r); err != nil {
		a.metrics.RecordError("result_publish")
		a.l.Warn("result publish failed", applogger.String("symbol", r.Symbol), applogger.Error(err))
	}
}

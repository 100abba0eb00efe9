package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	"CoinSight/pkg/logger"
)

// --- fakes ---

type fakeMarket struct {
	quoteFn  func(ctx context.Context, symbol string) (*models.Quote, error)
	klinesFn func(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error)
}

func (f *fakeMarket) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return f.quoteFn(ctx, symbol)
}

func (f *fakeMarket) Klines(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	if f.klinesFn == nil {
		return nil, nil
	}
	return f.klinesFn(ctx, symbol, tf, limit)
}

type fakeOnchain struct {
	tokenFn   func(ctx context.Context, chain, address string) (*models.TokenInfo, error)
	candlesFn func(ctx context.Context, chain, poolAddress string, limit int) ([]models.Candle, error)
}

func (f *fakeOnchain) Token(ctx context.Context, chain, address string) (*models.TokenInfo, error) {
	return f.tokenFn(ctx, chain, address)
}

func (f *fakeOnchain) PoolCandles(ctx context.Context, chain, poolAddress string, limit int) ([]models.Candle, error) {
	if f.candlesFn == nil {
		return nil, nil
	}
	return f.candlesFn(ctx, chain, poolAddress, limit)
}

type fakeMetrics struct {
	mu       sync.Mutex
	analyses []string
	errs     map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errs: make(map[string]int)}
}

func (m *fakeMetrics) RecordAnalysis(source, signal string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses = append(m.analyses, source+"/"+signal)
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *fakeMetrics) RecordLatency(op string, seconds float64) {}

func (m *fakeMetrics) RecordSignalStrength(symbol string, strength float64) {}

func (m *fakeMetrics) errCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errs[kind]
}

type fakeStore struct {
	mu      sync.Mutex
	stored  []*models.AnalysisResult
	batches [][]*models.AnalysisResult
	err     error
}

func (s *fakeStore) Store(ctx context.Context, r *models.AnalysisResult) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, r)
	return nil
}

func (s *fakeStore) StoreBatch(ctx context.Context, rs []*models.AnalysisResult) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, rs)
	return nil
}

func (s *fakeStore) Close() error { return nil }

// --- helpers ---

func risingCandles(n int) []models.Candle {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		price := 100 + float64(i)
		candles[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * 4 * time.Hour),
			Open:      price - 0.5,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000,
		}
	}
	return candles
}

func flatQuote(symbol string) *models.Quote {
	return &models.Quote{
		Symbol:       symbol,
		BaseCurrency: "BTC",
		Price:        65000,
		Change24h:    0,
		Volume24h:    1_000_000,
		Timestamp:    time.Now(),
	}
}

func newTestAnalyzer(market drepo.MarketData, onchain drepo.OnchainData, store drepo.ResultStore, m drepo.Metrics) *Analyzer {
	return NewAnalyzer(market, onchain, store, nil, m, logger.Nop(), Config{})
}

// --- tests ---

func TestAnalyzeExchangeBullish(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return flatQuote(symbol), nil
		},
		klinesFn: func(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
			return risingCandles(120), nil
		},
	}
	m := newFakeMetrics()
	a := newTestAnalyzer(market, nil, nil, m)

	r, err := a.Analyze(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if r.Source != models.SourceExchange {
		t.Errorf("Source = %q, want %q", r.Source, models.SourceExchange)
	}
	if r.Exchange != "binance" {
		t.Errorf("Exchange = %q, want default binance", r.Exchange)
	}
	if r.Technical.TrendStatus != models.TrendBullishAligned {
		t.Errorf("TrendStatus = %q, want %q", r.Technical.TrendStatus, models.TrendBullishAligned)
	}
	// Rising series on linear closes keeps bias under the low threshold:
	// only the trend modifier fires. 50 + 20 = 70.
	if r.SignalStrength != 70 {
		t.Errorf("SignalStrength = %d, want 70", r.SignalStrength)
	}
	if r.Signal != models.SignalBuy {
		t.Errorf("Signal = %q, want %q", r.Signal, models.SignalBuy)
	}
	if len(r.RiskWarnings) != 0 {
		t.Errorf("exchange asset carries risk warnings: %v", r.RiskWarnings)
	}
	if r.Onchain.BuySellRatio != 1.0 {
		t.Errorf("BuySellRatio = %v, want neutral 1.0", r.Onchain.BuySellRatio)
	}
}

func TestAnalyzeExchangeNamedExchange(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return flatQuote(symbol), nil
		},
	}
	a := newTestAnalyzer(market, nil, nil, newFakeMetrics())

	r, err := a.Analyze(context.Background(), "kraken:BTC/USDT")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Exchange != "kraken" {
		t.Errorf("Exchange = %q, want kraken", r.Exchange)
	}
}

func TestAnalyzeExchangeKlinesFailureDegrades(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return flatQuote(symbol), nil
		},
		klinesFn: func(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
			return nil, errors.New("upstream 503")
		},
	}
	m := newFakeMetrics()
	a := newTestAnalyzer(market, nil, nil, m)

	r, err := a.Analyze(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("Analyze should degrade, not fail: %v", err)
	}
	if r.Technical.TrendStatus != models.TrendInsufficientData {
		t.Errorf("TrendStatus = %q, want %q", r.Technical.TrendStatus, models.TrendInsufficientData)
	}
	if r.SignalStrength != 50 || r.Signal != models.SignalHold {
		t.Errorf("got %d/%s, want neutral 50/hold", r.SignalStrength, r.Signal)
	}
	if m.errCount("klines") != 1 {
		t.Errorf("klines error count = %d, want 1", m.errCount("klines"))
	}
}

func TestAnalyzeExchangeQuoteFailureFails(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return nil, errors.New("symbol not found")
		},
	}
	m := newFakeMetrics()
	a := newTestAnalyzer(market, nil, nil, m)

	if _, err := a.Analyze(context.Background(), "NOPE/USDT"); err == nil {
		t.Fatal("expected error when the quote fetch fails")
	}
	if m.errCount("analyze") != 1 {
		t.Errorf("analyze error count = %d, want 1", m.errCount("analyze"))
	}
}

func TestAnalyzeOnchainRiskyToken(t *testing.T) {
	marketCap := 50_000.0
	fdv := 1_000_000.0
	created := time.Now().Add(-6 * time.Hour)

	onchain := &fakeOnchain{
		tokenFn: func(ctx context.Context, chain, address string) (*models.TokenInfo, error) {
			return &models.TokenInfo{
				Symbol:        "PUMP",
				Name:          "Pump Token",
				PriceUSD:      0.0001,
				Volume24h:     25_000,
				MarketCap:     &marketCap,
				FDV:           &fdv,
				LiquidityUSD:  5_000,
				Txns24h:       50,
				Buys24h:       10,
				Sells24h:      40,
				PoolCreatedAt: &created,
			}, nil
		},
	}
	m := newFakeMetrics()
	a := newTestAnalyzer(nil, onchain, nil, m)

	r, err := a.Analyze(context.Background(), "sol:So11111111111111111111111111111111111111112")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if r.Source != models.SourceOnchain {
		t.Errorf("Source = %q, want %q", r.Source, models.SourceOnchain)
	}
	if r.Chain != "sol" {
		t.Errorf("Chain = %q, want sol", r.Chain)
	}
	// Low liquidity, 20x FDV/mcap, 0.25 buy/sell and a 6h pool should all fire.
	if len(r.RiskWarnings) != 4 {
		t.Fatalf("RiskWarnings = %v, want 4 warnings", r.RiskWarnings)
	}
	wantCodes := map[models.WarningCode]bool{
		models.WarnLiquidityVeryLow: true,
		models.WarnFDVRatioHigh:     true,
		models.WarnSellPressure:     true,
		models.WarnNewPool24h:       true,
	}
	for _, w := range r.RiskWarnings {
		if !wantCodes[w.Code] {
			t.Errorf("unexpected warning %q", w.Code)
		}
	}

	if got := r.Onchain.BuySellRatio; got != 0.25 {
		t.Errorf("BuySellRatio = %v, want 0.25", got)
	}
	// 50 - 10 (sell pressure) - 20 (four warnings) = 20.
	if r.SignalStrength != 20 {
		t.Errorf("SignalStrength = %d, want 20", r.SignalStrength)
	}
	if r.Signal != models.SignalStrongSell {
		t.Errorf("Signal = %q, want %q", r.Signal, models.SignalStrongSell)
	}

	var hasMultipleRisks bool
	for _, reason := range r.SignalReasons {
		if reason.Code == models.ReasonMultipleRisks {
			hasMultipleRisks = true
		}
	}
	if !hasMultipleRisks {
		t.Error("expected multiple_risks reason with 4 warnings")
	}
}

func TestAnalyzeOnchainNoSells(t *testing.T) {
	onchain := &fakeOnchain{
		tokenFn: func(ctx context.Context, chain, address string) (*models.TokenInfo, error) {
			return &models.TokenInfo{
				Symbol:       "FRESH",
				PriceUSD:     1.5,
				LiquidityUSD: 250_000,
				Buys24h:      30,
				Sells24h:     0,
			}, nil
		},
	}
	a := newTestAnalyzer(nil, onchain, nil, newFakeMetrics())

	r, err := a.Analyze(context.Background(), "eth:0xdeadbeef")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Onchain.BuySellRatio != 1.0 {
		t.Errorf("BuySellRatio with zero sells = %v, want 1.0", r.Onchain.BuySellRatio)
	}
}

func TestAnalyzeStoresResult(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return flatQuote(symbol), nil
		},
	}
	store := &fakeStore{}
	a := newTestAnalyzer(market, nil, store, newFakeMetrics())

	if _, err := a.Analyze(context.Background(), "BTC/USDT"); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("stored %d results, want 1", len(store.stored))
	}
}

func TestAnalyzeStoreFailureIsNonFatal(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return flatQuote(symbol), nil
		},
	}
	store := &fakeStore{err: errors.New("clickhouse down")}
	m := newFakeMetrics()
	a := newTestAnalyzer(market, nil, store, m)

	r, err := a.Analyze(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("persistence failure must not fail the analysis: %v", err)
	}
	if r == nil {
		t.Fatal("expected a result despite store failure")
	}
	if m.errCount("result_store") != 1 {
		t.Errorf("result_store error count = %d, want 1", m.errCount("result_store"))
	}
}

func TestAnalyzeBadIdentifier(t *testing.T) {
	m := newFakeMetrics()
	a := newTestAnalyzer(nil, nil, nil, m)

	if _, err := a.Analyze(context.Background(), "not-an-identifier"); err == nil {
		t.Fatal("expected parse error")
	}
	if m.errCount("parse_identifier") != 1 {
		t.Errorf("parse_identifier error count = %d, want 1", m.errCount("parse_identifier"))
	}
}

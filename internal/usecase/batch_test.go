package usecase

import (
	"context"
	"errors"
	"testing"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	"CoinSight/pkg/logger"
)

func TestAnalyzeBatchOmitsFailures(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			if symbol == "BAD/USDT" {
				return nil, errors.New("unknown symbol")
			}
			return flatQuote(symbol), nil
		},
		klinesFn: func(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
			if symbol == "UP/USDT" {
				return risingCandles(120), nil
			}
			return nil, nil
		},
	}
	m := newFakeMetrics()
	a := newTestAnalyzer(market, nil, nil, m)

	results := a.AnalyzeBatch(context.Background(), []string{"FLAT/USDT", "BAD/USDT", "UP/USDT"})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (failing symbol omitted)", len(results))
	}
	// Sorted by strength descending: bullish 70 before neutral 50.
	if results[0].Symbol != "UP/USDT" || results[0].SignalStrength != 70 {
		t.Errorf("results[0] = %s/%d, want UP/USDT/70", results[0].Symbol, results[0].SignalStrength)
	}
	if results[1].Symbol != "FLAT/USDT" || results[1].SignalStrength != 50 {
		t.Errorf("results[1] = %s/%d, want FLAT/USDT/50", results[1].Symbol, results[1].SignalStrength)
	}
}

func TestAnalyzeBatchIsolatesPanics(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			if symbol == "BOOM/USDT" {
				panic("provider bug")
			}
			return flatQuote(symbol), nil
		},
	}
	m := newFakeMetrics()
	a := newTestAnalyzer(market, nil, nil, m)

	results := a.AnalyzeBatch(context.Background(), []string{"A/USDT", "BOOM/USDT", "B/USDT"})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (panicking symbol omitted)", len(results))
	}
	for _, r := range results {
		if r.Symbol == "BOOM/USDT" {
			t.Error("panicking symbol leaked into results")
		}
	}
	if m.errCount("analyze_panic") != 1 {
		t.Errorf("analyze_panic count = %d, want 1", m.errCount("analyze_panic"))
	}
}

func TestAnalyzeBatchStoresOnce(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			if symbol == "BAD/USDT" {
				return nil, errors.New("unknown symbol")
			}
			return flatQuote(symbol), nil
		},
	}
	store := &fakeStore{}
	a := newTestAnalyzer(market, nil, store, newFakeMetrics())

	a.AnalyzeBatch(context.Background(), []string{"A/USDT", "BAD/USDT", "B/USDT"})

	if len(store.stored) != 0 {
		t.Errorf("per-result stores = %d, want 0 (batch persists in one insert)", len(store.stored))
	}
	if len(store.batches) != 1 {
		t.Fatalf("batch stores = %d, want 1", len(store.batches))
	}
	if len(store.batches[0]) != 2 {
		t.Errorf("batch rows = %d, want 2 (failing symbol omitted)", len(store.batches[0]))
	}
}

func TestAnalyzeBatchStoreFailureIsNonFatal(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return flatQuote(symbol), nil
		},
	}
	store := &fakeStore{err: errors.New("clickhouse down")}
	m := newFakeMetrics()
	a := newTestAnalyzer(market, nil, store, m)

	results := a.AnalyzeBatch(context.Background(), []string{"A/USDT", "B/USDT"})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (store failure must not drop results)", len(results))
	}
	if m.errCount("result_store") != 1 {
		t.Errorf("result_store error count = %d, want 1", m.errCount("result_store"))
	}
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	a := newTestAnalyzer(nil, nil, nil, newFakeMetrics())
	if got := a.AnalyzeBatch(context.Background(), nil); got != nil {
		t.Errorf("AnalyzeBatch(nil) = %v, want nil", got)
	}
}

func TestAnalyzeBatchMoreSymbolsThanWorkers(t *testing.T) {
	market := &fakeMarket{
		quoteFn: func(ctx context.Context, symbol string) (*models.Quote, error) {
			return flatQuote(symbol), nil
		},
	}
	a := NewAnalyzer(market, nil, nil, nil, newFakeMetrics(), logger.Nop(), Config{MaxWorkers: 2})

	ids := []string{"A/USDT", "B/USDT", "C/USDT", "D/USDT", "E/USDT", "F/USDT", "G/USDT"}
	results := a.AnalyzeBatch(context.Background(), ids)
	if len(results) != len(ids) {
		t.Fatalf("got %d results, want %d", len(results), len(ids))
	}
}

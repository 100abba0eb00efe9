package onchain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const tokenBody = `{
	"data": {
		"attributes": {
			"name": "Wrapped SOL",
			"symbol": "wsol",
			"price_usd": "145.32",
			"fdv_usd": "68000000000",
			"market_cap_usd": "67000000000",
			"volume_usd": {"h24": "1200000.50"}
		}
	},
	"included": [
		{
			"type": "pool",
			"attributes": {
				"address": "pool-small",
				"reserve_in_usd": "50000",
				"pool_created_at": "2024-01-15T10:00:00Z",
				"price_change_percentage": {"h1": "0.1", "h24": "1.0"},
				"transactions": {"h24": {"buys": 5, "sells": 3}}
			}
		},
		{
			"type": "pool",
			"attributes": {
				"address": "pool-main",
				"reserve_in_usd": "2500000",
				"pool_created_at": "2023-06-01T00:00:00Z",
				"price_change_percentage": {"h1": "0.5", "h24": "3.2"},
				"transactions": {"h24": {"buys": 120, "sells": 80}}
			}
		}
	]
}`

func TestToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/networks/solana/tokens/abc123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("include"); got != "top_pools" {
			t.Errorf("include = %q, want top_pools", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tokenBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second, 1000)
	info, err := c.Token(context.Background(), "solana", "abc123")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	if info.Symbol != "WSOL" {
		t.Errorf("Symbol = %q, want WSOL", info.Symbol)
	}
	if info.PriceUSD != 145.32 {
		t.Errorf("PriceUSD = %v, want 145.32", info.PriceUSD)
	}
	if info.MainPoolAddress != "pool-main" {
		t.Errorf("MainPoolAddress = %q, want deepest pool", info.MainPoolAddress)
	}
	if info.LiquidityUSD != 2500000 {
		t.Errorf("LiquidityUSD = %v, want 2500000", info.LiquidityUSD)
	}
	if info.Buys24h != 120 || info.Sells24h != 80 || info.Txns24h != 200 {
		t.Errorf("txns = %d/%d/%d, want 120/80/200", info.Buys24h, info.Sells24h, info.Txns24h)
	}
	if info.PriceChange24h != 3.2 {
		t.Errorf("PriceChange24h = %v, want 3.2", info.PriceChange24h)
	}
	if info.FDV == nil || *info.FDV != 68000000000 {
		t.Errorf("FDV = %v, want 68000000000", info.FDV)
	}
	if info.PoolCreatedAt == nil || info.PoolCreatedAt.Year() != 2023 {
		t.Errorf("PoolCreatedAt = %v, want main pool's 2023 timestamp", info.PoolCreatedAt)
	}
}

func TestTokenNoPools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"attributes": {"name": "Bare", "symbol": "bare", "price_usd": "0.01"}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second, 1000)
	info, err := c.Token(context.Background(), "eth", "0xbare")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if info.MainPoolAddress != "" {
		t.Errorf("MainPoolAddress = %q, want empty", info.MainPoolAddress)
	}
	if info.LiquidityUSD != 0 {
		t.Errorf("LiquidityUSD = %v, want 0", info.LiquidityUSD)
	}
}

func TestTokenNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"status":"404"}]}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second, 1000)
	if _, err := c.Token(context.Background(), "eth", "0xmissing"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestTokenAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		_, _ = w.Write([]byte(`{"data": {"attributes": {"symbol": "x", "price_usd": "1"}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sekrit", 5*time.Second, 1000)
	if _, err := c.Token(context.Background(), "eth", "0xabc"); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if gotKey != "sekrit" {
		t.Errorf("x-api-key = %q, want sekrit", gotKey)
	}
}

func TestPoolCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/networks/solana/pools/pool-main/ohlcv/hour" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("aggregate"); got != "4" {
			t.Errorf("aggregate = %q, want 4", got)
		}
		_, _ = w.Write([]byte(`{
			"data": {"attributes": {"ohlcv_list": [
				[1717214400, 108.0, 112.0, 101.0, 110.0, 4200.0],
				[1717200000, 100.0, 110.0, 95.0, 108.0, 5000.0]
			]}}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second, 1000)
	candles, err := c.PoolCandles(context.Background(), "solana", "pool-main", 100)
	if err != nil {
		t.Fatalf("PoolCandles: %v", err)
	}

	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	// Rows arrive newest first and must come back oldest first.
	if !candles[0].Timestamp.Before(candles[1].Timestamp) {
		t.Errorf("candles not in chronological order: %v, %v",
			candles[0].Timestamp, candles[1].Timestamp)
	}
	if candles[0].Close != 108.0 {
		t.Errorf("first close = %v, want 108", candles[0].Close)
	}
}

func TestPoolCandlesMalformedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"attributes": {"ohlcv_list": [[1717200000, 100.0]]}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second, 1000)
	if _, err := c.PoolCandles(context.Background(), "solana", "p", 10); err == nil {
		t.Fatal("expected error for short ohlcv row")
	}
}

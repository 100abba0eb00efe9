package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	"CoinSight/internal/service/cache"
	"CoinSight/internal/usecase"
	"CoinSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubMarket struct {
	quoteCalls atomic.Int64
	failFor    string
}

func (s *stubMarket) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	s.quoteCalls.Add(1)
	if symbol == s.failFor {
		return nil, errors.New("unknown symbol")
	}
	return &models.Quote{
		Symbol:       symbol,
		BaseCurrency: "BTC",
		Price:        65000,
		Volume24h:    1_000_000,
		Timestamp:    time.Now(),
	}, nil
}

func (s *stubMarket) Klines(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	return nil, nil
}

type noopMetrics struct{}

func (noopMetrics) RecordAnalysis(source, signal string) {}

func (noopMetrics) RecordError(kind string) {}

func (noopMetrics) RecordLatency(op string, seconds float64) {}

func (noopMetrics) RecordSignalStrength(symbol string, strength float64) {}

func newTestHandler(market *stubMarket, watchlist []string) *AnalysisHandler {
	analyzer := usecase.NewAnalyzer(market, nil, nil, nil, noopMetrics{}, logger.Nop(), usecase.Config{})
	return NewAnalysisHandler(logger.Nop(), analyzer, watchlist)
}

func doRequest(h *AnalysisHandler, method, target, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (int, json.RawMessage) {
	t.Helper()
	var envelope struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return envelope.Status, envelope.Data
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestHandler(&stubMarket{}, nil)

	rec := doRequest(h, http.MethodGet, "/api/analyze?symbol=BTC/USDT", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	status, data := decodeEnvelope(t, rec)
	if status != http.StatusOK {
		t.Errorf("envelope status = %d, want 200", status)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Symbol != "BTC/USDT" {
		t.Errorf("Symbol = %q, want BTC/USDT", result.Symbol)
	}
	if result.Signal != models.SignalHold {
		t.Errorf("Signal = %q, want hold with no data", result.Signal)
	}
}

func TestAnalyzeEndpointMissingSymbol(t *testing.T) {
	h := newTestHandler(&stubMarket{}, nil)

	rec := doRequest(h, http.MethodGet, "/api/analyze", "")
	status, _ := decodeEnvelope(t, rec)
	if status != http.StatusBadRequest {
		t.Errorf("envelope status = %d, want 400", status)
	}
}

func TestAnalyzeEndpointUnknownSymbol(t *testing.T) {
	h := newTestHandler(&stubMarket{failFor: "NOPE/USDT"}, nil)

	rec := doRequest(h, http.MethodGet, "/api/analyze?symbol=NOPE/USDT", "")
	status, _ := decodeEnvelope(t, rec)
	if status != http.StatusBadRequest {
		t.Errorf("envelope status = %d, want 400", status)
	}
}

func TestAnalyzeEndpointCaches(t *testing.T) {
	market := &stubMarket{}
	h := newTestHandler(market, nil)
	h.SetCache(cache.NewTTLCache(), time.Minute)

	for i := 0; i < 2; i++ {
		rec := doRequest(h, http.MethodGet, "/api/analyze?symbol=BTC/USDT", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}

	if got := market.quoteCalls.Load(); got != 1 {
		t.Errorf("quote calls = %d, want 1 (second hit served from cache)", got)
	}
}

// recordingCache captures the TTL passed on writes.
type recordingCache struct {
	ttls []time.Duration
}

func (c *recordingCache) GetBytes(key string) ([]byte, bool, error) { return nil, false, nil }

func (c *recordingCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	c.ttls = append(c.ttls, ttl)
	return nil
}

func TestAnalyzeEndpointCacheTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"configured", 5 * time.Minute, 5 * time.Minute},
		{"zero falls back to default", 0, defaultCacheTTL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &recordingCache{}
			h := newTestHandler(&stubMarket{}, nil)
			h.SetCache(rc, tt.ttl)

			rec := doRequest(h, http.MethodGet, "/api/analyze?symbol=BTC/USDT", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if len(rc.ttls) != 1 || rc.ttls[0] != tt.want {
				t.Errorf("cache write ttls = %v, want one entry of %v", rc.ttls, tt.want)
			}
		})
	}
}

func TestBatchEndpoint(t *testing.T) {
	h := newTestHandler(&stubMarket{failFor: "BAD/USDT"}, nil)

	rec := doRequest(h, http.MethodPost, "/api/batch",
		`{"symbols": ["BTC/USDT", "BAD/USDT", "ETH/USDT"], "tf": "1h"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	_, data := decodeEnvelope(t, rec)
	var resp batchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode batch response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results = %d, want 2 (failed symbol omitted)", len(resp.Results))
	}
	if resp.Summary == nil || resp.Summary.TotalCount != 2 {
		t.Errorf("summary = %+v, want total 2", resp.Summary)
	}
}

func TestBatchEndpointValidation(t *testing.T) {
	h := newTestHandler(&stubMarket{}, nil)

	rec := doRequest(h, http.MethodPost, "/api/batch", `{"symbols": []}`)
	status, _ := decodeEnvelope(t, rec)
	if status != http.StatusBadRequest {
		t.Errorf("envelope status = %d, want 400 for empty symbols", status)
	}
}

func TestWatchlistEndpoint(t *testing.T) {
	h := newTestHandler(&stubMarket{}, []string{"BTC/USDT", "ETH/USDT"})

	rec := doRequest(h, http.MethodGet, "/api/watchlist", "")
	_, data := decodeEnvelope(t, rec)

	var list struct {
		Rows  []string `json:"rows"`
		Total int64    `json:"total"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 2 || len(list.Rows) != 2 {
		t.Errorf("list = %+v, want 2 rows", list)
	}
}

func TestSummaryEndpointEmptyWatchlist(t *testing.T) {
	h := newTestHandler(&stubMarket{}, nil)

	rec := doRequest(h, http.MethodGet, "/api/summary", "")
	status, _ := decodeEnvelope(t, rec)
	if status != http.StatusNotFound {
		t.Errorf("envelope status = %d, want 404 for empty watchlist", status)
	}
}

func TestResultsEndpointDisabled(t *testing.T) {
	h := newTestHandler(&stubMarket{}, nil)

	rec := doRequest(h, http.MethodGet, "/api/results", "")
	status, _ := decodeEnvelope(t, rec)
	if status != http.StatusNotFound {
		t.Errorf("envelope status = %d, want 404 when history disabled", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(&stubMarket{}, nil)

	rec := doRequest(h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

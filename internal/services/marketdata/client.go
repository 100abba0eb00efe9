package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	"CoinSight/internal/service/ratelimit"
	apphttp "CoinSight/pkg/http"
)

const limiterKey = "exchange_rest"

// Client implements MarketData against a Binance-compatible REST API.
type Client struct {
	baseURL string
	http    *apphttp.Client
	limiter *ratelimit.Limiter
	rps     float64
}

func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    apphttp.NewClient(apphttp.WithTimeout(timeout)),
		limiter: ratelimit.New(),
		rps:     rps,
	}
}

// PairToMarket converts "BTC/USDT" to the exchange market code "BTCUSDT".
func PairToMarket(pair string) string {
	return strings.ToUpper(strings.ReplaceAll(pair, "/", ""))
}

type tickerResponse struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	CloseTime          int64  `json:"closeTime"`
}

// Quote fetches the rolling 24h ticker for a pair.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := c.limiter.Wait(ctx, limiterKey, c.rps, c.rps); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var tr tickerResponse
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    c.baseURL + "/api/v3/ticker/24hr",
		QueryParams: map[string][]string{
			"symbol": {PairToMarket(symbol)},
		},
	}, &tr)
	if err != nil {
		return nil, fmt.Errorf("ticker %s: %w", symbol, err)
	}

	price, err := strconv.ParseFloat(tr.LastPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("ticker %s: bad last price %q", symbol, tr.LastPrice)
	}
	change, _ := strconv.ParseFloat(tr.PriceChangePercent, 64)
	volume, _ := strconv.ParseFloat(tr.QuoteVolume, 64)
	high, _ := strconv.ParseFloat(tr.HighPrice, 64)
	low, _ := strconv.ParseFloat(tr.LowPrice, 64)

	base, _, _ := strings.Cut(symbol, "/")
	return &models.Quote{
		Symbol:       symbol,
		BaseCurrency: strings.ToUpper(base),
		Price:        price,
		Change24h:    change,
		Volume24h:    volume,
		High24h:      high,
		Low24h:       low,
		Timestamp:    time.UnixMilli(tr.CloseTime),
	}, nil
}

// Klines fetches historical candles, oldest first.
func (c *Client) Klines(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	if err := c.limiter.Wait(ctx, limiterKey, c.rps, c.rps); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var raw []json.RawMessage
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    c.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {PairToMarket(symbol)},
			"interval": {string(tf)},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("klines %s: %w", symbol, err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, row := range raw {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("klines %s: %w", symbol, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKline decodes one exchange kline row:
// [openTime, open, high, low, close, volume, closeTime, ...]
// where prices and volume come as strings.
func parseKline(row json.RawMessage) (models.Candle, error) {
	var fields []interface{}
	if err := json.Unmarshal(row, &fields); err != nil {
		return models.Candle{}, fmt.Errorf("decode kline row: %w", err)
	}
	if len(fields) < 6 {
		return models.Candle{}, fmt.Errorf("kline row has %d fields, want at least 6", len(fields))
	}

	openTime, ok := fields[0].(float64)
	if !ok {
		return models.Candle{}, fmt.Errorf("kline open time is %T, want number", fields[0])
	}

	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := fields[i].(string)
		if !ok {
			return models.Candle{}, fmt.Errorf("kline field %d is %T, want string", i, fields[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		vals[i-1] = v
	}

	return models.Candle{
		Timestamp: time.UnixMilli(int64(openTime)),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

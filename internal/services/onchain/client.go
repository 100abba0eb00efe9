package onchain

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"CoinSight/internal/domain/models"
	"CoinSight/internal/service/ratelimit"
	apphttp "CoinSight/pkg/http"
)

const limiterKey = "onchain_rest"

// Client implements OnchainData against a GeckoTerminal-compatible API.
type Client struct {
	baseURL string
	apiKey  string
	http    *apphttp.Client
	limiter *ratelimit.Limiter
	rps     float64
}

func NewClient(baseURL, apiKey string, timeout time.Duration, rps float64) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    apphttp.NewClient(apphttp.WithTimeout(timeout)),
		limiter: ratelimit.New(),
		rps:     rps,
	}
}

type tokenDocument struct {
	Data struct {
		Attributes struct {
			Name         string  `json:"name"`
			Symbol       string  `json:"symbol"`
			PriceUSD     *string `json:"price_usd"`
			FDVUSD       *string `json:"fdv_usd"`
			MarketCapUSD *string `json:"market_cap_usd"`
			VolumeUSD    struct {
				H24 *string `json:"h24"`
			} `json:"volume_usd"`
		} `json:"attributes"`
	} `json:"data"`
	Included []struct {
		Type       string `json:"type"`
		Attributes struct {
			Address       string  `json:"address"`
			ReserveInUSD  *string `json:"reserve_in_usd"`
			PoolCreatedAt *string `json:"pool_created_at"`
			PriceChange   struct {
				H1  *string `json:"h1"`
				H24 *string `json:"h24"`
			} `json:"price_change_percentage"`
			Transactions struct {
				H24 struct {
					Buys  int `json:"buys"`
					Sells int `json:"sells"`
				} `json:"h24"`
			} `json:"transactions"`
		} `json:"attributes"`
	} `json:"included"`
}

// Token fetches a token snapshot with its top pools included. Pool-level
// facts (liquidity, transactions, age) come from the deepest pool.
func (c *Client) Token(ctx context.Context, chain, address string) (*models.TokenInfo, error) {
	if err := c.limiter.Wait(ctx, limiterKey, c.rps, c.rps); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var doc tokenDocument
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:  apphttp.MethodGet,
		URL:     fmt.Sprintf("%s/networks/%s/tokens/%s", c.baseURL, chain, address),
		Headers: c.headers(),
		QueryParams: map[string][]string{
			"include": {"top_pools"},
		},
	}, &doc)
	if err != nil {
		return nil, fmt.Errorf("token %s/%s: %w", chain, address, err)
	}

	attrs := doc.Data.Attributes
	info := &models.TokenInfo{
		Symbol:    strings.ToUpper(attrs.Symbol),
		Name:      attrs.Name,
		MarketCap: parseOptFloat(attrs.MarketCapUSD),
		FDV:       parseOptFloat(attrs.FDVUSD),
	}
	if p := parseOptFloat(attrs.PriceUSD); p != nil {
		info.PriceUSD = *p
	}
	if v := parseOptFloat(attrs.VolumeUSD.H24); v != nil {
		info.Volume24h = *v
	}

	pools := make([]poolFacts, 0, len(doc.Included))
	for _, inc := range doc.Included {
		if inc.Type != "pool" {
			continue
		}
		pf := poolFacts{
			address: inc.Attributes.Address,
			buys:    inc.Attributes.Transactions.H24.Buys,
			sells:   inc.Attributes.Transactions.H24.Sells,
		}
		if r := parseOptFloat(inc.Attributes.ReserveInUSD); r != nil {
			pf.reserve = *r
		}
		pf.change1h = parseOptFloat(inc.Attributes.PriceChange.H1)
		pf.change24h = parseOptFloat(inc.Attributes.PriceChange.H24)
		if inc.Attributes.PoolCreatedAt != nil {
			if ts, err := time.Parse(time.RFC3339, *inc.Attributes.PoolCreatedAt); err == nil {
				pf.createdAt = &ts
			}
		}
		pools = append(pools, pf)
	}
	if len(pools) > 0 {
		sort.SliceStable(pools, func(i, j int) bool {
			return pools[i].reserve > pools[j].reserve
		})
		main := pools[0]
		info.MainPoolAddress = main.address
		info.LiquidityUSD = main.reserve
		info.Buys24h = main.buys
		info.Sells24h = main.sells
		info.Txns24h = main.buys + main.sells
		info.PoolCreatedAt = main.createdAt
		if main.change1h != nil {
			info.PriceChange1h = *main.change1h
		}
		if main.change24h != nil {
			info.PriceChange24h = *main.change24h
		}
	}

	return info, nil
}

type poolFacts struct {
	address   string
	reserve   float64
	buys      int
	sells     int
	change1h  *float64
	change24h *float64
	createdAt *time.Time
}

type ohlcvDocument struct {
	Data struct {
		Attributes struct {
			OHLCVList [][]float64 `json:"ohlcv_list"`
		} `json:"attributes"`
	} `json:"data"`
}

// PoolCandles fetches 4-hour candles for a pool, oldest first.
func (c *Client) PoolCandles(ctx context.Context, chain, poolAddress string, limit int) ([]models.Candle, error) {
	if err := c.limiter.Wait(ctx, limiterKey, c.rps, c.rps); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var doc ohlcvDocument
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:  apphttp.MethodGet,
		URL:     fmt.Sprintf("%s/networks/%s/pools/%s/ohlcv/hour", c.baseURL, chain, poolAddress),
		Headers: c.headers(),
		QueryParams: map[string][]string{
			"aggregate": {"4"},
			"limit":     {strconv.Itoa(limit)},
		},
	}, &doc)
	if err != nil {
		return nil, fmt.Errorf("pool ohlcv %s/%s: %w", chain, poolAddress, err)
	}

	rows := doc.Data.Attributes.OHLCVList
	candles := make([]models.Candle, 0, len(rows))
	// The API returns newest first; the indicator pipeline wants oldest first.
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if len(row) < 6 {
			return nil, fmt.Errorf("pool ohlcv %s/%s: row has %d fields", chain, poolAddress, len(row))
		}
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(int64(row[0]), 0),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
			Volume:    row[5],
		})
	}
	return candles, nil
}

func (c *Client) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		h["x-api-key"] = c.apiKey
	}
	return h
}

func parseOptFloat(s *string) *float64 {
	if s == nil || *s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return &v
}

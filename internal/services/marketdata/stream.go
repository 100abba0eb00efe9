package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"CoinSight/internal/domain/models"
	applogger "CoinSight/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream keeps a live quote cache fed by the exchange miniTicker
// websocket feed. Quotes older than staleAfter are ignored so a dead
// connection degrades to REST lookups instead of serving stale prices.
type Stream struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	staleAfter     time.Duration
	l              *applogger.Logger

	mu     sync.RWMutex
	quotes map[string]*models.Quote // keyed by market code, e.g. BTCUSDT

	connMu sync.Mutex
	conn   *websocket.Conn
}

type StreamConfig struct {
	WebSocketURL   string
	Symbols        []string // pairs, e.g. "BTC/USDT"
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

func NewStream(cfg StreamConfig, l *applogger.Logger) *Stream {
	return &Stream{
		websocketURL:   strings.TrimRight(cfg.WebSocketURL, "/"),
		symbols:        cfg.Symbols,
		reconnectDelay: cfg.ReconnectDelay,
		pingInterval:   cfg.PingInterval,
		staleAfter:     30 * time.Second,
		l:              l,
		quotes:         make(map[string]*models.Quote),
	}
}

// Run connects and consumes the feed until ctx is cancelled,
// reconnecting after read failures.
func (s *Stream) Run(ctx context.Context) {
	for {
		if err := s.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.l.Warn("quote stream disconnected",
				applogger.Error(err),
				applogger.Duration("retry_in", s.reconnectDelay),
			)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Stream) consume(ctx context.Context) error {
	streams := make([]string, 0, len(s.symbols))
	for _, pair := range s.symbols {
		streams = append(streams, strings.ToLower(PairToMarket(pair))+"@miniTicker")
	}
	u := fmt.Sprintf("%s/stream?streams=%s", s.websocketURL, strings.Join(streams, "/"))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	defer conn.Close()

	s.l.Info("quote stream connected", applogger.Int("symbols", len(s.symbols)))

	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go s.pingLoop(pingCtx, conn)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		_, b, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("stream read: %w", err)
		}
		s.handleFrame(b)
	}
}

func (s *Stream) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = conn.WriteMessage(websocket.PingMessage, nil)
		}
	}
}

type miniTickerFrame struct {
	Stream string `json:"stream"`
	Data   struct {
		EventType string `json:"e"`
		EventTime int64  `json:"E"`
		Symbol    string `json:"s"`
		Close     string `json:"c"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Volume    string `json:"q"` // quote asset volume
	} `json:"data"`
}

func (s *Stream) handleFrame(b []byte) {
	var f miniTickerFrame
	if err := json.Unmarshal(b, &f); err != nil {
		return // ignore non-ticker frames
	}
	if f.Data.EventType != "24hrMiniTicker" {
		return
	}

	price, err := strconv.ParseFloat(f.Data.Close, 64)
	if err != nil {
		return
	}
	open, _ := strconv.ParseFloat(f.Data.Open, 64)
	high, _ := strconv.ParseFloat(f.Data.High, 64)
	low, _ := strconv.ParseFloat(f.Data.Low, 64)
	volume, _ := strconv.ParseFloat(f.Data.Volume, 64)

	var change float64
	if open > 0 {
		change = (price - open) / open * 100
	}

	q := &models.Quote{
		Symbol:    f.Data.Symbol,
		Price:     price,
		Change24h: change,
		Volume24h: volume,
		High24h:   high,
		Low24h:    low,
		Timestamp: time.UnixMilli(f.Data.EventTime),
	}

	s.mu.Lock()
	s.quotes[f.Data.Symbol] = q
	s.mu.Unlock()
}

// LiveQuote returns the cached quote for a pair if it is fresh enough.
func (s *Stream) LiveQuote(symbol string) (*models.Quote, bool) {
	s.mu.RLock()
	q, ok := s.quotes[PairToMarket(symbol)]
	s.mu.RUnlock()
	if !ok || time.Since(q.Timestamp) > s.staleAfter {
		return nil, false
	}
	return q, true
}

// Close tears down the current connection, unblocking the read loop.
func (s *Stream) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

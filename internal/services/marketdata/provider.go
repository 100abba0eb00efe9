package marketdata

import (
	"context"
	"strings"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
)

// StreamingProvider serves quotes from the live stream cache when fresh,
// falling back to REST. Klines always go through REST.
type StreamingProvider struct {
	rest   *Client
	stream *Stream
}

func NewStreamingProvider(rest *Client, stream *Stream) *StreamingProvider {
	return &StreamingProvider{rest: rest, stream: stream}
}

func (p *StreamingProvider) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if q, ok := p.stream.LiveQuote(symbol); ok {
		// Cache keys are market codes; return the caller's pair form.
		out := *q
		out.Symbol = symbol
		base, _, _ := strings.Cut(symbol, "/")
		out.BaseCurrency = strings.ToUpper(base)
		return &out, nil
	}
	return p.rest.Quote(ctx, symbol)
}

func (p *StreamingProvider) Klines(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	return p.rest.Klines(ctx, symbol, tf, limit)
}

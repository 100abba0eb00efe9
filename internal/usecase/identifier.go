package usecase

import (
	"fmt"
	"strings"
)

// Identifier kinds.
const (
	KindExchange = "exchange"
	KindOnchain  = "onchain"
)

// Identifier is a parsed asset reference.
//
//	"BTC/USDT"         -> exchange pair on the default exchange
//	"binance:ETH/USDT" -> exchange pair on a named exchange
//	"sol:<address>"    -> onchain token on a chain
type Identifier struct {
	Kind     string
	Exchange string // empty means the configured default
	Symbol   string
	Chain    string
	Address  string
}

// ParseIdentifier splits an asset reference into its routing form.
func ParseIdentifier(s string) (Identifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identifier{}, fmt.Errorf("empty identifier")
	}

	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		if rest == "" {
			return Identifier{}, fmt.Errorf("identifier %q: missing value after prefix", s)
		}
		if strings.Contains(rest, "/") {
			return Identifier{Kind: KindExchange, Exchange: strings.ToLower(prefix), Symbol: rest}, nil
		}
		return Identifier{Kind: KindOnchain, Chain: strings.ToLower(prefix), Address: rest}, nil
	}

	if strings.Contains(s, "/") {
		return Identifier{Kind: KindExchange, Symbol: s}, nil
	}

	return Identifier{}, fmt.Errorf("identifier %q: expected BASE/QUOTE, exchange:BASE/QUOTE or chain:address", s)
}

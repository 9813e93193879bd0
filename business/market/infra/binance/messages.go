// Package binance implements market data access against the Binance exchange.
package binance

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/circlepath-bot/business/market/domain"
)

// WebSocket request/response messages

// WSRequest is a WebSocket subscription request.
type WSRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// WSResponse is a WebSocket subscription response.
type WSResponse struct {
	Result json.RawMessage `json:"result"`
	ID     int64           `json:"id"`
}

// StreamEvent is the base wrapper for all combined-stream messages.
type StreamEvent struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// PartialDepthEvent represents a partial book depth snapshot.
// Stream: <symbol>@depth5, @depth10, @depth20 (with optional @100ms/@1000ms speed)
// Note: Symbol is not in the JSON payload - it must be set from the stream name.
type PartialDepthEvent struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"` // [[price, qty], ...]
	Asks         [][]string `json:"asks"` // [[price, qty], ...]
	Symbol       string     `json:"-"`    // Set from stream name, not in payload
}

// ParseLevels parses raw depth levels from Binance format into domain levels.
// Zero-quantity levels (removed from the book) are skipped.
func ParseLevels(raw [][]string) ([]domain.Level, error) {
	levels := make([]domain.Level, 0, len(raw))
	for _, r := range raw {
		if len(r) < 2 {
			continue
		}
		price, err := decimal.NewFromString(r[0])
		if err != nil {
			return nil, err
		}
		qty, err := decimal.NewFromString(r[1])
		if err != nil {
			return nil, err
		}
		if qty.IsZero() {
			continue
		}
		levels = append(levels, domain.Level{Price: price, Quantity: qty})
	}
	return levels, nil
}

// ToBook converts a depth event into a domain order book.
func (e *PartialDepthEvent) ToBook() (*domain.Book, error) {
	bids, err := ParseLevels(e.Bids)
	if err != nil {
		return nil, err
	}
	asks, err := ParseLevels(e.Asks)
	if err != nil {
		return nil, err
	}
	return domain.NewBook(bids, asks), nil
}

// REST API responses

// ExchangeInfoResponse is the /api/v3/exchangeInfo response.
type ExchangeInfoResponse struct {
	Symbols []SymbolEntry `json:"symbols"`
}

// SymbolEntry describes one symbol in the exchangeInfo response.
type SymbolEntry struct {
	Symbol     string         `json:"symbol"`
	Status     string         `json:"status"`
	BaseAsset  string         `json:"baseAsset"`
	QuoteAsset string         `json:"quoteAsset"`
	Filters    []SymbolFilter `json:"filters"`
}

// SymbolFilter is one entry of a symbol's filter list.
type SymbolFilter struct {
	FilterType string `json:"filterType"`
	TickSize   string `json:"tickSize"`
}

// TradingStatus is the status of symbols available for trading.
const TradingStatus = "TRADING"

// PriceIncrementDigits extracts the quote price precision from the symbol's
// PRICE_FILTER tick size, e.g. "0.01000000" -> 2. Returns 8 when the filter
// is missing or unparseable, Binance's maximum precision.
func (s SymbolEntry) PriceIncrementDigits() int32 {
	for _, f := range s.Filters {
		if f.FilterType != "PRICE_FILTER" {
			continue
		}
		tick, err := decimal.NewFromString(f.TickSize)
		if err != nil || !tick.IsPositive() {
			break
		}
		for digits := int32(0); digits <= 8; digits++ {
			if tick.Shift(digits).IsInteger() {
				return digits
			}
		}
		break
	}
	return 8
}

// ToSymbolInfo converts the exchange entry into domain symbol metadata.
func (s SymbolEntry) ToSymbolInfo() domain.SymbolInfo {
	return domain.SymbolInfo{
		Symbol:                    s.Symbol,
		BaseAsset:                 s.BaseAsset,
		QuoteAsset:                s.QuoteAsset,
		QuotePriceIncrementDigits: s.PriceIncrementDigits(),
	}
}

// Helper to build stream names

// DepthStream returns the partial book depth stream name for a symbol.
// Uses @depth20 which sends the top 20 bid/ask levels (not diff stream).
func DepthStream(symbol string, speedMs int) string {
	return strings.ToLower(symbol) + "@depth20@" + strconv.Itoa(speedMs) + "ms"
}

// extractSymbolFromStream extracts the symbol from a stream name.
// Example: "ethusdt@depth20@100ms" -> "ETHUSDT"
func extractSymbolFromStream(stream string) string {
	idx := strings.Index(stream, "@")
	if idx > 0 {
		return strings.ToUpper(stream[:idx])
	}
	return stream
}

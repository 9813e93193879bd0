package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Action represents what a trader does on a symbol to move between its assets.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionNone Action = "none"
)

// SymbolInfo describes a tradable symbol and its price precision.
type SymbolInfo struct {
	Symbol                    string
	BaseAsset                 string
	QuoteAsset                string
	QuotePriceIncrementDigits int32
}

// Key returns the canonical lowercase lookup key for the symbol.
func (s SymbolInfo) Key() string {
	return strings.ToLower(s.Symbol)
}

// PriceIncrement returns the smallest quote price step (one tick).
func (s SymbolInfo) PriceIncrement() decimal.Decimal {
	return decimal.New(1, -s.QuotePriceIncrementDigits)
}

// ActionFor returns the action needed to trade away the held asset on this
// symbol: buy when holding the quote asset, sell when holding the base asset,
// none otherwise.
func (s SymbolInfo) ActionFor(heldAsset string) Action {
	switch heldAsset {
	case s.QuoteAsset:
		return ActionBuy
	case s.BaseAsset:
		return ActionSell
	default:
		return ActionNone
	}
}

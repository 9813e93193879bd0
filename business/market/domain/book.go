// Package domain contains the core domain types for the market context.
package domain

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/circlepath-bot/internal/apperror"
)

// Level represents a single price level in an order book.
type Level struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// MarshalJSON encodes the level in the snapshot wire format: a
// [price, quantity] pair.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]decimal.Decimal{l.Price, l.Quantity})
}

// UnmarshalJSON decodes a [price, quantity] pair.
func (l *Level) UnmarshalJSON(data []byte) error {
	var pair [2]decimal.Decimal
	if err := json.Unmarshal(data, &pair); err != nil {
		return apperror.Wrap(err, apperror.CodeInvalidFormat, "order book level must be a [price, quantity] pair")
	}
	l.Price = pair[0]
	l.Quantity = pair[1]
	return nil
}

// Book represents a depth snapshot for one symbol.
// Bids are sorted by price descending, asks ascending.
type Book struct {
	Bids      []Level   `json:"bids"`
	Asks      []Level   `json:"asks"`
	Timestamp time.Time `json:"-"`
}

// NewBook creates a Book from raw levels and normalizes their ordering.
func NewBook(bids, asks []Level) *Book {
	b := &Book{
		Bids:      bids,
		Asks:      asks,
		Timestamp: time.Now().UTC(),
	}
	b.Sort()
	return b
}

// Sort restores the canonical level ordering: bids descending, asks ascending.
func (b *Book) Sort() {
	sort.SliceStable(b.Bids, func(i, j int) bool {
		return b.Bids[i].Price.GreaterThan(b.Bids[j].Price)
	})
	sort.SliceStable(b.Asks, func(i, j int) bool {
		return b.Asks[i].Price.LessThan(b.Asks[j].Price)
	})
}

// BestBid returns the highest bid level, or nil if the bid side is empty.
func (b *Book) BestBid() *Level {
	if len(b.Bids) == 0 {
		return nil
	}
	return &b.Bids[0]
}

// BestAsk returns the lowest ask level, or nil if the ask side is empty.
func (b *Book) BestAsk() *Level {
	if len(b.Asks) == 0 {
		return nil
	}
	return &b.Asks[0]
}

// IsEmpty reports whether either side of the book has no levels.
func (b *Book) IsEmpty() bool {
	return len(b.Bids) == 0 || len(b.Asks) == 0
}

// AggregatedLevel is the volume-weighted view of the top of one book side.
type AggregatedLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Levels   int
}

// AggregateBestLevels folds the top of a book side into a single synthetic level.
//
// The best level is always included. Each further level is included while its
// price stays within maxDeviation (relative to the best price) and the running
// quantity stays within the cap. The cap is maxTotalQuantity relaxed to the
// best level's own quantity when that is larger; a non-positive
// maxTotalQuantity means unbounded. The aggregated price is the arithmetic
// mean of the included prices, the quantity their sum.
//
// Returns false when levels is empty.
func AggregateBestLevels(levels []Level, maxLevels int, maxDeviation, maxTotalQuantity decimal.Decimal) (AggregatedLevel, bool) {
	if len(levels) == 0 {
		return AggregatedLevel{}, false
	}
	if maxLevels > 0 && len(levels) > maxLevels {
		levels = levels[:maxLevels]
	}

	best := levels[0]
	qtyCap := maxTotalQuantity
	if qtyCap.IsPositive() && best.Quantity.GreaterThan(qtyCap) {
		qtyCap = best.Quantity
	}

	priceSum := best.Price
	quantity := best.Quantity
	included := 1

	for _, lvl := range levels[1:] {
		deviation := lvl.Price.Sub(best.Price).Abs().Div(best.Price)
		if deviation.GreaterThan(maxDeviation) {
			break
		}
		if qtyCap.IsPositive() && quantity.Add(lvl.Quantity).GreaterThan(qtyCap) {
			break
		}
		priceSum = priceSum.Add(lvl.Price)
		quantity = quantity.Add(lvl.Quantity)
		included++
	}

	return AggregatedLevel{
		Price:    priceSum.Div(decimal.NewFromInt(int64(included))),
		Quantity: quantity,
		Levels:   included,
	}, true
}

package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func levels(pairs ...[2]string) []Level {
	out := make([]Level, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Level{
			Price:    decimal.RequireFromString(p[0]),
			Quantity: decimal.RequireFromString(p[1]),
		})
	}
	return out
}

func TestNewBook_SortsSides(t *testing.T) {
	book := NewBook(
		levels([2]string{"99", "1"}, [2]string{"101", "2"}, [2]string{"100", "3"}),
		levels([2]string{"103", "1"}, [2]string{"102", "2"}, [2]string{"104", "3"}),
	)

	wantBids := []string{"101", "100", "99"}
	for i, w := range wantBids {
		if !book.Bids[i].Price.Equal(decimal.RequireFromString(w)) {
			t.Errorf("bid[%d] = %s, want %s", i, book.Bids[i].Price, w)
		}
	}
	wantAsks := []string{"102", "103", "104"}
	for i, w := range wantAsks {
		if !book.Asks[i].Price.Equal(decimal.RequireFromString(w)) {
			t.Errorf("ask[%d] = %s, want %s", i, book.Asks[i].Price, w)
		}
	}

	if book.BestBid() == nil || !book.BestBid().Price.Equal(decimal.RequireFromString("101")) {
		t.Errorf("BestBid = %v, want 101", book.BestBid())
	}
	if book.BestAsk() == nil || !book.BestAsk().Price.Equal(decimal.RequireFromString("102")) {
		t.Errorf("BestAsk = %v, want 102", book.BestAsk())
	}
}

func TestBook_IsEmpty(t *testing.T) {
	if !(&Book{}).IsEmpty() {
		t.Error("empty book should report empty")
	}
	oneSided := NewBook(levels([2]string{"100", "1"}), nil)
	if !oneSided.IsEmpty() {
		t.Error("book with empty ask side should report empty")
	}
	full := NewBook(levels([2]string{"100", "1"}), levels([2]string{"101", "1"}))
	if full.IsEmpty() {
		t.Error("two-sided book should not report empty")
	}
}

func TestAggregateBestLevels(t *testing.T) {
	tests := []struct {
		name         string
		levels       []Level
		maxLevels    int
		maxDeviation string
		maxTotalQty  string
		wantOK       bool
		wantPrice    string
		wantQty      string
		wantLevels   int
	}{
		{
			name:   "empty_side",
			levels: nil,
			wantOK: false,
		},
		{
			name:         "single_level",
			levels:       levels([2]string{"100", "2"}),
			maxLevels:    5,
			maxDeviation: "0.002",
			maxTotalQty:  "10",
			wantOK:       true,
			wantPrice:    "100",
			wantQty:      "2",
			wantLevels:   1,
		},
		{
			name: "quantity_cap_stops_aggregation",
			levels: levels(
				[2]string{"100", "1"},
				[2]string{"99", "5"},
				[2]string{"90", "50"},
			),
			maxLevels:    3,
			maxDeviation: "0.05",
			maxTotalQty:  "10",
			wantOK:       true,
			wantPrice:    "99.5",
			wantQty:      "6",
			wantLevels:   2,
		},
		{
			name: "deviation_stops_aggregation",
			levels: levels(
				[2]string{"100", "1"},
				[2]string{"99.9", "1"},
				[2]string{"99", "1"},
			),
			maxLevels:    5,
			maxDeviation: "0.002",
			maxTotalQty:  "100",
			wantOK:       true,
			wantPrice:    "99.95",
			wantQty:      "2",
			wantLevels:   2,
		},
		{
			name: "max_levels_truncates",
			levels: levels(
				[2]string{"100", "1"},
				[2]string{"100", "1"},
				[2]string{"100", "1"},
				[2]string{"100", "1"},
			),
			maxLevels:    2,
			maxDeviation: "0.1",
			maxTotalQty:  "100",
			wantOK:       true,
			wantPrice:    "100",
			wantQty:      "2",
			wantLevels:   2,
		},
		{
			name: "unbounded_quantity_when_cap_nonpositive",
			levels: levels(
				[2]string{"100", "40"},
				[2]string{"100", "40"},
				[2]string{"100", "40"},
			),
			maxLevels:    3,
			maxDeviation: "0.1",
			maxTotalQty:  "0",
			wantOK:       true,
			wantPrice:    "100",
			wantQty:      "120",
			wantLevels:   3,
		},
		{
			name: "oversized_best_level_relaxes_cap",
			levels: levels(
				[2]string{"100", "50"},
				[2]string{"99.9", "60"},
			),
			maxLevels:    5,
			maxDeviation: "0.01",
			maxTotalQty:  "10",
			wantOK:       true,
			wantPrice:    "100",
			wantQty:      "50",
			wantLevels:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxDev := decimal.Zero
			maxQty := decimal.Zero
			if tt.maxDeviation != "" {
				maxDev = decimal.RequireFromString(tt.maxDeviation)
			}
			if tt.maxTotalQty != "" {
				maxQty = decimal.RequireFromString(tt.maxTotalQty)
			}

			got, ok := AggregateBestLevels(tt.levels, tt.maxLevels, maxDev, maxQty)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !got.Price.Equal(decimal.RequireFromString(tt.wantPrice)) {
				t.Errorf("price = %s, want %s", got.Price, tt.wantPrice)
			}
			if !got.Quantity.Equal(decimal.RequireFromString(tt.wantQty)) {
				t.Errorf("quantity = %s, want %s", got.Quantity, tt.wantQty)
			}
			if got.Levels != tt.wantLevels {
				t.Errorf("levels = %d, want %d", got.Levels, tt.wantLevels)
			}
		})
	}
}

func TestSymbolInfo(t *testing.T) {
	info := SymbolInfo{
		Symbol:                    "ETHUSDT",
		BaseAsset:                 "ETH",
		QuoteAsset:                "USDT",
		QuotePriceIncrementDigits: 2,
	}

	if info.Key() != "ethusdt" {
		t.Errorf("Key = %q, want %q", info.Key(), "ethusdt")
	}
	if !info.PriceIncrement().Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("PriceIncrement = %s, want 0.01", info.PriceIncrement())
	}

	actions := []struct {
		held string
		want Action
	}{
		{"USDT", ActionBuy},
		{"ETH", ActionSell},
		{"BTC", ActionNone},
	}
	for _, tt := range actions {
		if got := info.ActionFor(tt.held); got != tt.want {
			t.Errorf("ActionFor(%q) = %q, want %q", tt.held, got, tt.want)
		}
	}
}

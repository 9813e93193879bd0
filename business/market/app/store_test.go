package app

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/circlepath-bot/business/market/domain"
	"github.com/fd1az/circlepath-bot/internal/apperror"
)

func testBook(bids, asks [][2]string) *domain.Book {
	toLevels := func(pairs [][2]string) []domain.Level {
		out := make([]domain.Level, 0, len(pairs))
		for _, p := range pairs {
			out = append(out, domain.Level{
				Price:    decimal.RequireFromString(p[0]),
				Quantity: decimal.RequireFromString(p[1]),
			})
		}
		return out
	}
	return domain.NewBook(toLevels(bids), toLevels(asks))
}

func TestBookStore_ReplaceAndLookup(t *testing.T) {
	store := NewBookStore(decimal.Zero)

	first := testBook([][2]string{{"100", "1"}}, [][2]string{{"101", "1"}})
	second := testBook([][2]string{{"200", "1"}}, [][2]string{{"201", "1"}})

	store.ReplaceBook("ETHUSDT", first)
	store.ReplaceBook("ethusdt", second)

	if store.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (case-insensitive keying)", store.Len())
	}

	book, ok := store.Book("EthUsdt")
	if !ok {
		t.Fatal("expected book under mixed-case lookup")
	}
	if !book.BestBid().Price.Equal(decimal.RequireFromString("200")) {
		t.Errorf("best bid = %s, want 200 (later install must replace)", book.BestBid().Price)
	}
}

func TestBookStore_ExportImportRoundTrip(t *testing.T) {
	store := NewBookStore(decimal.Zero)
	store.ReplaceBook("ethbtc", testBook(
		[][2]string{{"0.05", "3"}, {"0.049", "1"}},
		[][2]string{{"0.051", "2"}},
	))

	data, err := store.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	restored := NewBookStore(decimal.Zero)
	if err := restored.Import(data); err != nil {
		t.Fatalf("Import: %v", err)
	}

	book, ok := restored.Book("ETHBTC")
	if !ok {
		t.Fatal("imported store missing ethbtc")
	}
	if len(book.Bids) != 2 || len(book.Asks) != 1 {
		t.Fatalf("level counts changed: %d bids, %d asks", len(book.Bids), len(book.Asks))
	}
	if !book.Bids[0].Price.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("bids not sorted descending after import: first = %s", book.Bids[0].Price)
	}
}

func TestBookStore_ImportResortsUnsortedLevels(t *testing.T) {
	// A snapshot with bids ascending and asks descending must be normalized.
	raw := []byte(`{"btcusdt":{"bids":[["99","1"],["101","1"]],"asks":[["104","1"],["102","1"]]}}`)

	store := NewBookStore(decimal.Zero)
	if err := store.Import(raw); err != nil {
		t.Fatalf("Import: %v", err)
	}

	book, _ := store.Book("btcusdt")
	if !book.BestBid().Price.Equal(decimal.RequireFromString("101")) {
		t.Errorf("best bid = %s, want 101", book.BestBid().Price)
	}
	if !book.BestAsk().Price.Equal(decimal.RequireFromString("102")) {
		t.Errorf("best ask = %s, want 102", book.BestAsk().Price)
	}
}

func TestBookStore_ImportRejectsGarbage(t *testing.T) {
	store := NewBookStore(decimal.Zero)
	err := store.Import([]byte(`{not json`))
	if err == nil {
		t.Fatal("expected error for malformed snapshot")
	}
	if apperror.GetCode(err) != apperror.CodeSnapshotCorrupted {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeSnapshotCorrupted)
	}
}

func TestBookStore_ConvertAmount(t *testing.T) {
	makerFee := decimal.RequireFromString("0.001")
	store := NewBookStore(makerFee)
	store.ReplaceBook("ethusdt", testBook(
		[][2]string{{"3000", "5"}},
		[][2]string{{"3010", "5"}},
	))

	t.Run("same_asset_passthrough", func(t *testing.T) {
		got, err := store.ConvertAmount(decimal.RequireFromString("42"), "BTC", "BTC")
		if err != nil {
			t.Fatalf("ConvertAmount: %v", err)
		}
		if !got.Equal(decimal.RequireFromString("42")) {
			t.Errorf("got %s, want 42", got)
		}
	})

	t.Run("sell_base_at_bid", func(t *testing.T) {
		// 2 ETH * 3000 * (1 - 0.001) = 5994
		got, err := store.ConvertAmount(decimal.RequireFromString("2"), "ETH", "USDT")
		if err != nil {
			t.Fatalf("ConvertAmount: %v", err)
		}
		if !got.Equal(decimal.RequireFromString("5994")) {
			t.Errorf("got %s, want 5994", got)
		}
	})

	t.Run("buy_base_at_ask", func(t *testing.T) {
		// 3010 USDT / 3010 * (1 - 0.001) = 0.999 ETH
		got, err := store.ConvertAmount(decimal.RequireFromString("3010"), "USDT", "ETH")
		if err != nil {
			t.Fatalf("ConvertAmount: %v", err)
		}
		if !got.Equal(decimal.RequireFromString("0.999")) {
			t.Errorf("got %s, want 0.999", got)
		}
	})

	t.Run("no_direct_symbol", func(t *testing.T) {
		_, err := store.ConvertAmount(decimal.NewFromInt(1), "ETH", "SOL")
		if err == nil {
			t.Fatal("expected error")
		}
		if apperror.GetCode(err) != apperror.CodeConversionFailed {
			t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeConversionFailed)
		}
	})
}

package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/circlepath-bot/business/market/app"
	"github.com/fd1az/circlepath-bot/business/market/domain"
	"github.com/fd1az/circlepath-bot/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(os.Stderr, logger.LevelError, "snapshot-test", nil)
}

func storeWithBook(t *testing.T, symbol, bid, ask string) *app.BookStore {
	t.Helper()
	store := app.NewBookStore(decimal.Zero)
	store.ReplaceBook(symbol, domain.NewBook(
		[]domain.Level{{Price: decimal.RequireFromString(bid), Quantity: decimal.NewFromInt(1)}},
		[]domain.Level{{Price: decimal.RequireFromString(ask), Quantity: decimal.NewFromInt(1)}},
	))
	return store
}

func TestRecorder_WriteOnce(t *testing.T) {
	dir := t.TempDir()
	store := storeWithBook(t, "ethusdt", "3000", "3010")

	rec := NewRecorder(store, dir, time.Second, testLogger())
	captured := time.Date(2024, 5, 1, 12, 30, 45, 123_000_000, time.UTC)
	rec.clock = func() time.Time { return captured }

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := rec.WriteOnce(context.Background()); err != nil {
		t.Fatalf("WriteOnce: %v", err)
	}

	wantName := "20240501T123045.123Z.json"
	if _, err := os.Stat(filepath.Join(dir, wantName)); err != nil {
		t.Fatalf("expected snapshot file %s: %v", wantName, err)
	}
}

func TestRecorder_SkipsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder(app.NewBookStore(decimal.Zero), dir, time.Second, testLogger())

	if err := rec.WriteOnce(context.Background()); err != nil {
		t.Fatalf("WriteOnce: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files for empty store, got %d", len(entries))
	}
}

func writeFrame(t *testing.T, dir string, ts time.Time, store *app.BookStore) {
	t.Helper()
	data, err := store.Export()
	if err != nil {
		t.Fatal(err)
	}
	name := ts.Format(fileTimeLayout) + fileExt
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReplayer_ReplaysInOrderAndSkipsGaps(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// Three frames: 1s apart, then a 60s recording gap.
	writeFrame(t, dir, base, storeWithBook(t, "ethusdt", "3000", "3010"))
	writeFrame(t, dir, base.Add(1*time.Second), storeWithBook(t, "ethusdt", "3001", "3011"))
	writeFrame(t, dir, base.Add(61*time.Second), storeWithBook(t, "ethusdt", "3002", "3012"))

	store := app.NewBookStore(decimal.Zero)
	rep := NewReplayer(store, dir, 15*time.Second, testLogger())

	var slept []time.Duration
	rep.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	var frameTimes []time.Time
	var bids []string
	err := rep.Replay(context.Background(), func(_ context.Context, frameTime time.Time) error {
		frameTimes = append(frameTimes, frameTime)
		book, ok := store.Book("ethusdt")
		if !ok {
			t.Fatal("store missing ethusdt after import")
		}
		bids = append(bids, book.BestBid().Price.String())
		return nil
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	if len(frameTimes) != 3 {
		t.Fatalf("frames replayed = %d, want 3", len(frameTimes))
	}
	for i := 1; i < len(frameTimes); i++ {
		if !frameTimes[i].After(frameTimes[i-1]) {
			t.Errorf("frames out of order: %v then %v", frameTimes[i-1], frameTimes[i])
		}
	}

	wantBids := []string{"3000", "3001", "3002"}
	for i, w := range wantBids {
		if bids[i] != w {
			t.Errorf("frame %d best bid = %s, want %s", i, bids[i], w)
		}
	}

	// Only the 1s cadence is waited out; the 60s gap is skipped.
	if len(slept) != 1 || slept[0] != time.Second {
		t.Errorf("slept = %v, want exactly [1s]", slept)
	}
}

func TestReplayer_EmptyDirFails(t *testing.T) {
	rep := NewReplayer(app.NewBookStore(decimal.Zero), t.TempDir(), 15*time.Second, testLogger())
	if err := rep.Replay(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty snapshot directory")
	}
}

func TestReplayer_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "badname.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeFrame(t, dir, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), storeWithBook(t, "ethusdt", "3000", "3010"))

	rep := NewReplayer(app.NewBookStore(decimal.Zero), dir, 15*time.Second, testLogger())
	frames, err := rep.Frames()
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(frames))
	}
}

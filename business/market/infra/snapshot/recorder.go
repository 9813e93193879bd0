// Package snapshot persists and replays order book store snapshots.
package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fd1az/circlepath-bot/business/market/app"
	"github.com/fd1az/circlepath-bot/internal/logger"
)

// Filenames sort lexicographically in chronological order.
const fileTimeLayout = "20060102T150405.000Z"

const fileExt = ".json"

// Recorder periodically writes the store contents to timestamped files.
type Recorder struct {
	store    *app.BookStore
	dir      string
	interval time.Duration
	logger   logger.LoggerInterface
	clock    func() time.Time

	done chan struct{}
}

// NewRecorder creates a recorder writing into dir every interval.
func NewRecorder(store *app.BookStore, dir string, interval time.Duration, log logger.LoggerInterface) *Recorder {
	return &Recorder{
		store:    store,
		dir:      dir,
		interval: interval,
		logger:   log,
		clock:    func() time.Time { return time.Now().UTC() },
		done:     make(chan struct{}),
	}
}

// Start begins recording until the context is cancelled or Stop is called.
func (r *Recorder) Start(ctx context.Context) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}

	go r.loop(ctx)
	return nil
}

func (r *Recorder) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-ticker.C:
			if err := r.WriteOnce(ctx); err != nil {
				r.logger.Warn(ctx, "snapshot write failed", "error", err)
			}
		}
	}
}

// WriteOnce exports the store and writes a single snapshot file. Empty stores
// are skipped so a replay never starts with a blank frame.
func (r *Recorder) WriteOnce(ctx context.Context) error {
	if r.store.Len() == 0 {
		return nil
	}

	data, err := r.store.Export()
	if err != nil {
		return err
	}

	name := r.clock().Format(fileTimeLayout) + fileExt
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	r.logger.Debug(ctx, "snapshot written", "file", name, "bytes", len(data))
	return nil
}

// Stop halts the recording loop.
func (r *Recorder) Stop() {
	close(r.done)
}

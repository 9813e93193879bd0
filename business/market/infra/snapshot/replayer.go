package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fd1az/circlepath-bot/business/market/app"
	"github.com/fd1az/circlepath-bot/internal/apperror"
	"github.com/fd1az/circlepath-bot/internal/logger"
)

// Frame is one recorded snapshot: its capture time and file name.
type Frame struct {
	Time time.Time
	Name string
}

// Replayer feeds recorded snapshots back into a store in capture order.
type Replayer struct {
	store  *app.BookStore
	dir    string
	maxGap time.Duration
	logger logger.LoggerInterface

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewReplayer creates a replayer reading from dir. Pauses between frames
// reproduce the original capture cadence, except gaps longer than maxGap,
// which are skipped.
func NewReplayer(store *app.BookStore, dir string, maxGap time.Duration, log logger.LoggerInterface) *Replayer {
	return &Replayer{
		store:  store,
		dir:    dir,
		maxGap: maxGap,
		logger: log,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Frames lists the recorded snapshots in chronological order. Files whose
// names do not parse as capture timestamps are ignored.
func (r *Replayer) Frames() ([]Frame, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNotFound, "failed to read snapshot directory")
	}

	frames := make([]Frame, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		stamp := strings.TrimSuffix(entry.Name(), fileExt)
		ts, err := time.Parse(fileTimeLayout, stamp)
		if err != nil {
			continue
		}
		frames = append(frames, Frame{Time: ts.UTC(), Name: entry.Name()})
	}

	// Timestamped names sort lexicographically, but don't rely on ReadDir.
	sort.Slice(frames, func(i, j int) bool { return frames[i].Time.Before(frames[j].Time) })
	return frames, nil
}

// Replay walks the recorded frames, importing each one into the store and
// invoking fn after every import. The pause between frames matches the
// capture cadence; recording gaps longer than maxGap are not waited out.
func (r *Replayer) Replay(ctx context.Context, fn func(ctx context.Context, frameTime time.Time) error) error {
	frames, err := r.Frames()
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return apperror.New(apperror.CodeNotFound,
			apperror.WithContext("no snapshots in "+r.dir))
	}

	r.logger.Info(ctx, "replaying snapshots", "dir", r.dir, "frames", len(frames))

	var prev time.Time
	for i, frame := range frames {
		if i > 0 {
			gap := frame.Time.Sub(prev)
			if gap > r.maxGap {
				r.logger.Warn(ctx, "recording gap, skipping ahead",
					"gap", gap.String(),
					"frame", frame.Name)
			} else if gap > 0 {
				if err := r.sleep(ctx, gap); err != nil {
					return err
				}
			}
		}
		prev = frame.Time

		data, err := os.ReadFile(filepath.Join(r.dir, frame.Name))
		if err != nil {
			return apperror.Wrap(err, apperror.CodeSnapshotCorrupted, "failed to read snapshot "+frame.Name)
		}
		if err := r.store.Import(data); err != nil {
			return err
		}

		if fn != nil {
			if err := fn(ctx, frame.Time); err != nil {
				return err
			}
		}
	}

	return nil
}

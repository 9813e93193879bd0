package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	marketApp "github.com/fd1az/circlepath-bot/business/market/app"
	"github.com/fd1az/circlepath-bot/internal/logger"
)

// ScannerConfig holds the periodic scan parameters.
type ScannerConfig struct {
	StartAsset    string
	DesiredAmount decimal.Decimal
	Interval      time.Duration
}

// Scanner runs the engine on a fixed interval against the live store and
// forwards profitable solutions to the reporter.
type Scanner struct {
	engine   *Engine
	store    *marketApp.BookStore
	reporter Reporter
	config   ScannerConfig
	logger   logger.LoggerInterface

	done chan struct{}
}

// NewScanner creates a Scanner.
func NewScanner(engine *Engine, store *marketApp.BookStore, reporter Reporter, cfg ScannerConfig, log logger.LoggerInterface) *Scanner {
	return &Scanner{
		engine:   engine,
		store:    store,
		reporter: reporter,
		config:   cfg,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// Start begins the scan loop. It returns immediately; scanning continues
// until the context is cancelled or Stop is called.
func (s *Scanner) Start(ctx context.Context) error {
	if err := s.reporter.Start(ctx); err != nil {
		return err
	}

	go s.run(ctx)
	return nil
}

func (s *Scanner) run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "scanner stopping", "reason", ctx.Err())
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.ScanOnce(ctx)
		}
	}
}

// ScanOnce runs a single engine pass and reports its results. Books may
// still be warming up; a pass over an empty store simply finds nothing.
func (s *Scanner) ScanOnce(ctx context.Context) {
	started := time.Now()

	solutions, err := s.engine.Solve(ctx, s.config.StartAsset, s.config.DesiredAmount)
	if err != nil {
		s.logger.Error(ctx, "scan failed", "error", err)
		return
	}

	for _, sol := range solutions {
		s.reporter.Report(sol)
	}

	paths, _ := s.engine.PathCount(s.config.StartAsset)
	s.reporter.UpdateScan(ScanStats{
		StartAsset:     s.config.StartAsset,
		PathsSearched:  paths,
		Solutions:      len(solutions),
		BooksAvailable: s.store.Len(),
		Duration:       time.Since(started),
		Timestamp:      time.Now().UTC(),
	})
}

// Stop halts the scan loop and the reporter.
func (s *Scanner) Stop() error {
	close(s.done)
	return s.reporter.Stop()
}

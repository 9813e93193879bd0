// Package app contains application services and port definitions for the
// circular path context.
package app

import (
	"context"
	"time"

	"github.com/fd1az/circlepath-bot/business/circlepath/domain"
)

// ScanStats summarizes one engine pass for display.
type ScanStats struct {
	StartAsset     string
	PathsSearched  int
	Solutions      int
	BooksAvailable int
	Duration       time.Duration
	Timestamp      time.Time
}

// Reporter defines the interface for reporting profitable solutions.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report sends a profitable solution to be displayed/logged.
	Report(sol *domain.Solution)

	// UpdateScan updates the per-scan statistics display.
	UpdateScan(stats ScanStats)

	// UpdateConnectionStatus updates a connection status display.
	UpdateConnectionStatus(name string, connected bool)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

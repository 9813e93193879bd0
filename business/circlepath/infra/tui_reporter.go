package infra

import (
	"context"

	"github.com/fd1az/circlepath-bot/business/circlepath/app"
	"github.com/fd1az/circlepath-bot/business/circlepath/domain"
	"github.com/fd1az/circlepath-bot/pkg/ui"
)

// TUIReporter implements Reporter by forwarding events to the Bubble Tea
// dashboard. The ui package drops messages sent before the program starts,
// so no buffering is needed here.
type TUIReporter struct{}

// NewTUIReporter creates a new TUIReporter.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// Start marks the scanning steps as live on the startup screen.
func (r *TUIReporter) Start(ctx context.Context) error {
	ui.Send(ui.StartupMsg{Step: "engine", Status: "connecting"})
	return nil
}

// Report forwards a profitable circular path to the dashboard.
func (r *TUIReporter) Report(sol *domain.Solution) {
	ui.Send(ui.SolutionMsg{Solution: sol})
}

// UpdateScan forwards scanner pass statistics to the dashboard.
func (r *TUIReporter) UpdateScan(stats app.ScanStats) {
	ui.Send(ui.ScanMsg{
		StartAsset:     stats.StartAsset,
		PathsSearched:  stats.PathsSearched,
		Solutions:      stats.Solutions,
		BooksAvailable: stats.BooksAvailable,
		Duration:       stats.Duration,
		Timestamp:      stats.Timestamp,
	})
}

// UpdateConnectionStatus forwards connection changes to the dashboard.
func (r *TUIReporter) UpdateConnectionStatus(name string, connected bool) {
	ui.Send(ui.ConnectionStatusMsg{Name: name, Connected: connected})
}

// Stop is a no-op; the program lifecycle is owned by main.
func (r *TUIReporter) Stop() error {
	return nil
}

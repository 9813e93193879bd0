// Package infra contains infrastructure adapters for the circlepath context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fd1az/circlepath-bot/business/circlepath/app"
	"github.com/fd1az/circlepath-bot/business/circlepath/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "CirclePath Bot Started")
	fmt.Fprintln(r.out, "======================")
	return nil
}

// Report outputs a profitable circular path to the console.
func (r *ConsoleReporter) Report(sol *domain.Solution) {
	sim := sol.Simulation
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "PROFITABLE CIRCULAR PATH FOUND")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Timestamp:      %s\n", sol.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Path:           %s\n", sol.PathID())
	fmt.Fprintf(r.out, "Edges:          %d\n", sol.Edges())
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "INSTRUCTIONS")
	for _, ins := range sol.Instructions {
		if ins.IsEnd {
			continue
		}
		fmt.Fprintf(r.out, "  %-4s %s\n", string(ins.Action), ins.Symbol.Symbol)
	}
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "AMOUNTS")
	fmt.Fprintf(r.out, "  Optimal:        %s %s\n", sim.OptimalAmount.StringFixed(8), sol.StartAsset)
	fmt.Fprintf(r.out, "  Traded:         %s %s\n", sim.ActualAmount.StringFixed(8), sol.StartAsset)
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PROFIT")
	fmt.Fprintf(r.out, "  %s %s\n", sim.Profit.String(), sol.StartAsset)
	if !sim.ProfitInReference.IsZero() {
		fmt.Fprintf(r.out, "  %s %s\n", sim.ProfitInReference.StringFixed(2), sol.ReferenceAsset)
	}
	fmt.Fprintln(r.out, "================================================================================")
}

// UpdateScan outputs a one-line summary of each scanner pass.
func (r *ConsoleReporter) UpdateScan(stats app.ScanStats) {
	fmt.Fprintf(r.out, "[%s] scan %s: %d paths, %d solutions, %d books, %s\n",
		stats.Timestamp.Format("15:04:05"),
		stats.StartAsset,
		stats.PathsSearched,
		stats.Solutions,
		stats.BooksAvailable,
		stats.Duration.Round(time.Millisecond))
}

// UpdateConnectionStatus outputs connection status changes.
func (r *ConsoleReporter) UpdateConnectionStatus(name string, connected bool) {
	status := "disconnected"
	if connected {
		status = "connected"
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", time.Now().Format("15:04:05"), name, status)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "CirclePath Bot Stopped")
	return nil
}

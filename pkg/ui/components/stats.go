// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds scanner statistics for display.
type Stats struct {
	ScansCompleted int64
	PathsSearched  int64
	SolutionsFound int64
	BooksAvailable int
	LastScanMs     float64
	Errors         int64
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update updates the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	hitRate := float64(0)
	if s.stats.PathsSearched > 0 {
		hitRate = float64(s.stats.SolutionsFound) / float64(s.stats.PathsSearched) * 100
	}

	errorsDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	if s.stats.Errors > 0 {
		errorsDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Scans: %s  │  Paths searched: %s  │  Solutions: %s (%.2f%%)\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.ScansCompleted)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.PathsSearched)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.SolutionsFound)),
			hitRate,
		) +
		fmt.Sprintf("Last scan: %s     │  Order books: %s      │  Errors: %s",
			valueStyle.Render(fmt.Sprintf("%.0fms", s.stats.LastScanMs)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.BooksAvailable)),
			errorsDisplay,
		)
}

// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// SolutionRow represents a profitable circular path in the list.
type SolutionRow struct {
	Time            string
	Path            string
	Edges           int
	Amount          decimal.Decimal
	Profit          decimal.Decimal
	ProfitReference decimal.Decimal
	StartAsset      string
	ReferenceAsset  string
}

// SolutionsComponent renders the found-solutions list.
type SolutionsComponent struct {
	rows    []SolutionRow
	maxRows int
	offset  int
}

// NewSolutionsComponent creates a new solutions component.
func NewSolutionsComponent(maxRows int) *SolutionsComponent {
	return &SolutionsComponent{
		rows:    make([]SolutionRow, 0),
		maxRows: maxRows,
	}
}

// Add adds a new solution to the top of the list.
func (s *SolutionsComponent) Add(row SolutionRow) {
	s.rows = append([]SolutionRow{row}, s.rows...)
	if len(s.rows) > 200 {
		s.rows = s.rows[:200]
	}
	s.offset = 0
}

// Clear clears all solutions.
func (s *SolutionsComponent) Clear() {
	s.rows = make([]SolutionRow, 0)
	s.offset = 0
}

// ScrollUp moves the visible window toward older solutions.
func (s *SolutionsComponent) ScrollUp() {
	if s.offset+s.maxRows < len(s.rows) {
		s.offset++
	}
}

// ScrollDown moves the visible window toward newer solutions.
func (s *SolutionsComponent) ScrollDown() {
	if s.offset > 0 {
		s.offset--
	}
}

// Count returns the number of stored solutions.
func (s *SolutionsComponent) Count() int {
	return len(s.rows)
}

// View renders the solutions component.
func (s *SolutionsComponent) View() string {
	if len(s.rows) == 0 {
		return "No profitable paths found yet..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	result := headerStyle.Render(fmt.Sprintf("SOLUTIONS (%d found)\n", len(s.rows)))
	result += "┌──────────┬──────────────────────────────────┬───────┬────────────┬──────────────┬───────────┐\n"
	result += "│   Time   │               Path               │ Edges │   Amount   │    Profit    │  Ref. P&L │\n"
	result += "├──────────┼──────────────────────────────────┼───────┼────────────┼──────────────┼───────────┤\n"

	end := s.offset + s.maxRows
	if end > len(s.rows) {
		end = len(s.rows)
	}
	for _, row := range s.rows[s.offset:end] {
		path := row.Path
		if len(path) > 32 {
			path = path[:29] + "..."
		}
		result += fmt.Sprintf("│ %-8s │ %-32s │ %5d │ %10s │ %s │ %9s │\n",
			row.Time,
			path,
			row.Edges,
			fmt.Sprintf("%s %s", row.Amount.StringFixed(4), row.StartAsset),
			profitStyle.Render(fmt.Sprintf("%12s", row.Profit.StringFixed(8))),
			fmt.Sprintf("%.2f %s", row.ProfitReference.InexactFloat64(), row.ReferenceAsset),
		)
	}

	result += "└──────────┴──────────────────────────────────┴───────┴────────────┴──────────────┴───────────┘"

	return result
}

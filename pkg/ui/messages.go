// Package ui provides the Bubble Tea TUI for the circlepath bot.
package ui

import (
	"time"

	"github.com/fd1az/circlepath-bot/business/circlepath/domain"
)

// Message types for TUI updates

// SolutionMsg is sent when a profitable circular path is found.
type SolutionMsg struct {
	Solution *domain.Solution
}

// ScanMsg is sent after each scanner pass over the asset graph.
type ScanMsg struct {
	StartAsset     string
	PathsSearched  int
	Solutions      int
	BooksAvailable int
	Duration       time.Duration
	Timestamp      time.Time
}

// ConnectionStatusMsg is sent when connection status changes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}

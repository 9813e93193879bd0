// Package main is the entry point for the CirclePath Bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/circlepath-bot/business/circlepath"
	circlepathDI "github.com/fd1az/circlepath-bot/business/circlepath/di"
	"github.com/fd1az/circlepath-bot/business/market"
	marketDI "github.com/fd1az/circlepath-bot/business/market/di"
	"github.com/fd1az/circlepath-bot/business/market/infra/snapshot"
	"github.com/fd1az/circlepath-bot/internal/apm"
	"github.com/fd1az/circlepath-bot/internal/config"
	"github.com/fd1az/circlepath-bot/internal/health"
	"github.com/fd1az/circlepath-bot/internal/logger"
	"github.com/fd1az/circlepath-bot/internal/metrics"
	"github.com/fd1az/circlepath-bot/internal/monolith"
	"github.com/fd1az/circlepath-bot/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	mode := flag.String("mode", "live", "Data source: live or replay")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("circlepath-bot %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if *mode != "live" && *mode != "replay" {
		fmt.Fprintf(os.Stderr, "invalid -mode %q, want live or replay\n", *mode)
		os.Exit(1)
	}
	replay := *mode == "replay"

	// TUI is the default for live runs, CLI is for debugging. Replay drives
	// scans from snapshot files and always reports to the console.
	tuiMode := !*cliMode && !replay

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath, tuiMode, replay); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode, replay bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules know
	cfg.App.TUIMode = tuiMode

	// Setup logger (only log to stderr in CLI mode)
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		modeStr := "live"
		if replay {
			modeStr = "replay"
		}
		log.Info(ctx, "starting CirclePath Bot",
			"version", version,
			"environment", cfg.App.Environment,
			"mode", modeStr,
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		// Set service name env var for OTEL
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		// Initialize tracing with Zipkin (local dev friendly)
		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		// Initialize metrics with Prometheus
		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		// Start Prometheus metrics server in background
		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server on port 8081
	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&market.Module{Replay: replay},     // Must be first - provides the book store
		&circlepath.Module{Replay: replay}, // Depends on market for books and symbols
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if tuiMode {
		// TUI mode: Start modules in background so TUI shows immediately
		startFunc := func() error {
			ui.Send(ui.StartupMsg{Step: "config", Status: "done"})
			ui.Send(ui.StartupMsg{Step: "binance", Status: "connecting"})
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			feeder := marketDI.GetFeeder(mono.Services())
			reporter := circlepathDI.GetReporter(mono.Services())
			reporter.UpdateConnectionStatus("Binance", feeder.IsConnected())
			return nil
		}
		stopFunc := func() {
			scanner := circlepathDI.GetScanner(mono.Services())
			scanner.Stop()
		}
		return runTUI(ctx, startFunc, stopFunc)
	}

	// CLI and replay modes: Start modules synchronously
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	if replay {
		return runReplay(ctx, cfg, mono, log)
	}

	return runCLI(ctx, mono, log)
}

func runCLI(ctx context.Context, mono monolith.Monolith, log *logger.Logger) error {
	log.Info(ctx, "all modules started, scanning for circular paths")

	feeder := marketDI.GetFeeder(mono.Services())
	reporter := circlepathDI.GetReporter(mono.Services())
	reporter.UpdateConnectionStatus("Binance", feeder.IsConnected())

	// The scanner loop was started by the circlepath module; just wait.
	<-ctx.Done()

	log.Info(ctx, "shutting down")

	scanner := circlepathDI.GetScanner(mono.Services())
	if err := scanner.Stop(); err != nil {
		log.Error(ctx, "error stopping scanner", "error", err)
	}

	return nil
}

// runReplay drives one scan per recorded snapshot frame, pacing frames at
// their recorded cadence.
func runReplay(ctx context.Context, cfg *config.Config, mono monolith.Monolith, log *logger.Logger) error {
	store := marketDI.GetBookStore(mono.Services())
	scanner := circlepathDI.GetScanner(mono.Services())
	reporter := circlepathDI.GetReporter(mono.Services())

	replayer := snapshot.NewReplayer(store, cfg.Snapshot.Dir, cfg.Snapshot.MaxReplayGap, log)

	if err := reporter.Start(ctx); err != nil {
		return err
	}

	log.Info(ctx, "replaying snapshots", "dir", cfg.Snapshot.Dir)

	err := replayer.Replay(ctx, func(ctx context.Context, frameTime time.Time) error {
		log.Debug(ctx, "scanning frame", "frame_time", frameTime.Format(time.RFC3339))
		scanner.ScanOnce(ctx)
		return nil
	})
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	log.Info(ctx, "replay complete")
	return reporter.Stop()
}

func runTUI(ctx context.Context, startFunc func() error, stopFunc func()) error {
	// Channel to receive StartModulesMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program IMMEDIATELY (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	// Run bot logic in background (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete (StartModulesMsg signal)
		select {
		case <-startSignal:
			// Welcome complete, start modules
		case <-ctx.Done():
			errCh <- nil
			return
		}

		// Start modules and scanner (connections happen here, TUI shows progress)
		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		// Wait for context cancellation
		<-ctx.Done()

		// Stop scanner
		stopFunc()
		errCh <- nil
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Check for bot errors
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// Package circlepath implements the circular arbitrage bounded context:
// the asset graph, path search, profit simulation and the periodic scanner.
package circlepath

import (
	"context"

	"github.com/fd1az/circlepath-bot/business/circlepath/app"
	circlepathDI "github.com/fd1az/circlepath-bot/business/circlepath/di"
	"github.com/fd1az/circlepath-bot/business/circlepath/domain"
	"github.com/fd1az/circlepath-bot/business/circlepath/infra"
	marketDI "github.com/fd1az/circlepath-bot/business/market/di"
	"github.com/fd1az/circlepath-bot/internal/config"
	"github.com/fd1az/circlepath-bot/internal/di"
	"github.com/fd1az/circlepath-bot/internal/logger"
	"github.com/fd1az/circlepath-bot/internal/monolith"
)

// Module implements the circlepath bounded context. It depends on the market
// module for symbol metadata and order books, so it must be registered after
// it. In replay mode the scan loop stays off; the replay driver calls
// ScanOnce per frame instead.
type Module struct {
	Replay bool
}

// RegisterServices registers all circlepath services with the DI container.
// The engine factory reads symbol metadata from the book store, so it must
// not be resolved before the market module's Startup has run.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, circlepathDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.App.TUIMode {
			return infra.NewTUIReporter()
		}
		return infra.NewConsoleReporter()
	})

	di.RegisterToken(c, circlepathDI.Engine, func(sr di.ServiceRegistry) *app.Engine {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		store := marketDI.GetBookStore(sr)

		graph := domain.NewGraph(store.SymbolInfos())

		simulator := app.NewSimulator(store, app.SimulatorConfig{
			TakeFraction:      cfg.Engine.TakeFractionDecimal(),
			MaxPriceDeviation: cfg.Engine.MaxPriceDeviationDecimal(),
			MaxAggLevels:      cfg.Engine.MaxAggLevels,
			TakerFee:          cfg.Binance.TakerFeeDecimal(),
			ReferenceAsset:    cfg.Engine.ReferenceAsset,
		}, log)

		engine, err := app.NewEngine(graph, simulator, app.EngineConfig{
			MinPathEdges:     cfg.Engine.MinPathLength,
			MaxPathEdges:     cfg.Engine.MaxPathLength,
			MinProfitPercent: cfg.Engine.MinProfitPercentDecimal(),
		}, log)
		if err != nil {
			panic("failed to create engine: " + err.Error())
		}
		return engine
	})

	di.RegisterToken(c, circlepathDI.Scanner, func(sr di.ServiceRegistry) *app.Scanner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewScanner(
			circlepathDI.GetEngine(sr),
			marketDI.GetBookStore(sr),
			circlepathDI.GetReporter(sr),
			app.ScannerConfig{
				StartAsset:    cfg.Scanner.StartAsset,
				DesiredAmount: cfg.Scanner.StartAmountDecimal(),
				Interval:      cfg.Scanner.Interval,
			},
			log,
		)
	})

	return nil
}

// Startup builds the engine over the loaded symbol metadata and, in live
// mode, starts the periodic scan loop.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()

	engine := circlepathDI.GetEngine(mono.Services())

	pathCount, err := engine.PathCount(cfg.Scanner.StartAsset)
	if err != nil {
		return err
	}
	log.Info(ctx, "asset graph built",
		"start_asset", cfg.Scanner.StartAsset,
		"paths", pathCount)

	if m.Replay {
		log.Info(ctx, "circlepath module started in replay mode")
		return nil
	}

	scanner := circlepathDI.GetScanner(mono.Services())
	if err := scanner.Start(ctx); err != nil {
		return err
	}

	log.Info(ctx, "circlepath module started",
		"interval", cfg.Scanner.Interval.String())
	return nil
}

// Package market implements the market data bounded context: live depth
// streaming, symbol metadata, the order book store and snapshot recording.
package market

import (
	"context"
	"strings"
	"time"

	"github.com/fd1az/circlepath-bot/business/market/app"
	marketDI "github.com/fd1az/circlepath-bot/business/market/di"
	"github.com/fd1az/circlepath-bot/business/market/domain"
	"github.com/fd1az/circlepath-bot/business/market/infra/binance"
	"github.com/fd1az/circlepath-bot/business/market/infra/snapshot"
	"github.com/fd1az/circlepath-bot/internal/config"
	"github.com/fd1az/circlepath-bot/internal/di"
	"github.com/fd1az/circlepath-bot/internal/logger"
	"github.com/fd1az/circlepath-bot/internal/monolith"
)

// Module implements the market bounded context. In replay mode the live feed
// and recorder stay off; books come from the snapshot replayer instead.
type Module struct {
	Replay bool
}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, marketDI.BookStore, func(sr di.ServiceRegistry) *app.BookStore {
		cfg := sr.Get("config").(*config.Config)
		return app.NewBookStore(cfg.Binance.MakerFeeDecimal())
	})

	di.RegisterToken(c, marketDI.ExchangeInfo, func(sr di.ServiceRegistry) app.ExchangeInfoProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		infoCfg := binance.DefaultExchangeInfoConfig()
		if cfg.Binance.APIURL != "" {
			infoCfg.BaseURL = cfg.Binance.APIURL
		}

		client, err := binance.NewExchangeInfoClient(infoCfg, log)
		if err != nil {
			panic("failed to create exchange info client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, marketDI.Feeder, func(sr di.ServiceRegistry) *binance.Feeder {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		store := marketDI.GetBookStore(sr)

		clientCfg := binance.DefaultClientConfig(cfg.Binance.Symbols)
		if cfg.Binance.WebSocketURL != "" {
			clientCfg.BaseURL = cfg.Binance.WebSocketURL
		}
		clientCfg.DepthSpeedMs = cfg.Binance.DepthSpeedMs
		clientCfg.ReadTimeout = cfg.Binance.ReadTimeout

		client, err := binance.NewClient(clientCfg, log)
		if err != nil {
			panic("failed to create binance client: " + err.Error())
		}

		feeder, err := binance.NewFeeder(client, store, log)
		if err != nil {
			panic("failed to create feeder: " + err.Error())
		}
		return feeder
	})

	return nil
}

// Startup resolves symbol metadata and, in live mode, connects the depth feed
// and starts snapshot recording.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()
	store := marketDI.GetBookStore(mono.Services())

	m.loadSymbolInfos(ctx, mono, store)

	if m.Replay {
		log.Info(ctx, "market module started in replay mode")
		return nil
	}

	feeder := marketDI.GetFeeder(mono.Services())

	// Connect with a short timeout - don't block startup
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := feeder.Start(connectCtx); err != nil {
		log.Warn(ctx, "binance connection failed, will retry in background", "error", err)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Second):
					if err := feeder.Start(ctx); err != nil {
						log.Warn(ctx, "binance retry failed", "error", err)
					} else {
						log.Info(ctx, "binance connected successfully")
						return
					}
				}
			}
		}()
	}

	if cfg.Snapshot.Record {
		recorder := snapshot.NewRecorder(store, cfg.Snapshot.Dir, cfg.Snapshot.RecordInterval, log)
		if err := recorder.Start(ctx); err != nil {
			return err
		}
		log.Info(ctx, "snapshot recording enabled",
			"dir", cfg.Snapshot.Dir,
			"interval", cfg.Snapshot.RecordInterval.String())
	}

	log.Info(ctx, "market module started")
	return nil
}

// loadSymbolInfos fetches symbol metadata from the exchange and falls back to
// deriving it from the symbol names when the exchange is unreachable, so
// replay keeps working offline.
func (m *Module) loadSymbolInfos(ctx context.Context, mono monolith.Monolith, store *app.BookStore) {
	cfg := mono.Config()
	log := mono.Logger()

	infoCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	provider := marketDI.GetExchangeInfo(mono.Services())
	infos, err := provider.SymbolInfos(infoCtx, cfg.Binance.Symbols)
	if err == nil && len(infos) > 0 {
		store.SetSymbolInfos(infos)
		log.Info(ctx, "symbol metadata loaded", "symbols", len(infos))
		return
	}

	log.Warn(ctx, "exchange info unavailable, deriving symbol metadata from names", "error", err)
	store.SetSymbolInfos(deriveSymbolInfos(cfg.Binance.Symbols))
}

// Quote assets recognized when splitting a symbol name without exchange
// metadata, longest first so USDT wins over USD.
var knownQuoteAssets = []string{"USDT", "USDC", "FDUSD", "TUSD", "BUSD", "BTC", "ETH", "BNB", "EUR", "TRY"}

// deriveSymbolInfos splits symbols like "ETHUSDT" by recognized quote asset
// suffix. Price precision defaults to the exchange maximum of 8 digits.
func deriveSymbolInfos(symbols []string) []domain.SymbolInfo {
	infos := make([]domain.SymbolInfo, 0, len(symbols))
	for _, sym := range symbols {
		upper := strings.ToUpper(sym)
		for _, quote := range knownQuoteAssets {
			if strings.HasSuffix(upper, quote) && len(upper) > len(quote) {
				infos = append(infos, domain.SymbolInfo{
					Symbol:                    upper,
					BaseAsset:                 strings.TrimSuffix(upper, quote),
					QuoteAsset:                quote,
					QuotePriceIncrementDigits: 8,
				})
				break
			}
		}
	}
	return infos
}

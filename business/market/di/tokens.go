// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/circlepath-bot/business/market/app"
	"github.com/fd1az/circlepath-bot/business/market/infra/binance"
	"github.com/fd1az/circlepath-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BookStore = di.NewToken[*app.BookStore]("market.BookStore")
)

// Private dependency tokens - internal to market module
var (
	ExchangeInfo = di.NewToken[app.ExchangeInfoProvider]("market:exchangeInfo")
	Feeder       = di.NewToken[*binance.Feeder]("market:feeder")
)

// Helper functions for type-safe access
func GetBookStore(c di.ServiceRegistry) *app.BookStore {
	return di.GetToken(c, BookStore)
}

func GetExchangeInfo(c di.ServiceRegistry) app.ExchangeInfoProvider {
	return di.GetToken(c, ExchangeInfo)
}

func GetFeeder(c di.ServiceRegistry) *binance.Feeder {
	return di.GetToken(c, Feeder)
}

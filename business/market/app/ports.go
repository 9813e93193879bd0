// Package app contains application services and port definitions for the market context.
package app

import (
	"context"

	"github.com/fd1az/circlepath-bot/business/market/domain"
)

// ExchangeInfoProvider fetches symbol metadata from the exchange.
type ExchangeInfoProvider interface {
	// SymbolInfos returns metadata for the given symbols. Symbols unknown to
	// the exchange are omitted from the result.
	SymbolInfos(ctx context.Context, symbols []string) ([]domain.SymbolInfo, error)
}

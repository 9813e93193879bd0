package binance

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/circlepath-bot/business/market/app"
	"github.com/fd1az/circlepath-bot/internal/logger"
)

// Feeder wires the depth stream into the book store: every partial depth
// snapshot replaces the stored book for its symbol.
type Feeder struct {
	client *Client
	store  *app.BookStore
	logger logger.LoggerInterface

	booksInstalled metric.Int64Counter
}

// NewFeeder creates a feeder over an existing client and store.
func NewFeeder(client *Client, store *app.BookStore, log logger.LoggerInterface) (*Feeder, error) {
	meter := otel.Meter(meterName)
	booksInstalled, err := meter.Int64Counter(
		"market_books_installed_total",
		metric.WithDescription("Order book snapshots installed into the store"),
	)
	if err != nil {
		return nil, err
	}

	return &Feeder{
		client:         client,
		store:          store,
		logger:         log,
		booksInstalled: booksInstalled,
	}, nil
}

// Start registers the depth handler and connects the stream.
func (f *Feeder) Start(ctx context.Context) error {
	f.client.OnDepth(func(event *PartialDepthEvent) {
		f.handleDepth(ctx, event)
	})
	return f.client.Connect(ctx)
}

func (f *Feeder) handleDepth(ctx context.Context, event *PartialDepthEvent) {
	book, err := event.ToBook()
	if err != nil {
		f.logger.Warn(ctx, "dropping unparseable depth snapshot",
			"symbol", event.Symbol,
			"error", err)
		return
	}
	f.store.ReplaceBook(event.Symbol, book)
	f.booksInstalled.Add(ctx, 1)
}

// Close stops the underlying stream.
func (f *Feeder) Close() error {
	return f.client.Close()
}

// IsConnected reports whether the underlying stream is connected.
func (f *Feeder) IsConnected() bool {
	return f.client.IsConnected()
}

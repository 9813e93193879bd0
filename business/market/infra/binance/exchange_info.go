package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/circlepath-bot/business/market/domain"
	"github.com/fd1az/circlepath-bot/internal/apperror"
	"github.com/fd1az/circlepath-bot/internal/circuitbreaker"
	"github.com/fd1az/circlepath-bot/internal/httpclient"
	"github.com/fd1az/circlepath-bot/internal/logger"
	"github.com/fd1az/circlepath-bot/internal/ratelimit"
)

const (
	// Binance REST API endpoints
	BaseAPIURL = "https://api.binance.com"

	exchangeInfoEndpoint = "/api/v3/exchangeInfo"

	// Default HTTP client settings
	httpTimeout = 10 * time.Second

	// Binance allows 6000 request weight per minute; exchangeInfo weighs 20.
	requestsPerMinute = 100
)

// ExchangeInfoConfig holds configuration for the exchange info client.
type ExchangeInfoConfig struct {
	BaseURL string        // API base URL (empty = default)
	Timeout time.Duration // Request timeout
}

// DefaultExchangeInfoConfig returns sensible defaults.
func DefaultExchangeInfoConfig() ExchangeInfoConfig {
	return ExchangeInfoConfig{
		BaseURL: BaseAPIURL,
		Timeout: httpTimeout,
	}
}

// ExchangeInfoClient fetches symbol metadata from the Binance REST API.
type ExchangeInfoClient struct {
	client  httpclient.Client
	config  ExchangeInfoConfig
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*ExchangeInfoResponse]
}

// NewExchangeInfoClient creates a new exchange info client.
func NewExchangeInfoClient(cfg ExchangeInfoConfig, log logger.LoggerInterface) (*ExchangeInfoClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &ExchangeInfoClient{
		client:  client,
		config:  cfg,
		logger:  log,
		tracer:  tracer,
		limiter: ratelimit.New(requestsPerMinute),
		breaker: circuitbreaker.New[*ExchangeInfoResponse](circuitbreaker.DefaultConfig("binance-exchange-info"), log),
	}, nil
}

// SymbolInfos fetches metadata for the given symbols. Symbols that are not
// actively trading are dropped from the result.
func (c *ExchangeInfoClient) SymbolInfos(ctx context.Context, symbols []string) ([]domain.SymbolInfo, error) {
	ctx, span := c.tracer.Start(ctx, "binance.http.exchange_info",
		trace.WithAttributes(
			attribute.StringSlice("symbols", symbols),
		),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// Binance expects a JSON array in the symbols query parameter.
	symbolsParam, err := json.Marshal(symbols)
	if err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (*ExchangeInfoResponse, error) {
		var info ExchangeInfoResponse
		resp, err := c.client.NewRequestWithOptions(
			httpclient.WithLabels(
				httpclient.NewLabel("endpoint", "exchangeInfo"),
			),
			httpclient.WithResponseErrorHandler(binanceErrorHandler),
		).
			SetQueryParam("symbols", url.QueryEscape(string(symbolsParam))).
			SetResult(&info).
			Get(ctx, exchangeInfoEndpoint)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, apperror.New(apperror.CodeExchangeInfoFailed,
				apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
		}
		return &info, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Wrap(err, apperror.CodeExchangeInfoFailed, "failed to fetch exchange info")
	}

	infos := make([]domain.SymbolInfo, 0, len(result.Symbols))
	for _, entry := range result.Symbols {
		if entry.Status != TradingStatus {
			c.logger.Warn(ctx, "symbol not trading, skipping",
				"symbol", entry.Symbol,
				"status", entry.Status)
			continue
		}
		infos = append(infos, entry.ToSymbolInfo())
	}

	span.SetAttributes(attribute.Int("resolved", len(infos)))

	c.logger.Debug(ctx, "fetched exchange info",
		"requested", len(symbols),
		"resolved", len(infos))

	return infos, nil
}

// BinanceAPIError represents an error response from the Binance API.
type BinanceAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *BinanceAPIError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

// binanceErrorHandler parses Binance API error responses.
func binanceErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr BinanceAPIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}

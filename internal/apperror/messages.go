package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Order book store errors
	CodeSymbolNotFound:    "No order book stored for symbol",
	CodeEmptyOrderBook:    "Order book has no levels on the required side",
	CodeInvalidOrderBook:  "Invalid order book data",
	CodeConversionFailed:  "No direct symbol to convert between assets",
	CodeSnapshotCorrupted: "Order book snapshot could not be decoded",

	// Exchange metadata errors
	CodeSymbolInfoNotFound: "Symbol metadata not found",
	CodeActionUndefined:    "Held asset is neither base nor quote of symbol",

	// Path search errors
	CodeTransitionNotFound: "No transition connects the adjacent path states",
	CodeUnknownStartAsset:  "Start asset is not a node of the asset graph",
	CodeInvalidPathBounds:  "Path length bounds are out of range",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// Exchange (Binance) errors
	CodeBinanceConnectionFailed: "Failed to connect to Binance API",
	CodeBinanceAPIError:         "Binance API error",
	CodeBinanceRateLimited:      "Binance rate limit exceeded",
	CodeExchangeInfoFailed:      "Failed to fetch exchange metadata",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}

package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Domain-specific error codes
const (
	// Order book store errors
	CodeSymbolNotFound    Code = "SYMBOL_NOT_FOUND"
	CodeEmptyOrderBook    Code = "EMPTY_ORDER_BOOK"
	CodeInvalidOrderBook  Code = "INVALID_ORDER_BOOK"
	CodeConversionFailed  Code = "CONVERSION_FAILED"
	CodeSnapshotCorrupted Code = "SNAPSHOT_CORRUPTED"

	// Exchange metadata errors
	CodeSymbolInfoNotFound Code = "SYMBOL_INFO_NOT_FOUND"
	CodeActionUndefined    Code = "ACTION_UNDEFINED"

	// Path search errors
	CodeTransitionNotFound Code = "TRANSITION_NOT_FOUND"
	CodeUnknownStartAsset  Code = "UNKNOWN_START_ASSET"
	CodeInvalidPathBounds  Code = "INVALID_PATH_BOUNDS"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Exchange (Binance) errors
	CodeBinanceConnectionFailed Code = "BINANCE_CONNECTION_FAILED"
	CodeBinanceAPIError         Code = "BINANCE_API_ERROR"
	CodeBinanceRateLimited      Code = "BINANCE_RATE_LIMITED"
	CodeExchangeInfoFailed      Code = "EXCHANGE_INFO_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)

// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Hard limits that cannot be configured away.
const (
	MinPathLengthBound = 2
	MaxPathLengthBound = 10

	// MinProfitFloor is the lowest accepted min_profit_percent. A run that
	// keeps solutions below this threshold trades below the fee noise.
	MinProfitFloor = 0.0015
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// BinanceConfig holds Binance API configuration.
type BinanceConfig struct {
	WebSocketURL string        `mapstructure:"websocket_url"` // wss://stream.binance.com:9443 or wss://stream.binance.us:9443 for US
	APIURL       string        `mapstructure:"api_url"`
	Symbols      []string      `mapstructure:"symbols"` // allowed symbols, e.g. BTCUSDT
	DepthSpeedMs int           `mapstructure:"depth_speed_ms"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	MakerFee     float64       `mapstructure:"maker_fee"`
	TakerFee     float64       `mapstructure:"taker_fee"`
}

// MakerFeeDecimal returns the maker fee as decimal.Decimal.
func (c *BinanceConfig) MakerFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MakerFee)
}

// TakerFeeDecimal returns the taker fee as decimal.Decimal.
func (c *BinanceConfig) TakerFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TakerFee)
}

// EngineConfig holds circle path search and simulation configuration.
type EngineConfig struct {
	MinPathLength     int     `mapstructure:"min_path_length"` // in edges
	MaxPathLength     int     `mapstructure:"max_path_length"` // in edges
	MinProfitPercent  float64 `mapstructure:"min_profit_percent"`
	TakeFraction      float64 `mapstructure:"take_fraction"`
	MaxPriceDeviation float64 `mapstructure:"max_price_deviation"`
	MaxAggLevels      int     `mapstructure:"max_agg_levels"`
	ReferenceAsset    string  `mapstructure:"reference_asset"`
}

// MinProfitPercentDecimal returns min profit percent as decimal.Decimal.
func (c *EngineConfig) MinProfitPercentDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitPercent)
}

// TakeFractionDecimal returns the liquidity take fraction as decimal.Decimal.
func (c *EngineConfig) TakeFractionDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TakeFraction)
}

// MaxPriceDeviationDecimal returns the aggregation deviation tolerance as decimal.Decimal.
func (c *EngineConfig) MaxPriceDeviationDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxPriceDeviation)
}

// ScannerConfig holds the periodic scan loop configuration.
type ScannerConfig struct {
	StartAsset  string        `mapstructure:"start_asset"`
	StartAmount float64       `mapstructure:"start_amount"`
	Interval    time.Duration `mapstructure:"interval"`
}

// StartAmountDecimal returns the start amount as decimal.Decimal.
func (c *ScannerConfig) StartAmountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.StartAmount)
}

// SnapshotConfig holds order book snapshot recording/replay configuration.
type SnapshotConfig struct {
	Dir            string        `mapstructure:"dir"`
	Record         bool          `mapstructure:"record"`
	RecordInterval time.Duration `mapstructure:"record_interval"`
	MaxReplayGap   time.Duration `mapstructure:"max_replay_gap"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("CIRCLE")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "CIRCLE_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "CIRCLE_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "CIRCLE_LOG_LEVEL", "LOG_LEVEL")

	// Binance
	v.BindEnv("binance.websocket_url", "CIRCLE_BINANCE_WS_URL", "BINANCE_WS_URL")
	v.BindEnv("binance.api_url", "CIRCLE_BINANCE_API_URL", "BINANCE_API_URL")
	v.BindEnv("binance.symbols", "CIRCLE_BINANCE_SYMBOLS", "BINANCE_SYMBOLS")

	// Engine
	v.BindEnv("engine.min_path_length", "CIRCLE_MIN_PATH_LENGTH")
	v.BindEnv("engine.max_path_length", "CIRCLE_MAX_PATH_LENGTH")
	v.BindEnv("engine.min_profit_percent", "CIRCLE_MIN_PROFIT_PERCENT")

	// Scanner
	v.BindEnv("scanner.start_asset", "CIRCLE_START_ASSET")
	v.BindEnv("scanner.start_amount", "CIRCLE_START_AMOUNT")

	// Snapshot
	v.BindEnv("snapshot.dir", "CIRCLE_SNAPSHOT_DIR")

	// Telemetry
	v.BindEnv("telemetry.enabled", "CIRCLE_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "CIRCLE_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "CIRCLE_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "circlepath-bot")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Binance defaults
	v.SetDefault("binance.websocket_url", "wss://stream.binance.com:9443")
	v.SetDefault("binance.api_url", "https://api.binance.com")
	v.SetDefault("binance.symbols", []string{"BTCUSDT", "ETHUSDT", "ETHBTC"})
	v.SetDefault("binance.depth_speed_ms", 100)
	v.SetDefault("binance.read_timeout", "30s")
	v.SetDefault("binance.maker_fee", 0.001)
	v.SetDefault("binance.taker_fee", 0.001)

	// Engine defaults
	v.SetDefault("engine.min_path_length", 2)
	v.SetDefault("engine.max_path_length", 4)
	v.SetDefault("engine.min_profit_percent", 0.0015)
	v.SetDefault("engine.take_fraction", 0.5)
	v.SetDefault("engine.max_price_deviation", 0.002)
	v.SetDefault("engine.max_agg_levels", 5)
	v.SetDefault("engine.reference_asset", "USDT")

	// Scanner defaults
	v.SetDefault("scanner.start_asset", "USDT")
	v.SetDefault("scanner.start_amount", 100)
	v.SetDefault("scanner.interval", "5s")

	// Snapshot defaults
	v.SetDefault("snapshot.dir", "./snapshots")
	v.SetDefault("snapshot.record", false)
	v.SetDefault("snapshot.record_interval", "5s")
	v.SetDefault("snapshot.max_replay_gap", "15s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "circlepath-bot")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration. Invalid values are rejected, never clamped.
func (c *Config) Validate() error {
	if c.Binance.WebSocketURL == "" {
		return fmt.Errorf("binance.websocket_url is required")
	}
	if c.Binance.APIURL == "" {
		return fmt.Errorf("binance.api_url is required")
	}
	if len(c.Binance.Symbols) == 0 {
		return fmt.Errorf("binance.symbols cannot be empty")
	}
	if c.Binance.MakerFee < 0 || c.Binance.TakerFee < 0 {
		return fmt.Errorf("binance fees cannot be negative")
	}

	e := c.Engine
	if e.MinPathLength < MinPathLengthBound {
		return fmt.Errorf("engine.min_path_length must be at least %d, got %d", MinPathLengthBound, e.MinPathLength)
	}
	if e.MaxPathLength > MaxPathLengthBound {
		return fmt.Errorf("engine.max_path_length must be at most %d, got %d", MaxPathLengthBound, e.MaxPathLength)
	}
	if e.MinPathLength > e.MaxPathLength {
		return fmt.Errorf("engine.min_path_length %d exceeds engine.max_path_length %d", e.MinPathLength, e.MaxPathLength)
	}
	if e.MinProfitPercent < MinProfitFloor {
		return fmt.Errorf("engine.min_profit_percent must be at least %v, got %v", MinProfitFloor, e.MinProfitPercent)
	}
	if e.TakeFraction <= 0 || e.TakeFraction > 1 {
		return fmt.Errorf("engine.take_fraction must be in (0, 1], got %v", e.TakeFraction)
	}
	if e.MaxPriceDeviation < 0 {
		return fmt.Errorf("engine.max_price_deviation cannot be negative, got %v", e.MaxPriceDeviation)
	}
	if e.MaxAggLevels < 1 {
		return fmt.Errorf("engine.max_agg_levels must be at least 1, got %d", e.MaxAggLevels)
	}
	if e.ReferenceAsset == "" {
		return fmt.Errorf("engine.reference_asset is required")
	}

	if c.Scanner.StartAsset == "" {
		return fmt.Errorf("scanner.start_asset is required")
	}
	if c.Scanner.StartAmount <= 0 {
		return fmt.Errorf("scanner.start_amount must be positive, got %v", c.Scanner.StartAmount)
	}
	if c.Scanner.Interval <= 0 {
		return fmt.Errorf("scanner.interval must be positive")
	}

	return nil
}

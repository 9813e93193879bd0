package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{Name: "circlepath-bot", LogLevel: "info"},
		Binance: BinanceConfig{
			WebSocketURL: "wss://stream.binance.com:9443",
			APIURL:       "https://api.binance.com",
			Symbols:      []string{"BTCUSDT", "ETHUSDT", "ETHBTC"},
			DepthSpeedMs: 100,
			MakerFee:     0.001,
			TakerFee:     0.001,
		},
		Engine: EngineConfig{
			MinPathLength:     2,
			MaxPathLength:     4,
			MinProfitPercent:  0.0015,
			TakeFraction:      0.5,
			MaxPriceDeviation: 0.002,
			MaxAggLevels:      5,
			ReferenceAsset:    "USDT",
		},
		Scanner: ScannerConfig{
			StartAsset:  "USDT",
			StartAmount: 100,
			Interval:    5 * time.Second,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty symbols",
			mutate:  func(c *Config) { c.Binance.Symbols = nil },
			wantErr: "binance.symbols",
		},
		{
			name:    "min path length too small",
			mutate:  func(c *Config) { c.Engine.MinPathLength = 1 },
			wantErr: "min_path_length",
		},
		{
			name:    "max path length too large",
			mutate:  func(c *Config) { c.Engine.MaxPathLength = 11 },
			wantErr: "max_path_length",
		},
		{
			name: "min exceeds max",
			mutate: func(c *Config) {
				c.Engine.MinPathLength = 5
				c.Engine.MaxPathLength = 4
			},
			wantErr: "exceeds",
		},
		{
			name:    "profit threshold below floor",
			mutate:  func(c *Config) { c.Engine.MinProfitPercent = 0.0001 },
			wantErr: "min_profit_percent",
		},
		{
			name:    "take fraction above one",
			mutate:  func(c *Config) { c.Engine.TakeFraction = 1.5 },
			wantErr: "take_fraction",
		},
		{
			name:    "negative deviation",
			mutate:  func(c *Config) { c.Engine.MaxPriceDeviation = -0.01 },
			wantErr: "max_price_deviation",
		},
		{
			name:    "zero start amount",
			mutate:  func(c *Config) { c.Scanner.StartAmount = 0 },
			wantErr: "start_amount",
		},
		{
			name:    "negative fee",
			mutate:  func(c *Config) { c.Binance.TakerFee = -0.001 },
			wantErr: "fees",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if cfg.Engine.MinPathLength != 2 {
		t.Errorf("expected default min_path_length 2, got %d", cfg.Engine.MinPathLength)
	}
	if cfg.Engine.MaxPathLength != 4 {
		t.Errorf("expected default max_path_length 4, got %d", cfg.Engine.MaxPathLength)
	}
	if cfg.Engine.ReferenceAsset != "USDT" {
		t.Errorf("expected default reference_asset USDT, got %s", cfg.Engine.ReferenceAsset)
	}
	if got := cfg.Engine.TakeFractionDecimal().String(); got != "0.5" {
		t.Errorf("expected take fraction 0.5, got %s", got)
	}
}

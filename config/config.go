// Package config loads and validates the bridge's static configuration.
// The file holds trading policy only; venue and telegram credentials come
// from the environment so they never land in version control.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/perpkit/bridge/engine"
	"github.com/perpkit/bridge/exchange"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the complete bridge configuration, immutable for the process
// lifetime once loaded.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Trading  TradingConfig  `json:"trading" yaml:"trading"`
	Brackets BracketConfig  `json:"brackets" yaml:"brackets"`
	Exchange ExchangeConfig `json:"exchange" yaml:"exchange"`
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// ServerConfig contains the inbound HTTP listener parameters.
type ServerConfig struct {
	Port int `json:"port" yaml:"port"`
}

// TradingConfig contains the order-translation policy.
type TradingConfig struct {
	Mode               string   `json:"mode" yaml:"mode"`                         // "LIVE" or "DRY"
	StakeCurrency      string   `json:"stake_currency" yaml:"stake_currency"`     // only USD is supported
	FeePercent         float64  `json:"fee_percent" yaml:"fee_percent"`           // limit fee as % of amount
	PostOnly           bool     `json:"post_only" yaml:"post_only"`
	TimeInForce        string   `json:"time_in_force" yaml:"time_in_force"`       // GTT, IOC or FOK
	OrderExpiration    string   `json:"order_expiration" yaml:"order_expiration"` // e.g. "24h"
	MaxMarginFraction  float64  `json:"max_margin_fraction" yaml:"max_margin_fraction"`
	CheckAllowedAssets bool     `json:"check_allowed_assets" yaml:"check_allowed_assets"`
	AllowedAssets      []string `json:"allowed_assets,omitempty" yaml:"allowed_assets,omitempty"`
	UseOraclePrice     bool     `json:"use_oracle_price" yaml:"use_oracle_price"`
}

// BracketConfig contains stop-loss/take-profit parameters.
type BracketConfig struct {
	StopLossEnabled   bool    `json:"stop_loss_enabled" yaml:"stop_loss_enabled"`
	StopLossPercent   float64 `json:"stop_loss_percent" yaml:"stop_loss_percent"`
	TakeProfitEnabled bool    `json:"take_profit_enabled" yaml:"take_profit_enabled"`
	TakeProfitPercent float64 `json:"take_profit_percent" yaml:"take_profit_percent"`
	Expiration        string  `json:"expiration" yaml:"expiration"` // short, e.g. "10m"
	FillPollInterval  string  `json:"fill_poll_interval" yaml:"fill_poll_interval"`
	FillWaitTimeout   string  `json:"fill_wait_timeout" yaml:"fill_wait_timeout"`
}

// ExchangeConfig contains venue connection parameters (not credentials).
type ExchangeConfig struct {
	Host    string `json:"host,omitempty" yaml:"host,omitempty"`
	Timeout string `json:"timeout" yaml:"timeout"`
}

// TelegramConfig gates outcome notifications. Token and chat id come from
// TELEGRAM_TOKEN / TELEGRAM_CHAT_ID in the environment.
type TelegramConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// JournalConfig contains order-journal parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	OrdersFile string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig contains logging parameters.
type LogConfig struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"` // tee to a file when set
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535")
	}
	if c.Trading.Mode != "LIVE" && c.Trading.Mode != "DRY" {
		return fmt.Errorf("trading.mode must be LIVE or DRY")
	}
	if c.Trading.StakeCurrency != "USD" {
		return fmt.Errorf("trading.stake_currency must be USD")
	}
	if c.Trading.FeePercent < 0 {
		return fmt.Errorf("trading.fee_percent must not be negative")
	}
	tif := exchange.TimeInForce(c.Trading.TimeInForce)
	if tif != exchange.GTT && tif != exchange.IOC && tif != exchange.FOK {
		return fmt.Errorf("trading.time_in_force must be GTT, IOC or FOK")
	}
	if c.Trading.MaxMarginFraction <= 0 {
		return fmt.Errorf("trading.max_margin_fraction must be positive")
	}
	if c.Trading.CheckAllowedAssets && len(c.Trading.AllowedAssets) == 0 {
		return fmt.Errorf("trading.allowed_assets required when check_allowed_assets is set")
	}
	if c.Brackets.StopLossEnabled && c.Brackets.StopLossPercent <= 0 {
		return fmt.Errorf("brackets.stop_loss_percent must be positive when enabled")
	}
	if c.Brackets.TakeProfitEnabled && c.Brackets.TakeProfitPercent <= 0 {
		return fmt.Errorf("brackets.take_profit_percent must be positive when enabled")
	}
	for field, v := range map[string]string{
		"trading.order_expiration":    c.Trading.OrderExpiration,
		"brackets.expiration":         c.Brackets.Expiration,
		"brackets.fill_poll_interval": c.Brackets.FillPollInterval,
		"brackets.fill_wait_timeout":  c.Brackets.FillWaitTimeout,
		"exchange.timeout":            c.Exchange.Timeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.OrdersFile == "" {
			return fmt.Errorf("journal.orders_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Live reports whether orders are actually submitted.
func (c *Config) Live() bool {
	return strings.EqualFold(c.Trading.Mode, "LIVE")
}

// EngineParams converts the validated configuration into the engine's
// immutable policy object. Call after Validate; duration fields are assumed
// parseable.
func (c *Config) EngineParams() engine.Params {
	return engine.Params{
		StakeCurrency:            c.Trading.StakeCurrency,
		Live:                     c.Live(),
		FeePercent:               decimal.NewFromFloat(c.Trading.FeePercent),
		PostOnly:                 c.Trading.PostOnly,
		TimeInForce:              exchange.TimeInForce(c.Trading.TimeInForce),
		OrderExpiration:          mustDuration(c.Trading.OrderExpiration),
		UseOraclePrice:           c.Trading.UseOraclePrice,
		CheckAllowedAssets:       c.Trading.CheckAllowedAssets,
		AllowedAssets:            slices.Clone(c.Trading.AllowedAssets),
		MaxInitialMarginFraction: decimal.NewFromFloat(c.Trading.MaxMarginFraction),
		StopLossEnabled:          c.Brackets.StopLossEnabled,
		StopLossPercent:          decimal.NewFromFloat(c.Brackets.StopLossPercent),
		TakeProfitEnabled:        c.Brackets.TakeProfitEnabled,
		TakeProfitPercent:        decimal.NewFromFloat(c.Brackets.TakeProfitPercent),
		BracketExpiration:        mustDuration(c.Brackets.Expiration),
		FillPollInterval:         mustDuration(c.Brackets.FillPollInterval),
		FillWaitTimeout:          mustDuration(c.Brackets.FillWaitTimeout),
	}
}

// ExchangeTimeout returns the per-call timeout for the venue client.
func (c *Config) ExchangeTimeout() time.Duration {
	return mustDuration(c.Exchange.Timeout)
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("duration %q not validated: %v", s, err))
	}
	return d
}

// Default returns a configuration with sensible defaults: dry mode, tier-1
// fees, a 24h order window and ten-minute brackets.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 7000,
		},
		Trading: TradingConfig{
			Mode:              "DRY",
			StakeCurrency:     "USD",
			FeePercent:        0.051,
			TimeInForce:       "GTT",
			OrderExpiration:   "24h",
			MaxMarginFraction: 0.5,
			AllowedAssets:     []string{"BTC", "ETH"},
		},
		Brackets: BracketConfig{
			StopLossPercent:   0.5,
			TakeProfitPercent: 1.0,
			Expiration:        "10m",
			FillPollInterval:  "2s",
			FillWaitTimeout:   "1m",
		},
		Exchange: ExchangeConfig{
			Timeout: "30s",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./perpbridge.sqlite",
		},
	}
}

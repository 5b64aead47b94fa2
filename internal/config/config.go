// Package config defines all configuration for the paper-trading engine.
// Config is loaded from a YAML file (default: configs/config.yaml) with
// fields overridable via ASHARE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	Account    AccountConfig    `mapstructure:"account"`
	Calendar   CalendarConfig   `mapstructure:"calendar"`
	MarketData MarketDataConfig `mapstructure:"market_data"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Store      StoreConfig      `mapstructure:"store"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
}

// AccountConfig seeds the paper-trading ledger.
type AccountConfig struct {
	InitialCash float64 `mapstructure:"initial_cash"`
	TPlus       int     `mapstructure:"t_plus"`
	LotSize     int     `mapstructure:"lot_size"`
}

// CalendarConfig configures the trading-calendar holiday source and the
// timezone session phases are evaluated in.
type CalendarConfig struct {
	Timezone     string   `mapstructure:"timezone"`
	HolidayDates []string `mapstructure:"holiday_dates"` // ISO "2006-01-02"
}

// MarketDataConfig points the price cache at either the live Eastmoney
// quote endpoint or, when Mock is true, an in-process MockSource.
type MarketDataConfig struct {
	Mock    bool          `mapstructure:"mock"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MatchingConfig tunes the background matching loop.
type MatchingConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	OrderTTL     time.Duration `mapstructure:"order_ttl"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// StoreConfig sets where account state is persisted (a single gob snapshot).
type StoreConfig struct {
	DataDir       string        `mapstructure:"data_dir"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DashboardConfig controls the optional read-only status/equity-stream server.
type DashboardConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads config from a YAML file with env var overrides.
// Operational fields use env vars prefixed ASHARE_, e.g.
// ASHARE_ACCOUNT_INITIAL_CASH, ASHARE_STORE_DATA_DIR.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("ASHARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override operational fields from env
	if dir := os.Getenv("ASHARE_STORE_DATA_DIR"); dir != "" {
		cfg.Store.DataDir = dir
	}
	if raw := os.Getenv("ASHARE_ACCOUNT_INITIAL_CASH"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Account.InitialCash = f
		}
	}
	if os.Getenv("ASHARE_MARKET_DATA_MOCK") == "true" || os.Getenv("ASHARE_MARKET_DATA_MOCK") == "1" {
		cfg.MarketData.Mock = true
	}

	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.Account.InitialCash <= 0 {
		return fmt.Errorf("account.initial_cash must be > 0")
	}
	if c.Account.TPlus < 0 {
		return fmt.Errorf("account.t_plus must be >= 0")
	}
	if c.Account.LotSize <= 0 {
		return fmt.Errorf("account.lot_size must be > 0")
	}
	if c.Calendar.Timezone == "" {
		return fmt.Errorf("calendar.timezone is required (e.g. Asia/Shanghai)")
	}
	if !c.MarketData.Mock && c.MarketData.BaseURL == "" {
		return fmt.Errorf("market_data.base_url is required unless market_data.mock is true")
	}
	if c.Matching.PollInterval <= 0 {
		return fmt.Errorf("matching.poll_interval must be > 0")
	}
	if c.Matching.OrderTTL <= 0 {
		return fmt.Errorf("matching.order_ttl must be > 0")
	}
	if c.Matching.MaxAttempts <= 0 {
		return fmt.Errorf("matching.max_attempts must be > 0")
	}
	if c.Store.DataDir == "" {
		return fmt.Errorf("store.data_dir is required")
	}
	if c.Store.FlushInterval <= 0 {
		return fmt.Errorf("store.flush_interval must be > 0")
	}
	return nil
}

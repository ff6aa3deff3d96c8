package infra

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all application settings. Sensitive values can be
// overridden through environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		Symbols      []string        `yaml:"symbols"`
		InitialCash  decimal.Decimal `yaml:"initial_cash"`
		FeeRate      decimal.Decimal `yaml:"fee_rate"`
		TaxRate      decimal.Decimal `yaml:"tax_rate"`
		BuyFraction  decimal.Decimal `yaml:"buy_fraction"`
		EpisodeSteps int             `yaml:"episode_steps"`
		RiskFreeRate float64         `yaml:"risk_free_rate"`
	} `yaml:"trading"`

	Coordinator struct {
		MaxRetries   int `yaml:"max_retries"`
		RetryDelayMS int `yaml:"retry_delay_ms"`
	} `yaml:"coordinator"`

	Risk struct {
		VaRConfidence float64 `yaml:"var_confidence"`
		VaRLimit      float64 `yaml:"var_limit"`
		MinSamples    int     `yaml:"min_samples"`
	} `yaml:"risk"`

	Feed struct {
		Enabled   bool   `yaml:"enabled"`
		WSURL     string `yaml:"ws_url"`
		AccessKey string `yaml:"access_key"`
	} `yaml:"feed"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset fields with market defaults.
func (c *Config) applyDefaults() {
	if c.Trading.FeeRate.IsZero() {
		c.Trading.FeeRate = decimal.NewFromFloat(0.003)
	}
	if c.Trading.TaxRate.IsZero() {
		c.Trading.TaxRate = decimal.NewFromFloat(0.001)
	}
	if c.Trading.BuyFraction.IsZero() {
		c.Trading.BuyFraction = decimal.NewFromFloat(0.05)
	}
	if c.Trading.EpisodeSteps == 0 {
		c.Trading.EpisodeSteps = 252
	}
	if c.Coordinator.MaxRetries == 0 {
		c.Coordinator.MaxRetries = 3
	}
	if c.Coordinator.RetryDelayMS == 0 {
		c.Coordinator.RetryDelayMS = 1000
	}
	if c.Risk.VaRConfidence == 0 {
		c.Risk.VaRConfidence = 0.95
	}
	if c.Risk.MinSamples == 0 {
		c.Risk.MinSamples = 20
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("at least one trading symbol is required")
	}
	if c.Trading.InitialCash.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("initial cash must be positive")
	}
	if c.Trading.FeeRate.IsNegative() || c.Trading.TaxRate.IsNegative() {
		return fmt.Errorf("fee and tax rates must be non-negative")
	}
	one := decimal.NewFromInt(1)
	if c.Trading.BuyFraction.LessThanOrEqual(decimal.Zero) || c.Trading.BuyFraction.GreaterThan(one) {
		return fmt.Errorf("buy fraction must be in (0, 1]")
	}
	if c.Trading.EpisodeSteps <= 0 {
		return fmt.Errorf("episode steps must be positive")
	}
	if c.Feed.Enabled {
		if !strings.HasPrefix(c.Feed.WSURL, "ws://") && !strings.HasPrefix(c.Feed.WSURL, "wss://") {
			return fmt.Errorf("invalid feed WS URL: %s", c.Feed.WSURL)
		}
	}
	return nil
}

// overrideWithEnv overrides sensitive settings from environment variables.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("VNQUANT_FEED_KEY"); key != "" {
		cfg.Feed.AccessKey = key
	}
	if url := os.Getenv("VNQUANT_FEED_WS_URL"); url != "" {
		cfg.Feed.WSURL = url
	}
	if level := os.Getenv("VNQUANT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

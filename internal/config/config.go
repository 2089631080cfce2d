package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/contactkeval/option-mc/internal/montecarlo"
)

// PricingConfig holds the model inputs of a run. Spot and Volatility may be
// left at zero when MarketData.Underlying is set; they are then resolved
// from market data.
type PricingConfig struct {
	montecarlo.Params `yaml:",inline"`
	Seed              uint64 `yaml:"seed"`
}

// EngineConfig controls how paths are spread over goroutines.
type EngineConfig struct {
	Workers   int `yaml:"workers"`    // 0 = GOMAXPROCS
	BlockSize int `yaml:"block_size"` // paths per random stream
}

// MarketDataConfig names an underlying whose spot and historical
// volatility replace the literal pricing inputs.
type MarketDataConfig struct {
	Underlying   string `yaml:"underlying"`
	LookbackDays int    `yaml:"lookback_days"`
	APIKey       string `yaml:"api_key"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig is used in REST mode.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// ReportConfig sets where JSON and CSV reports are written.
type ReportConfig struct {
	Dir string `yaml:"dir"`
}

// Config is the full application configuration.
type Config struct {
	Pricing    PricingConfig    `yaml:"pricing"`
	Engine     EngineConfig     `yaml:"engine"`
	MarketData MarketDataConfig `yaml:"market_data"`
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	Report     ReportConfig     `yaml:"report"`
}

// Default returns the configuration of the reference scenario.
func Default() *Config {
	return &Config{
		Pricing: PricingConfig{
			Params: montecarlo.Params{
				Spot:         100,
				Strike:       100,
				RiskFreeRate: 0.07,
				Volatility:   0.2,
				Horizon:      1,
				Steps:        250,
				Paths:        5000,
			},
			Seed: 42,
		},
		Engine:     EngineConfig{BlockSize: montecarlo.DefaultBlockSize},
		MarketData: MarketDataConfig{LookbackDays: 365},
		Logging:    LoggingConfig{Level: "info"},
		Server:     ServerConfig{Port: "8080"},
		Report:     ReportConfig{Dir: "./out"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with non-empty environment variables.
func (c *Config) applyEnv() {
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Report.Dir = getEnv("REPORT_DIR", c.Report.Dir)
	c.Engine.Workers = getEnvInt("ENGINE_WORKERS", c.Engine.Workers)
	c.Engine.BlockSize = getEnvInt("ENGINE_BLOCK_SIZE", c.Engine.BlockSize)
	c.MarketData.Underlying = getEnv("UNDERLYING", c.MarketData.Underlying)
	c.MarketData.APIKey = getEnv("MASSIVE_API_KEY", getEnv("POLYGON_API_KEY", c.MarketData.APIKey))
	c.Pricing.Seed = getEnvUint("PRICING_SEED", c.Pricing.Seed)
}

// Options returns the engine options for this configuration.
func (c *Config) Options() []montecarlo.Option {
	return []montecarlo.Option{
		montecarlo.WithWorkers(c.Engine.Workers),
		montecarlo.WithBlockSize(c.Engine.BlockSize),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

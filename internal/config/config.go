// Package config loads application configuration from file and environment
// and wires the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds Jina AI Reader settings. An empty key disables the Jina
// scraper and the chain runs on plain HTTP only.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ExtractionConfig tunes the AUM extraction pipeline.
type ExtractionConfig struct {
	MaxTokensPerRequest     int     `yaml:"max_tokens_per_request" mapstructure:"max_tokens_per_request"`
	MaxTokensPerDay         int     `yaml:"max_tokens_per_day" mapstructure:"max_tokens_per_day"`
	BudgetAlertThreshold    float64 `yaml:"budget_alert_threshold" mapstructure:"budget_alert_threshold"`
	MaxChunks               int     `yaml:"max_chunks" mapstructure:"max_chunks"`
	MaxCharsPerChunk        int     `yaml:"max_chars_per_chunk" mapstructure:"max_chars_per_chunk"`
	TimeoutSecs             int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	HighConfidenceThreshold float64 `yaml:"high_confidence_threshold" mapstructure:"high_confidence_threshold"`
}

// Timeout returns the per-call timeout as a duration.
func (c ExtractionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ScrapeConfig configures source fetching.
type ScrapeConfig struct {
	TimeoutSecs          int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxConcurrentSources int     `yaml:"max_concurrent_sources" mapstructure:"max_concurrent_sources"`
	RequestsPerSecond    float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
}

// ExportConfig configures spreadsheet exports.
type ExportConfig struct {
	Directory string `yaml:"directory" mapstructure:"directory"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "aum.db")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("extraction.max_tokens_per_request", 1500)
	v.SetDefault("extraction.max_tokens_per_day", 100000)
	v.SetDefault("extraction.budget_alert_threshold", 0.8)
	v.SetDefault("extraction.max_chunks", 5)
	v.SetDefault("extraction.max_chars_per_chunk", 6000)
	v.SetDefault("extraction.timeout_secs", 30)
	v.SetDefault("extraction.high_confidence_threshold", 0.8)
	v.SetDefault("scrape.timeout_secs", 15)
	v.SetDefault("scrape.max_concurrent_sources", 4)
	v.SetDefault("scrape.requests_per_second", 1.0)
	v.SetDefault("batch.max_concurrent_companies", 5)
	v.SetDefault("export.directory", "exports")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

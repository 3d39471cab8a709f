package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Sources   []SourceConfig  `yaml:"sources" mapstructure:"sources"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Process   ProcessConfig   `yaml:"process" mapstructure:"process"`
	Feed      FeedConfig      `yaml:"feed" mapstructure:"feed"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the Postgres backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds oracle API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// SourceConfig describes one configured feed source.
type SourceConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Kind string `yaml:"kind" mapstructure:"kind"` // "rss" or "newsletter"
	URL  string `yaml:"url" mapstructure:"url"`
}

// FetchConfig configures outbound feed fetching.
type FetchConfig struct {
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// ProcessConfig configures the segmentation batch selection window.
type ProcessConfig struct {
	WindowHours  int `yaml:"window_hours" mapstructure:"window_hours"`
	BatchLimit   int `yaml:"batch_limit" mapstructure:"batch_limit"`
	ScoreWorkers int `yaml:"score_workers" mapstructure:"score_workers"`
}

// FeedConfig configures the read-path feed window.
type FeedConfig struct {
	WindowDays int `yaml:"window_days" mapstructure:"window_days"`
	Limit      int `yaml:"limit" mapstructure:"limit"`
}

// ServerConfig configures the trigger endpoint server.
type ServerConfig struct {
	Port       int    `yaml:"port" mapstructure:"port"`
	CronSecret string `yaml:"cron_secret" mapstructure:"cron_secret"`
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
	v.SetEnvPrefix("DIGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.timeout_secs", 120)
	v.SetDefault("anthropic.max_attempts", 3)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.requests_per_sec", 2.0)
	v.SetDefault("fetch.user_agent", "daybrief-digest/1.0")
	v.SetDefault("process.window_hours", 24)
	v.SetDefault("process.batch_limit", 50)
	v.SetDefault("process.score_workers", 8)
	v.SetDefault("feed.window_days", 7)
	v.SetDefault("feed.limit", 50)
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

// Validate checks that required settings are present for the given command.
func (c *Config) Validate(command string) error {
	switch command {
	case "fetch":
		if len(c.Sources) == 0 {
			return eris.New("config: no sources configured")
		}
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required")
		}
	case "process":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required")
		}
		if c.Anthropic.Key == "" {
			return eris.New("config: anthropic.key is required")
		}
	case "serve", "feed", "migrate":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required")
		}
	}
	return nil
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

package config

import (
	"fmt"
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
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	DataForSEO DataForSEOConfig `yaml:"dataforseo" mapstructure:"dataforseo"`
	Suggest    SuggestConfig    `yaml:"suggest" mapstructure:"suggest"`
	FreeData   FreeDataConfig   `yaml:"freedata" mapstructure:"freedata"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Reasoning  ReasoningConfig  `yaml:"reasoning" mapstructure:"reasoning"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
}

// StoreConfig configures the evidence store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int           `yaml:"port" mapstructure:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// DataForSEOConfig holds keyword/SERP provider credentials and pacing.
type DataForSEOConfig struct {
	Login       string        `yaml:"login" mapstructure:"login"`
	Password    string        `yaml:"password" mapstructure:"password"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	KeywordWait time.Duration `yaml:"keyword_wait" mapstructure:"keyword_wait"`
	SerpWait    time.Duration `yaml:"serp_wait" mapstructure:"serp_wait"`
	BatchSize   int           `yaml:"batch_size" mapstructure:"batch_size"`
	BatchDelay  time.Duration `yaml:"batch_delay" mapstructure:"batch_delay"`
	SerpDepth   int           `yaml:"serp_depth" mapstructure:"serp_depth"`
}

// Configured reports whether provider credentials are present.
func (c DataForSEOConfig) Configured() bool {
	return c.Login != "" && c.Password != ""
}

// SuggestConfig configures the autocomplete endpoint.
type SuggestConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FreeDataConfig configures the free-data gatherer.
type FreeDataConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxCompetitors    int           `yaml:"max_competitors" mapstructure:"max_competitors"`
	MaxKeywordLookups int           `yaml:"max_keyword_lookups" mapstructure:"max_keyword_lookups"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// CacheConfig configures response cache lifetimes.
type CacheConfig struct {
	KeywordTTL    time.Duration `yaml:"keyword_ttl" mapstructure:"keyword_ttl"`
	SerpTTL       time.Duration `yaml:"serp_ttl" mapstructure:"serp_ttl"`
	RelatedTTL    time.Duration `yaml:"related_ttl" mapstructure:"related_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// ReasoningConfig configures the multi-pass orchestrator.
type ReasoningConfig struct {
	ProviderName string        `yaml:"provider_name" mapstructure:"provider_name"`
	PassTimeout  time.Duration `yaml:"pass_timeout" mapstructure:"pass_timeout"`
}

// PipelineConfig configures the request context sent to providers.
type PipelineConfig struct {
	LocationCode int    `yaml:"location_code" mapstructure:"location_code"`
	LanguageCode string `yaml:"language_code" mapstructure:"language_code"`
	Device       string `yaml:"device" mapstructure:"device"`
	RelatedLimit int    `yaml:"related_limit" mapstructure:"related_limit"`
	SaveAttempts int    `yaml:"save_attempts" mapstructure:"save_attempts"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EVIDENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "evidence.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", 3*time.Minute)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.temperature", 0.3)
	v.SetDefault("dataforseo.login", "")
	v.SetDefault("dataforseo.password", "")
	v.SetDefault("dataforseo.base_url", "https://api.dataforseo.com")
	v.SetDefault("dataforseo.keyword_wait", 2*time.Second)
	v.SetDefault("dataforseo.serp_wait", 5*time.Second)
	v.SetDefault("dataforseo.batch_size", 100)
	v.SetDefault("dataforseo.batch_delay", time.Second)
	v.SetDefault("dataforseo.serp_depth", 20)
	v.SetDefault("suggest.base_url", "https://suggestqueries.google.com/complete/search")
	v.SetDefault("freedata.timeout", 4*time.Second)
	v.SetDefault("freedata.max_competitors", 3)
	v.SetDefault("freedata.max_keyword_lookups", 3)
	v.SetDefault("freedata.user_agent", "")
	v.SetDefault("cache.keyword_ttl", 24*time.Hour)
	v.SetDefault("cache.serp_ttl", 6*time.Hour)
	v.SetDefault("cache.related_ttl", 12*time.Hour)
	v.SetDefault("cache.sweep_interval", time.Hour)
	v.SetDefault("reasoning.provider_name", "Claude")
	v.SetDefault("reasoning.pass_timeout", 60*time.Second)
	v.SetDefault("pipeline.location_code", 2840)
	v.SetDefault("pipeline.language_code", "en")
	v.SetDefault("pipeline.device", "desktop")
	v.SetDefault("pipeline.related_limit", 10)
	v.SetDefault("pipeline.save_attempts", 3)

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

// Validate checks that the keys a command needs are present. Mode is the
// command name: "run" and "serve" need the reasoning key, "migrate" and
// "get" only need a store.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	switch mode {
	case "run", "serve":
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required")
		}
		if (c.DataForSEO.Login == "") != (c.DataForSEO.Password == "") {
			errs = append(errs, "dataforseo.login and dataforseo.password must be set together")
		}
		if c.DataForSEO.BatchSize < 1 || c.DataForSEO.BatchSize > 1000 {
			errs = append(errs, "dataforseo.batch_size must be between 1 and 1000")
		}
		if mode == "serve" && (c.Server.Port < 1 || c.Server.Port > 65535) {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
	case "migrate", "get":
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
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

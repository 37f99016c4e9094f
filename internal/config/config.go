package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Detect    DetectConfig    `yaml:"detect" mapstructure:"detect"`
	Budget    BudgetConfig    `yaml:"budget" mapstructure:"budget"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OCRConfig configures PDF page-text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_model" mapstructure:"mistral_model"`
}

// DetectConfig tunes the letter/annex/status detectors. Keyword lists live in
// an optional YAML profile; everything else is a threshold.
type DetectConfig struct {
	ProfilePath            string `yaml:"profile_path" mapstructure:"profile_path"`
	StrictTaxID            bool   `yaml:"strict_tax_id" mapstructure:"strict_tax_id"`
	TitleOrderFallback     bool   `yaml:"title_order_fallback" mapstructure:"title_order_fallback"`
	StatusForwardLimit     int    `yaml:"status_forward_limit" mapstructure:"status_forward_limit"`
	RejectionFallbackPages int    `yaml:"rejection_fallback_pages" mapstructure:"rejection_fallback_pages"`
}

// BudgetConfig configures payload truncation before field extraction.
type BudgetConfig struct {
	MaxChars           int `yaml:"max_chars" mapstructure:"max_chars"`
	Tier1PageThreshold int `yaml:"tier1_page_threshold" mapstructure:"tier1_page_threshold"`
	Tier1Head          int `yaml:"tier1_head" mapstructure:"tier1_head"`
	Tier1Tail          int `yaml:"tier1_tail" mapstructure:"tier1_tail"`
	Tier2Head          int `yaml:"tier2_head" mapstructure:"tier2_head"`
	Tier2Tail          int `yaml:"tier2_tail" mapstructure:"tier2_tail"`
}

// AnthropicConfig holds Anthropic API settings for field extraction.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentDocuments int `yaml:"max_concurrent_documents" mapstructure:"max_concurrent_documents"`
}

// ServerConfig configures the results API server.
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
	v.SetEnvPrefix("OFICIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "oficios.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_documents", 5)
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.mistral_model", "pixtral-large-latest")
	v.SetDefault("detect.strict_tax_id", false)
	v.SetDefault("detect.title_order_fallback", true)
	v.SetDefault("detect.status_forward_limit", 100)
	v.SetDefault("detect.rejection_fallback_pages", 1)
	v.SetDefault("budget.max_chars", 200_000)
	v.SetDefault("budget.tier1_page_threshold", 100)
	v.SetDefault("budget.tier1_head", 50)
	v.SetDefault("budget.tier1_tail", 50)
	v.SetDefault("budget.tier2_head", 30)
	v.SetDefault("budget.tier2_tail", 30)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.requests_per_second", 2)

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

// Validate checks the settings a given command depends on. Modes:
// "process", "batch", "extract", "serve", "export".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required for postgres")
	}

	switch mode {
	case "process", "batch", "extract":
		if c.Budget.MaxChars <= 0 {
			errs = append(errs, "budget.max_chars must be positive")
		}
		if c.Detect.StatusForwardLimit <= 0 {
			errs = append(errs, "detect.status_forward_limit must be positive")
		}
		if c.OCR.Provider == "mistral" && c.OCR.MistralKey == "" {
			errs = append(errs, "ocr.mistral_api_key is required for the mistral provider")
		}
		if mode == "batch" && c.Batch.MaxConcurrentDocuments <= 0 {
			errs = append(errs, "batch.max_concurrent_documents must be positive")
		}
		if mode == "extract" && c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
		}
	case "export":
	default:
		errs = append(errs, fmt.Sprintf("unknown validation mode %q", mode))
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	minOracleTimeout     = time.Second
	maxOracleTimeout     = 60 * time.Second
	maxOracleTemperature = 2
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Barcode   BarcodeConfig   `mapstructure:"barcode"`
	Vision    VisionConfig    `mapstructure:"vision"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OracleConfig holds ingredient-analysis oracle configuration
type OracleConfig struct {
	Provider          string        `mapstructure:"provider"` // "openai", "proxy" or "none"
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Temperature       float32       `mapstructure:"temperature"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// BarcodeConfig holds Open Food Facts configuration
type BarcodeConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// VisionConfig holds GCP Vision OCR configuration
type VisionConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from an explicit config file when path is set,
// otherwise from the default search paths
func LoadFile(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/labellens/")
	}

	// LABELLENS_ORACLE_API_KEY -> oracle.api_key
	v.SetEnvPrefix("LABELLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults still apply
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env if present. Existing environment variables win.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Oracle defaults
	v.SetDefault("oracle.provider", "openai")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.base_url", "")
	v.SetDefault("oracle.model", "gpt-4o-mini")
	v.SetDefault("oracle.timeout", "25s")
	v.SetDefault("oracle.max_tokens", 2048)
	v.SetDefault("oracle.temperature", 0.2)
	v.SetDefault("oracle.requests_per_minute", 60)

	// Barcode defaults
	v.SetDefault("barcode.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("barcode.user_agent", "LabelLens/1.0 (+https://github.com/labellens/backend)")

	// Vision defaults
	v.SetDefault("vision.enabled", false)
	v.SetDefault("vision.credentials_file", "")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Oracle.Provider {
	case "openai":
		if config.Oracle.APIKey == "" {
			return fmt.Errorf("oracle API key is required for provider 'openai' (set LABELLENS_ORACLE_API_KEY)")
		}
	case "proxy":
		if config.Oracle.BaseURL == "" {
			return fmt.Errorf("oracle base URL is required for provider 'proxy' (set LABELLENS_ORACLE_BASE_URL)")
		}
	case "none":
	default:
		return fmt.Errorf("oracle provider must be 'openai', 'proxy' or 'none', got: %s", config.Oracle.Provider)
	}

	if config.Oracle.Provider != "none" &&
		(config.Oracle.Timeout < minOracleTimeout || config.Oracle.Timeout > maxOracleTimeout) {
		return fmt.Errorf("oracle timeout must be between %v and %v, got: %v",
			minOracleTimeout, maxOracleTimeout, config.Oracle.Timeout)
	}

	if config.Oracle.Temperature < 0 || config.Oracle.Temperature > maxOracleTemperature {
		return fmt.Errorf("oracle temperature must be between 0 and %v, got: %v",
			maxOracleTemperature, config.Oracle.Temperature)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	return nil
}

package config

import (
	"net"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// placeholderAPIKey is the value shipped in sample configs
const placeholderAPIKey = "YOUR_API_KEY_HERE"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	USDA      USDAConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	SaveDir        string   `mapstructure:"save_dir"`
	TrustedProxies []string `mapstructure:"trusted_proxies"` // IPs or CIDRs allowed to set X-Forwarded-For
}

// USDAConfig holds USDA API configuration
type USDAConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	PageSize int           `mapstructure:"page_size"`
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "none", "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP     int `mapstructure:"per_ip"`     // requests per minute per client, 0 disables
	USDA      int `mapstructure:"usda"`       // upstream requests per hour; past the burst each call waits 3600/USDA seconds
	USDABurst int `mapstructure:"usda_burst"` // upstream requests sent without waiting
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, errors.Wrap(err, "error loading .env file")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/labelpal/")

	// LABELPAL_USDA_API_KEY -> usda.api_key
	v.SetEnvPrefix("LABELPAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("usda.api_key", "LABELPAL_USDA_API_KEY", "USDA_API_KEY"); err != nil {
		return nil, errors.Wrap(err, "error binding USDA API key")
	}

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}

	if err := validate(&config); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.save_dir", ".")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("usda.timeout", "10s")
	v.SetDefault("usda.page_size", 5)

	v.SetDefault("cache.type", "none")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.usda", 1000)
	v.SetDefault("ratelimit.usda_burst", 10)

	v.SetDefault("log.level", "info")
}

func validate(config *Config) error {
	if config.USDA.APIKey == "" || config.USDA.APIKey == placeholderAPIKey {
		return errors.New("USDA API key is required (set LABELPAL_USDA_API_KEY or USDA_API_KEY)")
	}

	if config.USDA.Timeout <= 0 {
		return errors.Newf("USDA timeout must be positive, got: %s", config.USDA.Timeout)
	}

	if config.USDA.PageSize <= 0 {
		return errors.Newf("USDA page size must be positive, got: %d", config.USDA.PageSize)
	}

	switch config.Cache.Type {
	case "none", "memory", "redis":
	default:
		return errors.Newf("cache type must be 'none', 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return errors.New("Redis URL is required when cache type is 'redis'")
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.USDA <= 0 || config.RateLimit.USDABurst <= 0 {
		return errors.New("rate limits must not be negative and the USDA limit and burst must be positive")
	}

	for _, proxy := range config.Server.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return errors.Newf("trusted proxy must be an IP or CIDR, got: %s", proxy)
		}
	}

	return nil
}

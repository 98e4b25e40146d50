package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"cityinfo.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Providers ProvidersConfig `split_words:"true"`
	RateLimit RateLimitConfig `split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"PORT" default:"3000"`
}

// CacheConfig contains cache backend and expiry settings.
// TTLSeconds is kept as a string so a non-numeric CACHE_TTL falls back to the
// default instead of failing startup.
type CacheConfig struct {
	Type               string `envconfig:"CACHE_TYPE" default:"memory"`
	TTLSeconds         string `envconfig:"CACHE_TTL" default:"300"`
	CheckPeriodSeconds int    `envconfig:"CACHE_CHECK_PERIOD" default:"60"`
	RedisAddr          string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB            int    `envconfig:"REDIS_DB" default:"0"`
}

const defaultTTLSeconds = 300

// TTL returns the configured entry lifetime
func (c *CacheConfig) TTL() time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(c.TTLSeconds))
	if err != nil || seconds < 0 {
		seconds = defaultTTLSeconds
	}
	return time.Duration(seconds) * time.Second
}

// CheckPeriod returns the sweep interval for the memory backend
func (c *CacheConfig) CheckPeriod() time.Duration {
	return time.Duration(c.CheckPeriodSeconds) * time.Second
}

// ProvidersConfig contains settings for the upstream data providers.
// API keys are optional: a missing key degrades the corresponding field in
// the aggregated response rather than failing startup.
type ProvidersConfig struct {
	OpenWeatherAPIKey   string `envconfig:"OPENWEATHER_API_KEY" default:""`
	OpenWeatherBaseURL  string `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5/weather"`
	NewsAPIKey          string `envconfig:"NEWS_API_KEY" default:""`
	NewsBaseURL         string `envconfig:"NEWS_BASE_URL" default:"https://newsapi.org/v2/everything"`
	ExchangeRateAPIKey  string `envconfig:"EXCHANGERATE_API_KEY" default:""`
	ExchangeRateBaseURL string `envconfig:"EXCHANGERATE_BASE_URL" default:"https://v6.exchangerate-api.com/v6"`
	TimeoutSeconds      int    `envconfig:"PROVIDER_TIMEOUT" default:"10"`
}

// Timeout returns the per-fetch deadline for provider calls
func (p *ProvidersConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// RateLimitConfig contains settings for the per-client request limiter
type RateLimitConfig struct {
	WindowMinutes int `envconfig:"RATE_LIMIT_WINDOW" default:"15"`
	MaxRequests   int `envconfig:"RATE_LIMIT_MAX" default:"100"`
}

// Window returns the rate limit window duration
func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Providers.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("PORT must be between 1 and 65535", nil)
	}
	return nil
}

// Validate checks cache configuration
func (c *CacheConfig) Validate() error {
	if c.Type != "memory" && c.Type != "redis" {
		return errors.NewConfigurationError("CACHE_TYPE must be either 'memory' or 'redis'", nil)
	}
	if c.CheckPeriodSeconds < 1 {
		return errors.NewConfigurationError("CACHE_CHECK_PERIOD must be at least 1 second", nil)
	}
	if c.Type == "redis" && c.RedisAddr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when CACHE_TYPE is 'redis'", nil)
	}
	return nil
}

// Validate checks provider configuration
func (p *ProvidersConfig) Validate() error {
	if err := validateBaseURL("OPENWEATHER_BASE_URL", p.OpenWeatherBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("NEWS_BASE_URL", p.NewsBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("EXCHANGERATE_BASE_URL", p.ExchangeRateBaseURL); err != nil {
		return err
	}
	if p.TimeoutSeconds < 1 {
		return errors.NewConfigurationError("PROVIDER_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func validateBaseURL(name, value string) error {
	if value == "" {
		return errors.NewConfigurationError(fmt.Sprintf("%s cannot be empty", name), nil)
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return errors.NewConfigurationError(fmt.Sprintf("%s must start with http:// or https://", name), nil)
	}
	return nil
}

// Validate checks rate limit configuration
func (r *RateLimitConfig) Validate() error {
	if r.WindowMinutes < 1 {
		return errors.NewConfigurationError("RATE_LIMIT_WINDOW must be at least 1 minute", nil)
	}
	if r.MaxRequests < 1 {
		return errors.NewConfigurationError("RATE_LIMIT_MAX must be at least 1", nil)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"movierec.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server   ServerConfig   `split_words:"true"`
	Database DatabaseConfig `split_words:"true"`
	ML       MLConfig       `split_words:"true"`
	TMDB     TMDBConfig     `split_words:"true"`
	Cache    CacheConfig    `split_words:"true"`
	Monitor  MonitorConfig  `split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"movierec"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// GetDSN returns a formatted database connection string
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// MLConfig contains settings for the external ranking service
type MLConfig struct {
	BaseURL                  string `envconfig:"ML_SERVICE_URL" default:"http://localhost:5000"`
	RecommendationTimeoutMS  int    `envconfig:"ML_RECOMMENDATION_TIMEOUT_MS" default:"10000"`
	SimilarTimeoutMS         int    `envconfig:"ML_SIMILAR_TIMEOUT_MS" default:"5000"`
	HealthTimeoutMS          int    `envconfig:"ML_HEALTH_TIMEOUT_MS" default:"3000"`
	RecommendationTTLMinutes int    `envconfig:"ML_RECOMMENDATION_TTL_MINUTES" default:"60"`
	SimilarTTLMinutes        int    `envconfig:"ML_SIMILAR_TTL_MINUTES" default:"120"`
}

// RecommendationTimeout returns the timeout for personalized and collaborative calls
func (m MLConfig) RecommendationTimeout() time.Duration {
	return time.Duration(m.RecommendationTimeoutMS) * time.Millisecond
}

// SimilarTimeout returns the timeout for content-similarity calls
func (m MLConfig) SimilarTimeout() time.Duration {
	return time.Duration(m.SimilarTimeoutMS) * time.Millisecond
}

// HealthTimeout returns the timeout for health probe calls
func (m MLConfig) HealthTimeout() time.Duration {
	return time.Duration(m.HealthTimeoutMS) * time.Millisecond
}

// RecommendationTTL returns the cache TTL for personalized results
func (m MLConfig) RecommendationTTL() time.Duration {
	return time.Duration(m.RecommendationTTLMinutes) * time.Minute
}

// SimilarTTL returns the cache TTL for similarity results
func (m MLConfig) SimilarTTL() time.Duration {
	return time.Duration(m.SimilarTTLMinutes) * time.Minute
}

// TMDBConfig contains settings for the movie metadata service
type TMDBConfig struct {
	APIKey  string `envconfig:"TMDB_API_KEY" required:"true"`
	BaseURL string `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
}

// CacheConfig contains settings for the scoring result cache backend
type CacheConfig struct {
	Type           string `envconfig:"CACHE_TYPE" default:"memory"`
	RedisAddr      string `envconfig:"CACHE_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"CACHE_REDIS_PASSWORD" default:""`
	RedisDB        int    `envconfig:"CACHE_REDIS_DB" default:"0"`
	RedisTimeoutMS int    `envconfig:"CACHE_REDIS_TIMEOUT_MS" default:"3000"`
}

// MonitorConfig contains settings for the background health monitor
type MonitorConfig struct {
	HealthIntervalMinutes int `envconfig:"MONITOR_HEALTH_INTERVAL_MINUTES" default:"5"`
	SweepIntervalMinutes  int `envconfig:"MONITOR_SWEEP_INTERVAL_MINUTES" default:"10"`
}

// HealthInterval returns how often the background monitor probes the scoring service
func (m MonitorConfig) HealthInterval() time.Duration {
	return time.Duration(m.HealthIntervalMinutes) * time.Minute
}

// SweepInterval returns how often expired in-memory cache entries are collected
func (m MonitorConfig) SweepInterval() time.Duration {
	return time.Duration(m.SweepIntervalMinutes) * time.Minute
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
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.ML.Validate(); err != nil {
		return err
	}
	if err := c.TMDB.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Monitor.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// ValidateSSLMode validates the SSL mode configuration
func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > 65535 {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	if err := d.ValidateSSLMode(); err != nil {
		return err
	}
	return nil
}

// Validate checks ranking service configuration
func (m *MLConfig) Validate() error {
	if m.BaseURL == "" {
		return errors.NewConfigurationError("ML_SERVICE_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(m.BaseURL, "http://") && !strings.HasPrefix(m.BaseURL, "https://") {
		return errors.NewConfigurationError("ML_SERVICE_URL must start with http:// or https://", nil)
	}
	if m.RecommendationTimeoutMS < 1 {
		return errors.NewConfigurationError("ML_RECOMMENDATION_TIMEOUT_MS must be positive", nil)
	}
	if m.SimilarTimeoutMS < 1 {
		return errors.NewConfigurationError("ML_SIMILAR_TIMEOUT_MS must be positive", nil)
	}
	if m.HealthTimeoutMS < 1 {
		return errors.NewConfigurationError("ML_HEALTH_TIMEOUT_MS must be positive", nil)
	}
	if m.RecommendationTTLMinutes < 1 {
		return errors.NewConfigurationError("ML_RECOMMENDATION_TTL_MINUTES must be at least 1 minute", nil)
	}
	if m.SimilarTTLMinutes < 1 {
		return errors.NewConfigurationError("ML_SIMILAR_TTL_MINUTES must be at least 1 minute", nil)
	}
	return nil
}

// Validate checks metadata service configuration
func (t *TMDBConfig) Validate() error {
	if t.APIKey == "" {
		return errors.NewConfigurationError("TMDB_API_KEY is required", nil)
	}
	if t.BaseURL == "" {
		return errors.NewConfigurationError("TMDB_BASE_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(t.BaseURL, "http://") && !strings.HasPrefix(t.BaseURL, "https://") {
		return errors.NewConfigurationError("TMDB_BASE_URL must start with http:// or https://", nil)
	}
	return nil
}

// Validate checks cache backend configuration
func (c *CacheConfig) Validate() error {
	if c.Type != "memory" && c.Type != "redis" {
		return errors.NewConfigurationError("CACHE_TYPE must be either 'memory' or 'redis'", nil)
	}
	if c.Type == "redis" && c.RedisAddr == "" {
		return errors.NewConfigurationError("CACHE_REDIS_ADDR cannot be empty when CACHE_TYPE is redis", nil)
	}
	if c.RedisTimeoutMS < 1 {
		return errors.NewConfigurationError("CACHE_REDIS_TIMEOUT_MS must be positive", nil)
	}
	return nil
}

// Validate checks health monitor configuration
func (m *MonitorConfig) Validate() error {
	if m.HealthIntervalMinutes < 1 {
		return errors.NewConfigurationError("MONITOR_HEALTH_INTERVAL_MINUTES must be at least 1 minute", nil)
	}
	if m.SweepIntervalMinutes < 1 {
		return errors.NewConfigurationError("MONITOR_SWEEP_INTERVAL_MINUTES must be at least 1 minute", nil)
	}
	return nil
}

// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the background task scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetScoreRefreshInterval() time.Duration
}

// EnrichmentConfig provides settings for the external data provider.
type EnrichmentConfig interface {
	GetEnrichmentAPIURL() string
	GetEnrichmentAPIKey() string
	GetEnrichmentTimeout() time.Duration
	GetEnrichmentCacheTTL() time.Duration
	IsEnrichmentEnabled() bool
}

// CacheConfig provides settings for the redis cache.
type CacheConfig interface {
	GetRedisURL() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	JWTAccessSecret      string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	ScoreRefreshInterval time.Duration
	EnrichmentAPIURL     string
	EnrichmentAPIKey     string
	EnrichmentTimeout    time.Duration
	EnrichmentCacheTTL   time.Duration
	EnrichmentEnabled    bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }

func (c *Config) GetRedisURL() string                    { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool              { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string              { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int               { return c.AsynqConcurrency }
func (c *Config) GetScoreRefreshInterval() time.Duration { return c.ScoreRefreshInterval }

func (c *Config) GetEnrichmentAPIURL() string           { return c.EnrichmentAPIURL }
func (c *Config) GetEnrichmentAPIKey() string           { return c.EnrichmentAPIKey }
func (c *Config) GetEnrichmentTimeout() time.Duration   { return c.EnrichmentTimeout }
func (c *Config) GetEnrichmentCacheTTL() time.Duration  { return c.EnrichmentCacheTTL }
func (c *Config) IsEnrichmentEnabled() bool             { return c.EnrichmentEnabled }

// Load reads configuration from the environment. A .env file is loaded first
// if present so local development works without exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		JWTAccessSecret:      os.Getenv("JWT_ACCESS_SECRET"),
		CORSAllowAll:         getEnvBool("CORS_ALLOW_ALL", false),
		CORSOrigins:          getEnvList("CORS_ORIGINS"),
		CORSAllowCreds:       getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		RedisURL:             os.Getenv("REDIS_URL"),
		RedisTLSInsecure:     getEnvBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:     getEnvInt("ASYNQ_CONCURRENCY", 10),
		ScoreRefreshInterval: getEnvDuration("SCORE_REFRESH_INTERVAL", 6*time.Hour),
		EnrichmentAPIURL:     os.Getenv("ENRICHMENT_API_URL"),
		EnrichmentAPIKey:     os.Getenv("ENRICHMENT_API_KEY"),
		EnrichmentTimeout:    getEnvDuration("ENRICHMENT_TIMEOUT", 10*time.Second),
		EnrichmentCacheTTL:   getEnvDuration("ENRICHMENT_CACHE_TTL", 24*time.Hour),
		EnrichmentEnabled:    getEnvBool("ENRICHMENT_ENABLED", true),
	}

	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EnrichmentEnabled && cfg.EnrichmentAPIURL == "" {
		return nil, fmt.Errorf("ENRICHMENT_API_URL is required when enrichment is enabled")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

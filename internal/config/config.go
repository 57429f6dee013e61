package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration.
type Config struct {
	Addr           string
	AllowedOrigins []string

	RedisAddr string

	// Relational store for app/chat metadata. Optional; the app/chat
	// routes are only registered when a DSN is present.
	PostgresDSN string

	// Provider credentials. An empty key marks the provider unavailable.
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string

	// Generation tunables.
	MaxConcurrentGenerations int64
	GenerationTimeout        time.Duration
	CacheTTL                 time.Duration

	// Runner tunables.
	MaxProjects   int
	BuildTimeout  time.Duration
	ProjectMaxAge time.Duration
	ProjectsDir   string
	PortRangeMin  int
	PortRangeMax  int

	// Per-client request throttle.
	RateLimitPerSecond float64
	RateLimitBurst     int

	// S3-compatible storage for project archives. Optional.
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
	S3Region          string
}

var (
	once     sync.Once
	instance *Config
)

// GetConfig returns the singleton instance of the Config.
// It loads the configuration from an .env file on its first call.
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			slog.Info("no .env file found, using environment variables")
		}

		instance = &Config{
			Addr:           getEnv("ADDR", ":8080"),
			AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			PostgresDSN: getEnv("POSTGRES_DSN", ""),

			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o"),

			MaxConcurrentGenerations: int64(getEnvInt("MAX_CONCURRENT_GENERATIONS", 10)),
			GenerationTimeout:        getEnvDuration("GENERATION_TIMEOUT", 2*time.Minute),
			CacheTTL:                 getEnvDuration("CACHE_TTL", time.Hour),

			MaxProjects:   getEnvInt("MAX_PROJECTS", 100),
			BuildTimeout:  getEnvDuration("BUILD_TIMEOUT", 5*time.Minute),
			ProjectMaxAge: getEnvDuration("PROJECT_MAX_AGE", 24*time.Hour),
			ProjectsDir:   getEnv("PROJECTS_DIR", os.TempDir()),
			PortRangeMin:  getEnvInt("PORT_RANGE_MIN", 3000),
			PortRangeMax:  getEnvInt("PORT_RANGE_MAX", 3999),

			RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),

			S3Endpoint:        getEnv("S3_ENDPOINT", ""),
			S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			S3Bucket:          getEnv("S3_BUCKET", ""),
			S3Region:          getEnv("S3_REGION", "auto"),
		}
	})
	return instance
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		slog.Warn("invalid float in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

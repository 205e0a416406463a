package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	MongoDB  string
	Port     string
	Env      string
	LogLevel string

	JWTSecret string
	JWTTTL    time.Duration

	RateLimitPoints int
	RateLimitWindow time.Duration
	RateLimitBlock  time.Duration

	StatsCacheTTL time.Duration
}

var (
	ErrMissingMongoURI  = errors.New("MONGO_URI is required")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required outside development")
)

// LoadConfig reads .env when present, then the process environment. An
// unreadable .env is reported alongside a config built from the environment
// alone.
func LoadConfig() (*Config, error) {
	var envErr error
	// Deployed environments have no .env file and rely on real variables.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			envErr = fmt.Errorf("loading .env: %w", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "clothInvent"),
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvAsDuration("JWT_TTL", 24*time.Hour),

		RateLimitPoints: getEnvAsInt("RATE_LIMIT_POINTS", 100),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitBlock:  getEnvAsDuration("RATE_LIMIT_BLOCK", 5*time.Minute),

		StatsCacheTTL: getEnvAsDuration("STATS_CACHE_TTL", 5*time.Minute),
	}
	return cfg, envErr
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, ErrMissingMongoURI)
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, ErrMissingJWTSecret)
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return fallback
}

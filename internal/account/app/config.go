package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer    string // Optional: expected issuer claim on access tokens (default: accountd)
	JWTSecret string // Required: HMAC secret used to verify access tokens

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./account.db)
	RedisAddr            string        // Optional: when set, verification statuses live in Redis instead of SQLite
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired verification sweep interval (default: 1h)
	VerificationTTL      time.Duration // Step-up verification window (default: 10m)
}

// ErrMissingJWTSecret means ACCOUNT_JWT_SECRET was not set; the service
// cannot verify callers without it.
var ErrMissingJWTSecret = errors.New("ACCOUNT_JWT_SECRET must be set")

func LoadConfig() (Config, error) {
	cfg := Config{
		Issuer:               getEnvOrDefault("ACCOUNT_ISSUER", "accountd"),
		JWTSecret:            os.Getenv("ACCOUNT_JWT_SECRET"),
		DatabaseFile:         getEnvOrDefault("ACCOUNT_DATABASE_FILE", "account.db"),
		RedisAddr:            os.Getenv("ACCOUNT_REDIS_ADDR"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		VerificationTTL:      getEnvDurationOrDefault("VERIFICATION_TTL", 10*time.Minute),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultEnv             = "development"
	defaultInputPath       = "orders.json"
	defaultOrderbookPath   = "orderbook.json"
	defaultTradesPath      = "trades.json"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultRedisDB         = 0
	defaultCacheTTLSeconds = 300
)

// Config keeps the runtime configuration for the matcher. It is built
// once in main and passed to constructors explicitly.
type Config struct {
	Env      string
	Paths    PathsConfig
	Log      LogConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cache    CacheConfig
}

// PathsConfig locates the input document and the two outputs.
type PathsConfig struct {
	Input     string
	Orderbook string
	Trades    string
}

// LogConfig selects log level (debug|info|warn|error) and format
// (json|pretty).
type LogConfig struct {
	Level  string
	Format string
}

// PostgresConfig stores database connection parameters. An empty DSN
// disables the archive.
type PostgresConfig struct {
	DSN string
}

// RedisConfig stores Redis connection parameters. An empty Addr
// disables the book cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig stores cache behavior.
type CacheConfig struct {
	TTLSeconds int
}

// Load builds Config from environment variables, reading a .env file
// first when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := getInt("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL_SECONDS: %w", err)
	}

	return &Config{
		Env: getString("APP_ENV", defaultEnv),
		Paths: PathsConfig{
			Input:     getString("INPUT_PATH", defaultInputPath),
			Orderbook: getString("ORDERBOOK_OUTPUT_PATH", defaultOrderbookPath),
			Trades:    getString("TRADES_OUTPUT_PATH", defaultTradesPath),
		},
		Log: LogConfig{
			Level:  getString("LOG_LEVEL", defaultLogLevel),
			Format: getString("LOG_FORMAT", defaultLogFormat),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("DATABASE_DSN"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTLSeconds: cacheTTL,
		},
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store drivers.
const (
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// DefaultDatabaseDSN targets a local MySQL. clientFoundRows makes an UPDATE
// that leaves a row unchanged still report it as affected.
const DefaultDatabaseDSN = "root:password@tcp(127.0.0.1:3306)/shelfmark?parseTime=true&clientFoundRows=true"

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type Config struct {
	Port        string
	Env         string
	StoreDriver string
	DatabaseDSN string
	MongoURL    string
	MongoDB     string
	JWTSecret   string
	HashWorkers int

	CORSAllowedOrigins []string
	CORSOriginPatterns []string

	LogFormat string
	LogLevel  string
}

// Load reads the configuration from the environment. Callers load .env first.
func Load() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", DriverMySQL)),
		DatabaseDSN:        DatabaseDSN(),
		MongoURL:           getEnv("MONGO_URL", "mongodb://127.0.0.1:27017"),
		MongoDB:            getEnv("MONGO_DATABASE", "shelfmark"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		CORSOriginPatterns: getList("CORS_ALLOWED_ORIGIN_PATTERNS", ""),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	switch cfg.StoreDriver {
	case DriverMySQL, DriverMongo, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	workers, err := strconv.Atoi(getEnv("HASH_WORKERS", "0"))
	if err != nil || workers < 0 {
		return Config{}, fmt.Errorf("HASH_WORKERS must be a non-negative integer, got %q", os.Getenv("HASH_WORKERS"))
	}
	cfg.HashWorkers = workers

	return cfg, nil
}

// DatabaseDSN returns the MySQL DSN without requiring the rest of the
// configuration.
func DatabaseDSN() string {
	return getEnv("DATABASE_DSN", DefaultDatabaseDSN)
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

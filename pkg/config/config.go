package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	AppEnv         string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:           getEnv("PORT", "5000"),
		DatabaseURL:    getEnv("DATABASE_URL", "file:linkshelf.db"),
		AppEnv:         getEnv("APP_ENV", "local"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", ""),
		MaxBodyBytes:   getInt64("MAX_BODY_BYTES", 50<<20), // base64 audio notes are large
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if n, err := strconv.ParseInt(getEnv(key, ""), 10, 64); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

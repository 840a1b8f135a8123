package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean. External backends (Postgres, Redis, Kafka) are all optional:
// an empty URL disables the integration and the in-process fallback is used.
type Config struct {
	Addr string

	// DatabaseURL enables the Postgres dataset and audit stores.
	DatabaseURL string

	// RedisURL enables the geocode cache.
	RedisURL string

	// KafkaBrokers and KafkaTopic enable the flag-event publisher.
	KafkaBrokers []string
	KafkaTopic   string

	// SuitePath points at a YAML suite file overriding built-in rules.
	SuitePath string

	// Workers bounds per-record parallelism within a pipeline pass.
	Workers int

	// GeocodeCacheTTL bounds how long cached coordinates are served.
	GeocodeCacheTTL time.Duration
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("DATAGUARD_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATAGUARD_DATABASE_URL"),
		RedisURL:        os.Getenv("DATAGUARD_REDIS_URL"),
		KafkaTopic:      envOr("DATAGUARD_KAFKA_TOPIC", "dataguard.flag-audit"),
		SuitePath:       os.Getenv("DATAGUARD_SUITE_PATH"),
		Workers:         envInt("DATAGUARD_WORKERS", 8),
		GeocodeCacheTTL: envDuration("DATAGUARD_GEOCODE_TTL", 24*time.Hour),
	}
	if brokers := os.Getenv("DATAGUARD_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	Env  string
	Port int

	StoreDriver   string
	DBURL         string
	SQLitePath    string
	DBTimeout     time.Duration
	RunMigrations bool

	MaxBodyBytes       int64
	CORSAllowedOrigins []string
	RateLimit          int
	RateLimitWindow    time.Duration

	OTELEndpoint    string
	OTELServiceName string
	OTELSampleRatio float64
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	// a missing .env is the normal case outside local dev
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 5000),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		DBURL:         buildDBURL(),
		SQLitePath:    getEnv("SQLITE_PATH", "./data/coursehub.db"),
		DBTimeout:     time.Duration(getEnvInt("DB_TIMEOUT_MS", 5000)) * time.Millisecond,
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),

		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		RateLimit:          getEnvInt("RATE_LIMIT", 300),
		RateLimitWindow:    time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELServiceName: getEnv("OTEL_SERVICE_NAME", "coursehub-api"),
		OTELSampleRatio: getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "coursehub")
	pass := getEnv("DB_PASSWORD", "coursehub")
	name := getEnv("DB_NAME", "coursehub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("invalid number in environment, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean in environment, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

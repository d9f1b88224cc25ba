package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the VidTube backend service.
type Config struct {
	AppPort  int
	LogLevel string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	RateLimitPerSecond float64
	RateLimitBurst     int

	ObjectStore ObjectStoreConfig
	Cleaner     CleanerConfig
}

// ObjectStoreConfig describes the S3-compatible bucket holding uploaded
// media assets.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// CleanerConfig sizes the background asset cleanup pool.
type CleanerConfig struct {
	QueueSize int
	Workers   int
}

// Load reads configuration from environment variables, applying sensible defaults
// for local development while allowing overrides through environment variables.
func Load() (Config, error) {
	cfg := Config{
		AppPort:  getInt("VIDTUBE_PORT", 8080),
		LogLevel: getString("VIDTUBE_LOG_LEVEL", "info"),

		MongoURI:      getString("VIDTUBE_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getString("VIDTUBE_MONGO_DB", "vidtube"),

		RedisAddr:     getString("VIDTUBE_REDIS_ADDR", ""),
		RedisPassword: getString("VIDTUBE_REDIS_PASSWORD", ""),

		JWTSecret:  getString("VIDTUBE_JWT_SECRET", ""),
		AccessTTL:  getDuration("VIDTUBE_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getDuration("VIDTUBE_REFRESH_TTL", 7*24*time.Hour),

		RateLimitPerSecond: getFloat("VIDTUBE_RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getInt("VIDTUBE_RATE_LIMIT_BURST", 20),

		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("VIDTUBE_S3_BUCKET", ""),
			Region:        getString("VIDTUBE_S3_REGION", "us-east-1"),
			Endpoint:      getString("VIDTUBE_S3_ENDPOINT", ""),
			PublicBaseURL: getString("VIDTUBE_S3_PUBLIC_BASE_URL", ""),
		},
		Cleaner: CleanerConfig{
			QueueSize: getInt("VIDTUBE_CLEANER_QUEUE", 64),
			Workers:   getInt("VIDTUBE_CLEANER_WORKERS", 2),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: VIDTUBE_JWT_SECRET is required")
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// File: /config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key"

type Config struct {
	Port        string
	Environment string
	CORSOrigin  string
	LogLevel    string

	// Database
	DatabaseDriver string
	DatabaseURL    string

	// Sessions
	JWTSecret string
	TokenTTL  time.Duration

	// Optional Redis for cross-instance booking locks
	RedisURL string

	// Object storage for car and profile images
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	// Email Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	BookingExpirySchedule  string
	AuthRateLimitPerMinute int
	SeedDemoData           bool
}

// Load reads the process environment, after merging an optional .env file.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "2525"))
	ttlDays, err := strconv.Atoi(getEnv("TOKEN_TTL_DAYS", "30"))
	if err != nil || ttlDays <= 0 {
		ttlDays = 30
	}
	rateLimit, err := strconv.Atoi(getEnv("AUTH_RATE_LIMIT_PER_MINUTE", "20"))
	if err != nil || rateLimit <= 0 {
		rateLimit = 20
	}

	return &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: strings.ToLower(getEnv("APP_ENV", "development")),
		CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:5173"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseDriver: strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DatabaseURL:    getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/car_rental?charset=utf8mb4&parseTime=True&loc=UTC"),

		JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:  time.Duration(ttlDays) * 24 * time.Hour,

		RedisURL: os.Getenv("REDIS_URL"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "car-rental"),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@carrental.local"),
		FromName:     getEnv("FROM_NAME", "Car Rental"),

		BookingExpirySchedule:  getEnv("BOOKING_EXPIRY_SCHEDULE", "@every 1h"),
		AuthRateLimitPerMinute: rateLimit,
		SeedDemoData:           getEnv("SEED_DEMO_DATA", "false") == "true",
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesDefaultSecret reports whether JWT_SECRET was left unset.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

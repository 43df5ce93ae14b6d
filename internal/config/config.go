package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Upstream UpstreamConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	Path string // SQLite database file path
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Channel the reservation push events arrive on
	EventChannel string
}

type SessionConfig struct {
	Secret     string
	CookieName string
	MaxAge     int // seconds
}

// UpstreamConfig holds base URLs of the backend APIs the booking
// service orchestrates against. Empty URLs select the mock services.
type UpstreamConfig struct {
	PricingURL     string
	ReservationURL string
	CouponURL      string
	OrderURL       string
	IntentSecret   string // signing secret for mock order intents
}

type BookingConfig struct {
	ReservationTTL    time.Duration
	ExtensionDuration time.Duration
	EngineIdleTimeout time.Duration
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "booking.db"),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			EventChannel: getEnv("REDIS_EVENT_CHANNEL", "reservation.events"),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "booking_session"),
			MaxAge:     getEnvAsInt("SESSION_MAX_AGE", 86400),
		},
		Upstream: UpstreamConfig{
			PricingURL:     getEnv("PRICING_API_URL", ""),
			ReservationURL: getEnv("RESERVATION_API_URL", ""),
			CouponURL:      getEnv("COUPON_API_URL", ""),
			OrderURL:       getEnv("ORDER_API_URL", ""),
			IntentSecret:   getEnv("ORDER_INTENT_SECRET", "dev-intent-secret"),
		},
		Booking: BookingConfig{
			ReservationTTL:    getEnvAsDuration("RESERVATION_TTL", 15*time.Minute),
			ExtensionDuration: getEnvAsDuration("RESERVATION_EXTENSION", 10*time.Minute),
			EngineIdleTimeout: getEnvAsDuration("ENGINE_IDLE_TIMEOUT", 2*time.Hour),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

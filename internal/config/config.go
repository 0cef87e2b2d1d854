package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	BackendURL         string
	BackendTimeout     time.Duration
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	SessionStore  string
	SessionTTL    time.Duration
	SecureCookie  bool
	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
	EventsTopic  string

	LogLevel string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		BackendURL:         strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:3000"), "/"),
		BackendTimeout:     getDuration("BACKEND_TIMEOUT", 0),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB
		SessionStore:       getEnv("SESSION_STORE", "memory"),
		SessionTTL:         getDuration("SESSION_TTL", 12*time.Hour),
		SecureCookie:       getBool("SESSION_COOKIE_SECURE", false),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		EventsTopic:        getEnv("EVENTS_TOPIC", "storefront-events"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid duration for %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("invalid bool for %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Generation backend
	BackendURL     string
	BackendTimeout time.Duration
	// Platform GraphQL Admin API
	ShopAPIVersion  string
	ShopAccessToken string
	ShopRateLimit   float64 // requests per second per process
	// Session tokens
	AppAPIKey      string // Expected token audience
	AppAPISecret   string // HS256 secret shared with the platform
	SessionJWKSURL string // When set, tokens are verified against this JWKS instead
	// Batch progress polling
	PollInterval time.Duration
	// Billing
	AppURL      string // Return URL base for charge approval
	TestCharges bool
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     getTablePrefix(env),
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:9000"),
		BackendTimeout:  getDuration("BACKEND_TIMEOUT", 30*time.Second),
		ShopAPIVersion:  getEnv("SHOP_API_VERSION", "2024-10"),
		ShopAccessToken: getEnv("SHOP_ACCESS_TOKEN", ""),
		ShopRateLimit:   getFloat("SHOP_RATE_LIMIT", 2),
		AppAPIKey:       getEnv("APP_API_KEY", ""),
		AppAPISecret:    getEnv("APP_API_SECRET", ""),
		SessionJWKSURL:  getEnv("SESSION_JWKS_URL", ""),
		PollInterval:    getDuration("POLL_INTERVAL", DefaultPollInterval),
		AppURL:          getEnv("APP_URL", "http://localhost:3000"),
		TestCharges:     getEnv("TEST_CHARGES", getDefaultDebug(env)) == "true",
		LogDir:          getEnv("LOG_DIR", ""),
		LogMaxFiles:     getInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return defaultValue
	}
	return f
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisURL string

	// JWT & Security
	JWTSecret          string
	JWTExpirationHours int

	// CORS
	CORSAllowedOrigins []string

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	// Pipeline
	PipelineStrictOrder bool
	NudgeStaleDays      int

	// Stripe (commission payouts)
	StripeSecretKey string
	PayoutsEnabled  bool

	// Email
	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string

	// Frontend
	FrontendURL string

	// Exports
	ExportStoragePath string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables
func Load() *Config {
	// Local development reads a .env file if one exists
	godotenv.Load()

	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "partnerhub"),
		DBPassword: getEnv("DB_PASSWORD", "localdev"),
		DBName:     getEnv("DB_NAME", "partnerhub"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		// JWT
		JWTSecret:          getEnv("JWT_SECRET", "change-this-in-production"),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),

		// CORS
		CORSAllowedOrigins: []string{
			getEnv("CORS_ORIGIN", "http://localhost:3000"),
			"https://partners.cartbridge.io",
			"https://www.cartbridge.io",
		},

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),

		// Pipeline: permissive by default so sales operators can correct
		// stages manually; strict mode rejects backward moves.
		PipelineStrictOrder: getEnvAsBool("PIPELINE_STRICT_ORDER", false),
		NudgeStaleDays:      getEnvAsInt("NUDGE_STALE_DAYS", 7),

		// Stripe
		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		PayoutsEnabled:  getEnvAsBool("PAYOUTS_ENABLED", false),

		// Email
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "noreply@cartbridge.io"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Cartbridge Partners"),

		// Frontend
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Exports
		ExportStoragePath: getEnv("EXPORT_STORAGE_PATH", "./data/exports"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// DatabaseDSN builds the MySQL DSN from the individual settings
func (c *Config) DatabaseDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=true&loc=UTC"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

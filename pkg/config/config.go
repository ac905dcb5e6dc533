package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port            string
		Env             string
		ShutdownTimeout time.Duration
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		// Driver selects the store backend: "postgres" or "memory"
		Driver string
	}

	// Redis configuration (session store)
	Redis struct {
		Addr     string
		Password string
		DB       int
		Enabled  bool
	}

	// Session configuration
	Session struct {
		CookieName   string
		TTL          time.Duration
		CookieSecure bool
	}

	// AI provider configuration
	AI struct {
		BaseURL   string
		APIKey    string
		Model     string
		MaxTokens int64
	}

	// Security configuration
	Security struct {
		AuthRateLimit float64
		AuthRateBurst int
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Metrics configuration
	Metrics struct {
		Enabled bool
		Port    string
	}
}

// Load builds a Config from environment variables, reading .env first if present.
func Load() *Config {
	godotenv.Load()

	cfg := &Config{}

	cfg.Server.Port = getEnvString("PORT", "8081")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	cfg.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second)

	cfg.Database.Host = getEnvString("DB_HOST", "localhost")
	cfg.Database.Port = getEnvString("DB_PORT", "5432")
	cfg.Database.User = getEnvString("DB_USER", "postgres")
	cfg.Database.Password = getEnvString("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnvString("DB_NAME", "persona_chat")
	cfg.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
	cfg.Database.Driver = getEnvString("DB_DRIVER", "postgres")

	cfg.Redis.Addr = getEnvString("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvString("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)

	cfg.Session.CookieName = getEnvString("SESSION_COOKIE_NAME", "persona_session")
	cfg.Session.TTL = getEnvDuration("SESSION_TTL", 7*24*time.Hour)
	cfg.Session.CookieSecure = getEnvBool("SESSION_COOKIE_SECURE", false)

	cfg.AI.BaseURL = getEnvString("AI_BASE_URL", "")
	cfg.AI.APIKey = getEnvString("AI_API_KEY", os.Getenv("OPENAI_API_KEY"))
	cfg.AI.Model = getEnvString("AI_MODEL", "gpt-5-mini")
	cfg.AI.MaxTokens = int64(getEnvInt("AI_MAX_TOKENS", 2048))

	cfg.Security.AuthRateLimit = float64(getEnvInt("AUTH_RATE_LIMIT", 5))
	cfg.Security.AuthRateBurst = getEnvInt("AUTH_RATE_BURST", 10)

	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")

	cfg.Metrics.Enabled = getEnvBool("METRICS_ENABLED", true)
	cfg.Metrics.Port = getEnvString("METRICS_PORT", "2112")

	return cfg
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	parts := []string{
		"host=" + c.Database.Host,
		"port=" + c.Database.Port,
		"user=" + c.Database.User,
		"password=" + c.Database.Password,
		"dbname=" + c.Database.Name,
		"sslmode=" + c.Database.SSLMode,
	}
	return strings.Join(parts, " ")
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	AdminAPIToken string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	TipaltiWebhookSecret string

	SchedulerEnabled  bool
	SchedulerInterval time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "skyyield"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		AdminAPIToken: strings.TrimSpace(getenv("ADMIN_API_TOKEN", "")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "skyyield"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		TipaltiWebhookSecret: strings.TrimSpace(getenv("TIPALTI_WEBHOOK_SECRET", "")),

		SchedulerEnabled:  getenvBool("SCHEDULER_ENABLED", true),
		SchedulerInterval: getenvDuration("SCHEDULER_INTERVAL", time.Hour),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

// internal/pkg/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Application
	App AppConfig

	// Backend API
	Backend BackendConfig

	// Redis (optional shared cache)
	Redis RedisConfig

	// Reconciliation worker
	Reconciler ReconcilerConfig

	// Dashboard
	Dashboard DashboardConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// BackendConfig holds the REST backend configuration
type BackendConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// RedisConfig holds Redis configuration for the optional shared cache
type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	DialTimeout time.Duration
	ReadTimeout time.Duration
	TTL         time.Duration
}

// ReconcilerConfig bounds the reconciliation worker
type ReconcilerConfig struct {
	QueueSize         int
	RequestsPerSecond float64
	Burst             int
}

// DashboardConfig holds dashboard configuration
type DashboardConfig struct {
	SummaryTTL time.Duration
	ExportDir  string
}

// Load loads configuration from environment variables
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	// Initialize viper
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetTypeByDefaultValue(true)

	setDefaults()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "dropdash"),
			Environment: env,
			Version:     getEnv("APP_VERSION", "dev"),
			LogLevel:    getEnv("LOG_LEVEL", "debug"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Debug:       getBoolEnv("APP_DEBUG", env == "development"),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8080/api/v1"),
			Token:   getEnv("BACKEND_TOKEN", ""),
			Timeout: getDurationEnv("BACKEND_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			Enabled:     getBoolEnv("REDIS_ENABLED", false),
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getIntEnv("REDIS_DB", 0),
			DialTimeout: getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout: getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			TTL:         getDurationEnv("REDIS_TTL", time.Hour),
		},
		Reconciler: ReconcilerConfig{
			QueueSize:         getIntEnv("RECONCILER_QUEUE_SIZE", 256),
			RequestsPerSecond: getFloatEnv("RECONCILER_RPS", 10),
			Burst:             getIntEnv("RECONCILER_BURST", 1),
		},
		Dashboard: DashboardConfig{
			SummaryTTL: getDurationEnv("DASHBOARD_SUMMARY_TTL", 5*time.Minute),
			ExportDir:  getEnv("DASHBOARD_EXPORT_DIR", "."),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}
	if c.Backend.Token == "" && c.App.Environment == "production" {
		return fmt.Errorf("backend token must be set in production")
	}
	if c.Reconciler.RequestsPerSecond <= 0 {
		return fmt.Errorf("reconciler requests per second must be positive")
	}
	if c.Reconciler.QueueSize <= 0 {
		return fmt.Errorf("reconciler queue size must be positive")
	}
	return nil
}

// RedisAddr returns the formatted Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// Helper functions

func setDefaults() {
	viper.SetDefault("app.name", "dropdash")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=erp port=5432 sslmode=disable"

type Config struct {
	HTTPPort       string `yaml:"http_port"`
	DatabaseDriver string `yaml:"database_driver"` // postgres | sqlite
	DatabaseDSN    string `yaml:"database_dsn"`
	JWTSecret      string `yaml:"jwt_secret"`
	JWTTTLMinutes  int    `yaml:"jwt_ttl_minutes"`
	CORSOrigins    string `yaml:"cors_allowed_origins"`

	// Deadline of the context handed to storage calls of one request.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// Customer billed when a B invoice names nobody. The row must exist.
	WalkInCustomerID uint `yaml:"walk_in_customer_id"`
	// How many times a sale re-reads a product after losing a version race.
	SaleStockRetries int `yaml:"sale_stock_retries"`

	LogMode  string `yaml:"log_mode"` // production | development
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"` // empty disables the rotating file sink

	PrometheusEnabled bool `yaml:"prometheus_enabled"`

	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`

	// Warnings collected while loading, logged once the logger exists.
	Warnings []string `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		HTTPPort:              "8080",
		DatabaseDriver:        "postgres",
		DatabaseDSN:           defaultDSN,
		JWTTTLMinutes:         60,
		CORSOrigins:           "http://localhost:5173",
		RequestTimeoutSeconds: 30,
		WalkInCustomerID:      1,
		SaleStockRetries:      1,
		LogMode:               "development",
		LogLevel:              "info",
	}
}

// Load builds the configuration from an optional YAML file (CONFIG_FILE)
// overlaid by environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.CORSOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)
	cfg.LogMode = getEnv("LOG_MODE", cfg.LogMode)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)

	if v := os.Getenv("PROMETHEUS_ENABLED"); v != "" {
		enabled, err := cast.ToBoolE(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("PROMETHEUS_ENABLED: %w", err)
		}
		cfg.PrometheusEnabled = enabled
	}

	var err error
	if cfg.JWTTTLMinutes, err = getEnvInt("JWT_TTL_MINUTES", cfg.JWTTTLMinutes); err != nil {
		return nil, err
	}
	if cfg.SaleStockRetries, err = getEnvInt("SALE_STOCK_RETRIES", cfg.SaleStockRetries); err != nil {
		return nil, err
	}
	if cfg.RequestTimeoutSeconds, err = getEnvInt("REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeoutSeconds); err != nil {
		return nil, err
	}
	walkIn, err := getEnvInt("WALK_IN_CUSTOMER_ID", int(cfg.WalkInCustomerID))
	if err != nil {
		return nil, err
	}
	cfg.WalkInCustomerID = uint(walkIn)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("DATABASE_DRIVER %q is not supported", c.DatabaseDriver)
	}
	if c.WalkInCustomerID == 0 {
		return errors.New("WALK_IN_CUSTOMER_ID must be a positive id")
	}
	if c.SaleStockRetries < 0 {
		return errors.New("SALE_STOCK_RETRIES must be >= 0")
	}
	if c.JWTTTLMinutes <= 0 {
		return errors.New("JWT_TTL_MINUTES must be > 0")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return errors.New("REQUEST_TIMEOUT_SECONDS must be > 0")
	}

	if c.DatabaseDriver == "postgres" && c.DatabaseDSN == defaultDSN {
		c.Warnings = append(c.Warnings, "DATABASE_DSN uses the default value, set your own Postgres DSN in production")
	}
	if c.CORSOrigins == "http://localhost:5173" {
		c.Warnings = append(c.Warnings, "CORS_ALLOWED_ORIGINS uses the default value, set your own domain in production")
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// AllowedOrigins normalises the comma separated origin list.
func (c *Config) AllowedOrigins() string {
	origins := strings.Split(c.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return strings.Join(origins, ",")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := cast.ToIntE(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

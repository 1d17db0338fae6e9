package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultAppEnv          = "dev"
	defaultHTTPPort        = "8080"
	defaultDatabaseURL     = "file:rentaldesk.db?_pragma=foreign_keys(1)"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultCORSOrigins     = "http://localhost:5173"
	defaultLogLevel        = "info"
	defaultHorizonDays     = "90"
	defaultShutdownTimeout = "15s"
	defaultMaxOpenConns    = "25"
	defaultMaxIdleConns    = "10"
)

type Config struct {
	AppEnv          string        `validate:"required,oneof=dev test staging prod production release"`
	HTTPPort        string        `validate:"required,numeric"`
	DatabaseURL     string        `validate:"required"`
	JWTSecret       string        `validate:"required"`
	CORSOrigins     []string      `validate:"dive,required"`
	RedisAddress    string        `validate:"omitempty,hostname_port"`
	LogLevel        string        `validate:"required,oneof=trace debug info warn warning error fatal panic"`
	HorizonDays     int           `validate:"gt=0,lte=730"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	MaxOpenConns    int           `validate:"gte=0"`
	MaxIdleConns    int           `validate:"gte=0"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = defaultAppEnv
	}
	cfg.AppEnv = strings.ToLower(appEnv)
	cfg.HTTPPort = strings.TrimSpace(getEnv("HTTP_PORT", defaultHTTPPort))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.CORSOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins))
	cfg.RedisAddress = strings.TrimSpace(os.Getenv("REDIS_ADDRESS"))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))

	var err error
	if cfg.HorizonDays, err = parseIntEnv("AVAILABILITY_HORIZON_DAYS", defaultHorizonDays); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns, err = parseIntEnv("DB_MAX_OPEN_CONNS", defaultMaxOpenConns); err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns, err = parseIntEnv("DB_MAX_IDLE_CONNS", defaultMaxIdleConns); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.HTTPPort
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if len(cfg.JWTSecret) < 32 {
			return fmt.Errorf("in prod/release JWT_SECRET must be at least 32 characters")
		}
		if strings.HasPrefix(cfg.DatabaseURL, "file:") || strings.HasSuffix(cfg.DatabaseURL, ".db") {
			return fmt.Errorf("in prod/release DATABASE_URL must point to postgres or mysql")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func splitList(v string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// embedded zoneinfo so TIMEZONE works on minimal images
	_ "time/tzdata"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultStorageDriver     = "memory"
	defaultDatabaseURL       = "file:rentfunnel.db?_pragma=busy_timeout(5000)"
	defaultSessionMaxAge     = "30m"
	defaultQuoteValidity     = "720h"
	defaultJWTSecret         = "change-me-jwt-secret"
	defaultJWTTTL            = "24h"
	defaultCookieSecure      = "false"
	defaultCORSOrigins       = "http://localhost:3000"
	defaultLogLevel          = "info"
	defaultLogFormat         = "json"
	defaultTimezone          = "Europe/Rome"
	defaultLeadCreateRetries = "3"
	defaultLeadRatePerMinute = "10"
	defaultLeadRateBurst     = "5"
)

const (
	StorageMemory = "memory"
	StorageSQL    = "sql"
)

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	AppEnv   string
	HTTPAddr string

	StorageDriver string
	DatabaseURL   string

	// SiteHost is our own host, used to tell referrals from internal navigation
	SiteHost      string
	SessionMaxAge time.Duration
	QuoteValidity time.Duration

	JWTSecret    string
	JWTTTL       time.Duration
	CookieSecure bool

	CORSAllowedOrigins []string

	// InternalToken guards /internal endpoints; empty disables them
	InternalToken string

	Log      LogConfig
	Timezone *time.Location

	LeadCreateRetries int
	// LeadRatePerMinute limits form submissions per client IP; 0 disables it
	LeadRatePerMinute int
	LeadRateBurst     int
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", defaultStorageDriver)))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.SiteHost = strings.ToLower(strings.TrimSpace(os.Getenv("SITE_HOST")))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.CookieSecure = parseBoolEnv("COOKIE_SECURE", defaultCookieSecure)
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)
	cfg.InternalToken = strings.TrimSpace(os.Getenv("INTERNAL_TOKEN"))
	cfg.Log = LogConfig{
		Level:  strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))),
		Format: strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat))),
	}

	var err error
	cfg.SessionMaxAge, err = parseDurationEnv("SESSION_MAX_AGE", defaultSessionMaxAge)
	if err != nil {
		return nil, err
	}

	cfg.QuoteValidity, err = parseDurationEnv("QUOTE_VALIDITY", defaultQuoteValidity)
	if err != nil {
		return nil, err
	}

	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.LeadCreateRetries, err = parseIntEnv("LEAD_CREATE_RETRIES", defaultLeadCreateRetries)
	if err != nil {
		return nil, err
	}

	cfg.LeadRatePerMinute, err = parseIntEnv("LEAD_RATE_PER_MINUTE", defaultLeadRatePerMinute)
	if err != nil {
		return nil, err
	}

	cfg.LeadRateBurst, err = parseIntEnv("LEAD_RATE_BURST", defaultLeadRateBurst)
	if err != nil {
		return nil, err
	}

	tz := strings.TrimSpace(getEnv("TIMEZONE", defaultTimezone))
	cfg.Timezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE value %q: %w", tz, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.StorageDriver != StorageMemory && cfg.StorageDriver != StorageSQL {
		return fmt.Errorf("STORAGE_DRIVER must be one of: memory, sql")
	}
	if cfg.StorageDriver == StorageSQL && cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=sql")
	}
	if cfg.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be > 0")
	}
	if cfg.QuoteValidity <= 0 {
		return fmt.Errorf("QUOTE_VALIDITY must be > 0")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.LeadCreateRetries < 1 {
		return fmt.Errorf("LEAD_CREATE_RETRIES must be >= 1")
	}
	if cfg.LeadRatePerMinute < 0 || cfg.LeadRateBurst < 1 {
		return fmt.Errorf("LEAD_RATE_PER_MINUTE must be >= 0 and LEAD_RATE_BURST >= 1")
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}

	if cfg.IsProd() {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if !cfg.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}

	return nil
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
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

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseListEnv(name, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(name, fallback), ",") {
		if p := strings.TrimSpace(part); p != "" {
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

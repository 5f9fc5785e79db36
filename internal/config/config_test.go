package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "ENV", "HTTP_ADDR", "STORAGE_DRIVER", "DATABASE_URL", "SITE_HOST",
		"SESSION_MAX_AGE", "QUOTE_VALIDITY", "JWT_SECRET", "JWT_TTL", "COOKIE_SECURE",
		"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "TIMEZONE", "LEAD_CREATE_RETRIES", "INTERNAL_TOKEN",
		"LEAD_RATE_PER_MINUTE", "LEAD_RATE_BURST",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 30*time.Minute, cfg.SessionMaxAge)
	assert.Equal(t, 30*24*time.Hour, cfg.QuoteValidity)
	assert.Equal(t, 3, cfg.LeadCreateRetries)
	assert.Equal(t, 10, cfg.LeadRatePerMinute)
	assert.Equal(t, 5, cfg.LeadRateBurst)
	assert.Equal(t, "Europe/Rome", cfg.Timezone.String())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "SQL")
	t.Setenv("DATABASE_URL", "postgres://localhost/rent")
	t.Setenv("SITE_HOST", "RentExcellence.it")
	t.Setenv("SESSION_MAX_AGE", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.it, https://b.it ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageSQL, cfg.StorageDriver)
	assert.Equal(t, "rentexcellence.it", cfg.SiteHost)
	assert.Equal(t, 45*time.Minute, cfg.SessionMaxAge)
	assert.Equal(t, []string{"https://a.it", "https://b.it"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"bad duration": {"SESSION_MAX_AGE": "soon"},
		"bad driver":   {"STORAGE_DRIVER": "redis"},
		"bad retries":  {"LEAD_CREATE_RETRIES": "0"},
		"bad timezone": {"TIMEZONE": "Mars/Olympus"},
		"bad format":   {"LOG_FORMAT": "xml"},
		"bad rate":     {"LEAD_RATE_PER_MINUTE": "-1"},
		"bad burst":    {"LEAD_RATE_BURST": "0"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProdRejectsDefaultSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("COOKIE_SECURE", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "loud", Format: "json"}))
}

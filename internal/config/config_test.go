package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	vars := map[string]string{
		"EDUFINANCE_PRIMARY.ENV":                 "local",
		"EDUFINANCE_SERVER.PORT":                 "8080",
		"EDUFINANCE_SERVER.READ_TIMEOUT":         "30",
		"EDUFINANCE_SERVER.WRITE_TIMEOUT":        "30",
		"EDUFINANCE_SERVER.IDLE_TIMEOUT":         "60",
		"EDUFINANCE_SERVER.CORS_ALLOWED_ORIGINS": "http://localhost:3000,http://localhost:5173",
		"EDUFINANCE_DATABASE.HOST":               "localhost",
		"EDUFINANCE_DATABASE.PORT":               "5432",
		"EDUFINANCE_DATABASE.USER":               "postgres",
		"EDUFINANCE_DATABASE.PASSWORD":           "postgres",
		"EDUFINANCE_DATABASE.NAME":               "edufinance",
		"EDUFINANCE_DATABASE.SSL_MODE":           "disable",
		"EDUFINANCE_DATABASE.MAX_OPEN_CONNS":     "25",
		"EDUFINANCE_DATABASE.MAX_IDLE_CONNS":     "25",
		"EDUFINANCE_DATABASE.CONN_MAX_LIFETIME":  "300",
		"EDUFINANCE_DATABASE.CONN_MAX_IDLE_TIME": "300",
		"EDUFINANCE_REDIS.ADDRESS":               "localhost:6379",
		"EDUFINANCE_AUTH.SECRET_KEY":             "0123456789abcdef0123456789abcdef",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EDUFINANCE_AUTH.ACCESS_TOKEN_TTL", "30m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, "edufinance", cfg.Auth.Issuer)
	assert.Equal(t, time.Minute, cfg.Cache.DashboardTTL)
	assert.True(t, cfg.IsLocal())

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "edufinance", cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)
}

func TestLoadConfig_ShortSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EDUFINANCE_AUTH.SECRET_KEY", "short")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_BootstrapNeedsPassword(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EDUFINANCE_AUTH.BOOTSTRAP_EMAIL", "root@school.test")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.SlowQueryThreshold = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	cfg.Logging.Level = ""

	cfg.Environment = "production"
	assert.Equal(t, "info", cfg.GetLogLevel())

	cfg.Environment = "development"
	assert.Equal(t, "debug", cfg.GetLogLevel())

	cfg.Logging.Level = "warn"
	assert.Equal(t, "warn", cfg.GetLogLevel())
}

// Package config loads the application configuration from the environment.
//
// Variables are read with the EDUFINANCE_ prefix, optionally from a `.env`
// file, mapped into typed structs and validated so the process fails fast
// on bad or missing values.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Loads `.env` into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// EnvPrefix is stripped from every variable name before mapping.
//
// Nested fields use dots after the prefix:
//
//	EDUFINANCE_SERVER.PORT=8080 -> server.port -> Config.Server.Port
const EnvPrefix = "EDUFINANCE_"

// Config is the root configuration object.
//
// Observability is optional and receives defaults when absent.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Cache         CacheConfig          `koanf:"cache"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig holds HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
	// RequestsPerSecond is the global per-IP limit.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig configures token issuance and the login limiter.
//
// BootstrapEmail/BootstrapPassword create the first super admin on an empty
// users table and are ignored afterwards.
type AuthConfig struct {
	SecretKey         string        `koanf:"secret_key" validate:"required,min=32"`
	Issuer            string        `koanf:"issuer"`
	AccessTokenTTL    time.Duration `koanf:"access_token_ttl"`
	RefreshTokenTTL   time.Duration `koanf:"refresh_token_ttl"`
	LoginRateLimit    float64       `koanf:"login_rate_limit"`
	BootstrapEmail    string        `koanf:"bootstrap_email" validate:"omitempty,email"`
	BootstrapPassword string        `koanf:"bootstrap_password" validate:"required_with=BootstrapEmail"`
}

type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

type CacheConfig struct {
	DashboardTTL time.Duration `koanf:"dashboard_ttl"`
}

// LoadConfig reads, defaults and validates the configuration.
func LoadConfig() (*Config, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		logger.Error().Err(err).Msg("could not load initial env variables")
		return nil, fmt.Errorf("loading env: %w", err)
	}

	mainConfig := &Config{}

	if err = k.Unmarshal("", mainConfig); err != nil {
		logger.Error().Err(err).Msg("could not unmarshal main config")
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	mainConfig.applyDefaults()

	if err = validator.New().Struct(mainConfig); err != nil {
		logger.Error().Err(err).Msg("config validation failed")
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	mainConfig.Observability.ServiceName = "edufinance"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid observability config")
		return nil, err
	}

	return mainConfig, nil
}

// applyDefaults fills optional settings that have a sensible zero replacement.
func (c *Config) applyDefaults() {
	if c.Server.RequestsPerSecond <= 0 {
		c.Server.RequestsPerSecond = 20
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "edufinance"
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.Auth.LoginRateLimit <= 0 {
		c.Auth.LoginRateLimit = 1
	}
	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = "Edufinance <no-reply@edufinance.app>"
	}
	if c.Cache.DashboardTTL <= 0 {
		c.Cache.DashboardTTL = time.Minute
	}
}

// IsLocal reports whether the process runs in a developer environment.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}

// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development signing secret of the dev API.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Session storage backends.
const (
	SessionBackendFile   = "file"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env string `mapstructure:"APP_ENV"`

	APIBaseURL string        `mapstructure:"API_BASE_URL"`
	APITimeout time.Duration `mapstructure:"API_TIMEOUT"`

	SessionBackend string        `mapstructure:"SESSION_BACKEND"`
	SessionFile    string        `mapstructure:"SESSION_FILE"`
	SessionKey     string        `mapstructure:"SESSION_KEY"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	RedisURL       string        `mapstructure:"REDIS_URL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	// CLILogLevel is the log level of the terminal client, which keeps
	// diagnostics out of command output by default.
	CLILogLevel string `mapstructure:"CLI_LOG_LEVEL"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`

	DevAPIPort      string `mapstructure:"DEVAPI_PORT"`
	DevAPIDBDriver  string `mapstructure:"DEVAPI_DB_DRIVER"`
	DevAPIDSN       string `mapstructure:"DEVAPI_DSN"`
	DevAPISeedPosts int    `mapstructure:"DEVAPI_SEED_POSTS"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
}

// LoadConfig loads application configuration from .env, config files and
// environment variables, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// The base config file is optional.
	_ = v.ReadInConfig()

	env := v.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read profile-specific config 'config.%s.yml': %w", env, err)
			}
		} else {
			slog.Debug("loaded profile-specific configuration", slog.String("file", "config."+env+".yml"))
		}
	}

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("API_TIMEOUT", "30s")
	v.SetDefault("SESSION_BACKEND", SessionBackendFile)
	v.SetDefault("SESSION_FILE", "")
	v.SetDefault("SESSION_KEY", "currentUser")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("CLI_LOG_LEVEL", "warn")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "stdout")
	v.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
	v.SetDefault("DEVAPI_PORT", "8080")
	v.SetDefault("DEVAPI_DB_DRIVER", "sqlite")
	v.SetDefault("DEVAPI_DSN", "file:agora.db?_foreign_keys=on")
	v.SetDefault("DEVAPI_SEED_POSTS", 10)
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	c.SessionBackend = strings.ToLower(strings.TrimSpace(c.SessionBackend))
	c.DevAPIDBDriver = strings.ToLower(strings.TrimSpace(c.DevAPIDBDriver))
	c.TracingExporter = strings.ToLower(strings.TrimSpace(c.TracingExporter))
	if c.LogFormat == "" {
		c.LogFormat = "text"
		if c.IsProduction() {
			c.LogFormat = "json"
		}
	}
}

// IsProduction reports whether the config targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}

	switch c.SessionBackend {
	case SessionBackendFile, SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when SESSION_BACKEND is redis")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be one of file, memory, redis, got %q", c.SessionBackend)
	}
	if c.SessionKey == "" {
		return errors.New("SESSION_KEY is required")
	}

	if c.TracingSamplerRatio < 0 || c.TracingSamplerRatio > 1 {
		return errors.New("TRACING_SAMPLER_RATIO must be between 0 and 1")
	}
	if c.DevAPIDBDriver != "sqlite" && c.DevAPIDBDriver != "postgres" {
		return fmt.Errorf("DEVAPI_DB_DRIVER must be sqlite or postgres, got %q", c.DevAPIDBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	if c.IsProduction() {
		if c.JWTSecret == DefaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	}

	return nil
}

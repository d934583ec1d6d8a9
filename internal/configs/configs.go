package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"
)

const minSecretLength = 32

type Config struct {
	AppHost                 string `yaml:"app_host"`
	AppPort                 string `yaml:"app_port"`
	DatabaseDriver          string `yaml:"database_driver"`
	DatabaseDSN             string `yaml:"database_dsn"`
	JWTSecret               string `yaml:"jwt_secret"`
	JWTExpirationMS         int    `yaml:"jwt_expiration_ms"`
	CORSAllowedOrigin       string `yaml:"cors_allowed_origin"`
	RequestTimeoutSeconds   int    `yaml:"request_timeout_seconds"`
	RateLimit               int    `yaml:"rate_limit_per_minute"`
	RedisEnabled            bool   `yaml:"redis_enabled"`
	RedisHost               string `yaml:"redis_host"`
	RedisPort               string `yaml:"redis_port"`
	IdentityCacheSize       int    `yaml:"identity_cache_size"`
	IdentityCacheTTLSeconds int    `yaml:"identity_cache_ttl_seconds"`
	ShutdownTimeoutSeconds  int    `yaml:"shutdown_timeout_seconds"`
	LogLevel                string `yaml:"log_level"`
}

func Defaults() Config {
	return Config{
		AppHost:                 "127.0.0.1",
		AppPort:                 "8080",
		DatabaseDriver:          "sqlite",
		DatabaseDSN:             "kanban.db?_foreign_keys=1",
		JWTExpirationMS:         86400000,
		CORSAllowedOrigin:       "http://localhost:5173",
		RequestTimeoutSeconds:   10,
		RateLimit:               60,
		RedisHost:               "127.0.0.1",
		RedisPort:               "6379",
		IdentityCacheSize:       1024,
		IdentityCacheTTLSeconds: 60,
		ShutdownTimeoutSeconds:  20,
		LogLevel:                "info",
	}
}

// Load reads defaults, then the YAML file at path if one is given, then the
// environment.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	env := &envReader{}
	env.str("APP_HOST", &cfg.AppHost)
	env.str("APP_PORT", &cfg.AppPort)
	env.str("DATABASE_DRIVER", &cfg.DatabaseDriver)
	env.str("DATABASE_DSN", &cfg.DatabaseDSN)
	env.str("JWT_SECRET", &cfg.JWTSecret)
	env.int("JWT_EXPIRATION_MS", &cfg.JWTExpirationMS)
	env.str("CORS_ALLOWED_ORIGIN", &cfg.CORSAllowedOrigin)
	env.int("REQUEST_TIMEOUT_SECONDS", &cfg.RequestTimeoutSeconds)
	env.int("RATE_LIMIT_PER_MINUTE", &cfg.RateLimit)
	env.bool("REDIS_ENABLED", &cfg.RedisEnabled)
	env.str("REDIS_HOST", &cfg.RedisHost)
	env.str("REDIS_PORT", &cfg.RedisPort)
	env.int("IDENTITY_CACHE_SIZE", &cfg.IdentityCacheSize)
	env.int("IDENTITY_CACHE_TTL_SECONDS", &cfg.IdentityCacheTTLSeconds)
	env.int("SHUTDOWN_TIMEOUT_SECONDS", &cfg.ShutdownTimeoutSeconds)
	env.str("LOG_LEVEL", &cfg.LogLevel)
	if err := errors.Join(env.errs...); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) AppURL() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c Config) TokenLifetime() time.Duration {
	return time.Duration(c.JWTExpirationMS) * time.Millisecond
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) IdentityCacheTTL() time.Duration {
	return time.Duration(c.IdentityCacheTTLSeconds) * time.Second
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// validate checks what every command needs.
func (c Config) validate() error {
	var errs []error

	if c.AppHost == "" || c.AppPort == "" {
		errs = append(errs, errors.New("APP_HOST and APP_PORT must not be empty"))
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "mysql" {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be sqlite or mysql, got %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must not be empty"))
	}
	if c.JWTExpirationMS <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MS must be greater than 0"))
	}
	if c.RequestTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT_SECONDS must be greater than 0"))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0"))
	}
	if c.IdentityCacheSize <= 0 {
		errs = append(errs, errors.New("IDENTITY_CACHE_SIZE must be greater than 0"))
	}
	if c.IdentityCacheTTLSeconds <= 0 {
		errs = append(errs, errors.New("IDENTITY_CACHE_TTL_SECONDS must be greater than 0"))
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0"))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ValidateServe adds the checks only the HTTP server needs.
func (c Config) ValidateServe() error {
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}
	if c.CORSAllowedOrigin == "" {
		return errors.New("CORS_ALLOWED_ORIGIN must not be empty")
	}
	return nil
}

func ParseLogLevel(level string) (log.Lvl, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG, nil
	case "info", "":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, off; got %q", level)
}

type envReader struct {
	errs []error
}

func (r *envReader) str(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (r *envReader) int(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid integer value for %s", key))
		return
	}
	*dst = i
}

func (r *envReader) bool(key string, dst *bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid boolean value for %s", key))
		return
	}
	*dst = b
}

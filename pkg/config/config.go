// Package config loads service configuration from an optional YAML file and
// ETHOS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. ETHOS_API_KEY.
const EnvPrefix = "ETHOS"

// Config is the full service configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
}

// APIConfig configures the integration API client.
type APIConfig struct {
	Key           string        `mapstructure:"key" validate:"required"`
	Region        string        `mapstructure:"region" validate:"oneof=us ca eu ap self_hosted"`
	BaseURL       string        `mapstructure:"base_url" validate:"omitempty,url"`
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gte=1m"`
	PageSize      int           `mapstructure:"page_size" validate:"gte=0"`
}

// RedisConfig configures the shared token store. Disabled means tokens stay in process.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0,lte=15"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Pretty bool   `mapstructure:"pretty"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

var defaults = map[string]any{
	"api.key":                 "",
	"api.region":              "us",
	"api.base_url":            "",
	"api.user_agent":          "ethos-proxy/0.1.0",
	"api.timeout":             30 * time.Second,
	"api.token_lifetime":      5 * time.Minute,
	"api.page_size":           0,
	"redis.enabled":           false,
	"redis.addr":              "localhost:6379",
	"redis.password":          "",
	"redis.db":                0,
	"logging.level":           "info",
	"logging.pretty":          false,
	"server.addr":             ":8080",
	"server.read_timeout":     15 * time.Second,
	"server.write_timeout":    120 * time.Second,
	"server.shutdown_timeout": 10 * time.Second,
}

// SetDefaults registers every key with its default. Environment variables are
// only seen by Unmarshal for registered keys.
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads path (skipped when empty) and the environment into a validated Config.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// ErrMissingBaseURL is returned when the self_hosted region has no base URL.
var ErrMissingBaseURL = errors.New("api.base_url is required for the self_hosted region")

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	if c.API.Region == "self_hosted" && c.API.BaseURL == "" {
		return ErrMissingBaseURL
	}

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

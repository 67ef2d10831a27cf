package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is read when no config file is given. A missing file is not an error.
const DefaultPath = "snaptrade.yaml"

// EnvPrefix prefixes every environment override. A double underscore nests:
// SNAPTRADE_API__CLIENT_ID sets api.client_id.
const EnvPrefix = "SNAPTRADE_"

type Config struct {
	API       APIConfig       `koanf:"api"`
	Store     StoreConfig     `koanf:"store"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Sandbox   SandboxConfig   `koanf:"sandbox"`
}

type APIConfig struct {
	ClientID    string        `koanf:"client_id"`
	ConsumerKey string        `koanf:"consumer_key"`
	BaseURL     string        `koanf:"base_url"`
	Timeout     time.Duration `koanf:"timeout"`
}

type StoreConfig struct {
	Path string `koanf:"path"` // sqlite file holding registered user secrets
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

type SandboxConfig struct {
	Addr          string        `koanf:"addr"`
	TimestampSkew time.Duration `koanf:"timestamp_skew"`
}

var defaults = map[string]any{
	"api.base_url":           "https://api.snaptrade.com",
	"api.timeout":            "30s",
	"store.path":             "snaptrade.db",
	"log.level":              "info",
	"log.format":             "text",
	"telemetry.service_name": "snaptrade-cli",
	"sandbox.addr":           "127.0.0.1:8089",
	"sandbox.timestamp_skew": "5m",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads path (or DefaultPath when empty), then applies SNAPTRADE_
// environment overrides, then defaults for anything still unset.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.API.ClientID = substituteEnvVars(cfg.API.ClientID)
	cfg.API.ConsumerKey = substituteEnvVars(cfg.API.ConsumerKey)

	return &cfg, nil
}

// Validate checks what is needed to call the API.
func (c *Config) Validate() error {
	var errs []error
	if c.API.ClientID == "" {
		errs = append(errs, errors.New("api.client_id is required"))
	}
	if c.API.ConsumerKey == "" {
		errs = append(errs, errors.New("api.consumer_key is required"))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	return errors.Join(errs...)
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

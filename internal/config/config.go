// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package config loads PainLog settings from defaults, a YAML file, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/painlog/painlog/internal/i18n"
	"github.com/painlog/painlog/internal/logging"
)

// Identity provider kinds.
const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

// Config is the complete PainLog configuration.
type Config struct {
	Provider string         `koanf:"provider" json:"provider" jsonschema:"enum=local,enum=firebase,default=local,description=Identity provider"`
	Locale   string         `koanf:"locale" json:"locale" jsonschema:"default=ja,description=Locale of user-facing messages"`
	Log      LogConfig      `koanf:"log" json:"log"`
	Metrics  MetricsConfig  `koanf:"metrics" json:"metrics"`
	Session  SessionConfig  `koanf:"session" json:"session"`
	Database DatabaseConfig `koanf:"database" json:"database"`
	Firebase FirebaseConfig `koanf:"firebase" json:"firebase"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Format string `koanf:"format" json:"format" jsonschema:"enum=json,enum=text,default=text"`
	Level  string `koanf:"level" json:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=warn"`
}

// MetricsConfig controls the metrics and health server of long-running
// commands. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty" jsonschema:"description=Listen address for /metrics and /healthz (empty disables)"`
}

// SessionConfig controls where the signed-in session is kept.
type SessionConfig struct {
	// File defaults to $XDG_STATE_HOME/painlog/session.json.
	File         string        `koanf:"file" json:"file,omitempty"`
	PollInterval time.Duration `koanf:"poll_interval" json:"poll_interval" jsonschema:"type=string,default=2s,description=How often session --watch rereads the session file"`
}

// DatabaseConfig locates PostgreSQL.
type DatabaseConfig struct {
	URL             string `koanf:"url" json:"url,omitempty" env:"DATABASE_URL"`
	ConnectAttempts uint64 `koanf:"connect_attempts" json:"connect_attempts" jsonschema:"minimum=1,default=5"`
}

// FirebaseConfig configures the Firebase provider.
type FirebaseConfig struct {
	APIKey  string        `koanf:"api_key" json:"api_key,omitempty" env:"PAINLOG_FIREBASE_API_KEY"`
	BaseURL string        `koanf:"base_url" json:"base_url,omitempty"`
	Timeout time.Duration `koanf:"timeout" json:"timeout" jsonschema:"type=string,default=10s"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider: ProviderLocal,
		Locale:   i18n.BaseLocale,
		Log:      LogConfig{Format: logging.FormatText, Level: "warn"},
		Session:  SessionConfig{PollInterval: 2 * time.Second},
		Database: DatabaseConfig{ConnectAttempts: 5},
		Firebase: FirebaseConfig{Timeout: 10 * time.Second},
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"provider":     "provider",
	"locale":       "locale",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"session-file": "session.file",
	"database-url": "database.url",
}

// LoadOptions tells Load where to read from.
type LoadOptions struct {
	// Path is the YAML file to read.
	Path string
	// Required makes a missing file an error; otherwise it is skipped.
	Required bool
	// Flags are applied last. Only flags the user set take effect.
	Flags *pflag.FlagSet
	// Environ replaces the process environment when non-nil.
	Environ map[string]string
}

// Load builds a Config and validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.Path != "" {
		k := koanf.New(".")
		err := k.Load(file.Provider(opts.Path), yaml.Parser())
		switch {
		case errors.Is(err, fs.ErrNotExist) && !opts.Required:
		case err != nil:
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", opts.Path).Wrap(err)
		default:
			if err := validateDocument(k.Raw()); err != nil {
				return nil, oops.With("path", opts.Path).Wrap(err)
			}
			if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
				return nil, oops.Code("CONFIG_INVALID").With("path", opts.Path).Wrap(err)
			}
		}
	}

	envOpts := env.Options{}
	if opts.Environ != nil {
		envOpts.Environment = opts.Environ
	}
	if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
		return nil, oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}

	if opts.Flags != nil {
		k := koanf.New(".")
		err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil)
		if err != nil {
			return nil, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
		if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if c.Provider != ProviderLocal && c.Provider != ProviderFirebase {
		return oops.Code("CONFIG_INVALID").With("provider", c.Provider).
			Errorf("provider must be %q or %q", ProviderLocal, ProviderFirebase)
	}
	if !i18n.Default().Supports(c.Locale) {
		return oops.Code("CONFIG_INVALID").With("locale", c.Locale).
			Errorf("unsupported locale %q (available: %v)", c.Locale, i18n.Default().Locales())
	}
	if !logging.ValidFormat(c.Log.Format) {
		return oops.Code("CONFIG_INVALID").With("log_format", c.Log.Format).
			Errorf("log format must be %q or %q", logging.FormatJSON, logging.FormatText)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return oops.Code("CONFIG_INVALID").With("log_level", c.Log.Level).
			Errorf("unknown log level %q", c.Log.Level)
	}
	if c.Session.PollInterval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session poll interval must be positive")
	}
	if c.Database.ConnectAttempts == 0 {
		return oops.Code("CONFIG_INVALID").Errorf("database connect attempts must be at least 1")
	}
	return nil
}

// RequireDatabase reports a missing database URL.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable or database.url is required")
	}
	return nil
}

// RequireFirebase reports a missing Firebase API key.
func (c *Config) RequireFirebase() error {
	if c.Firebase.APIKey == "" {
		return oops.Code("CONFIG_INVALID").Errorf("PAINLOG_FIREBASE_API_KEY environment variable or firebase.api_key is required")
	}
	return nil
}

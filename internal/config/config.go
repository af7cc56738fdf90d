// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

// Package config loads service configuration from YAML files and command
// line flags. Flags override file values; both override defaults.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/repstack/repstack/internal/xdg"
)

// SMTPConfig holds outbound mail settings. An empty Host disables SMTP
// delivery; mail is then logged instead of sent.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// Config holds all service configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `koanf:"database_url"`

	// HTTPAddr is the listen address of the API server.
	HTTPAddr string `koanf:"http_addr"`

	// MetricsAddr is the listen address of the observability server.
	MetricsAddr string `koanf:"metrics_addr"`

	// BaseURL is the public URL links in outbound email point at.
	BaseURL string `koanf:"base_url"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`

	SMTP SMTPConfig `koanf:"smtp"`
}

// Default returns the configuration used when neither file nor flags set
// a value.
func Default() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
		BaseURL:     "http://localhost:8080",
		LogFormat:   "json",
		SMTP: SMTPConfig{
			Port: 587,
			From: "no-reply@repstack.local",
		},
	}
}

// Load builds a Config from the optional YAML file at path and the given
// flag set. An empty path falls back to the XDG config file, which may be
// absent; a path set explicitly must exist. The DATABASE_URL environment
// variable fills the database URL when nothing else did.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = xdg.DefaultConfigFile()
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		switch {
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, oops.Code("CONFIG_FILE_INVALID").With("path", path).Wrap(err)
		case explicit:
			return Config{}, oops.Code("CONFIG_FILE_MISSING").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores. Unchanged
		// flags are skipped so their empty defaults never mask file values
		// or built-in defaults.
		provider := posflag.ProviderWithValue(flags, ".", k, func(key string, value string) (string, any) {
			if f := flags.Lookup(key); f != nil && !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return cfg, nil
}

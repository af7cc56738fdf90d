// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repstack/repstack/internal/config"
	"github.com/repstack/repstack/pkg/errutil"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repstack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// isolateXDG points the XDG config fallback at an empty directory so the
// host's own repstack config never leaks into a test.
func isolateXDG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func serveFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("database-url", "", "")
	flags.String("http-addr", "", "")
	flags.String("metrics-addr", "", "")
	flags.String("base-url", "", "")
	flags.String("log-format", "", "")
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	isolateXDG(t)

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.SMTP.Host, "SMTP disabled by default")
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
database_url: postgres://repstack@localhost/repstack
http_addr: ":3000"
log_format: text
smtp:
  host: smtp.example.com
  from: coach@repstack.example
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://repstack@localhost/repstack", cfg.DatabaseURL)
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, "coach@repstack.example", cfg.SMTP.From)
	// Values the file does not mention keep their defaults.
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_MISSING")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "{not yaml\n\t::")

	_, err := config.Load(path, nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_INVALID")
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, `
http_addr: ":3000"
base_url: https://file.example
`)

	flags := serveFlags()
	require.NoError(t, flags.Parse([]string{"--http-addr", ":4000"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.HTTPAddr, "changed flag wins over file")
	assert.Equal(t, "https://file.example", cfg.BaseURL, "unchanged flag leaves file value alone")
}

func TestLoad_XDGFallback(t *testing.T) {
	dir := isolateXDG(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "repstack"), 0o700))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "repstack", "config.yaml"),
		[]byte("http_addr: \":7000\"\n"), 0o600))

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
}

func TestLoad_UnchangedFlagsKeepDefaults(t *testing.T) {
	isolateXDG(t)

	flags := serveFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_DatabaseURLFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env@localhost/repstack")
	isolateXDG(t)

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env@localhost/repstack", cfg.DatabaseURL)
}

func TestLoad_ExplicitDatabaseURLBeatsEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env@localhost/repstack")
	path := writeConfigFile(t, "database_url: postgres://file@localhost/repstack\n")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file@localhost/repstack", cfg.DatabaseURL)
}

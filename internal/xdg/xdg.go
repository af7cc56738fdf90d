// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

// Package xdg resolves XDG Base Directory paths for repstack.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "repstack"

// ConfigDir returns the repstack config directory. XDG_CONFIG_HOME wins;
// the fallback is ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultConfigFile returns the path config loading falls back to when no
// file is named explicitly.
func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

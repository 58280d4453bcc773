// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

// Package xdg locates credgate files under the XDG Base Directory layout.
package xdg

import (
	"os"
	"path/filepath"
)

const (
	appName        = "credgate"
	configFileName = "config.yaml"
)

// ConfigDir returns the XDG config directory for credgate.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// ConfigFile returns ConfigDir()/config.yaml if it exists, otherwise "".
func ConfigFile() string {
	path := filepath.Join(ConfigDir(), configFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package xdg resolves PainLog's XDG Base Directory paths.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "painlog"

// ConfigDir returns $XDG_CONFIG_HOME/painlog, falling back to ~/.config/painlog.
func ConfigDir() (string, error) {
	return dir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/painlog, falling back to ~/.local/state/painlog.
func StateDir() (string, error) {
	return dir("XDG_STATE_HOME", ".local", "state")
}

// ConfigFile returns the default configuration file path.
func ConfigFile() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.yaml"), nil
}

// SessionFile returns the path of the persisted sign-in session.
func SessionFile() (string, error) {
	d, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "session.json"), nil
}

func dir(env string, fallback ...string) (string, error) {
	// Relative XDG paths are invalid and ignored.
	if base := os.Getenv(env); base != "" && filepath.IsAbs(base) {
		return filepath.Join(base, appName), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", oops.Code("XDG_NO_HOME").
			With("env", env).
			Errorf("neither %s nor HOME is set", env)
	}
	return filepath.Join(append([]string{home}, append(fallback, appName)...)...), nil
}

// EnsureDir creates path and its parents with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.Code("XDG_MKDIR_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

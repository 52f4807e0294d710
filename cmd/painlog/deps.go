// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/painlog/painlog/internal/auth"
	"github.com/painlog/painlog/internal/config"
	"github.com/painlog/painlog/internal/observability"
	"github.com/painlog/painlog/internal/store"
	"github.com/painlog/painlog/internal/xdg"
)

// Backend is what the auth commands run against.
type Backend struct {
	Provider auth.IdentityProvider
	Profiles auth.ProfileStore
	// Poll rereads the persisted session until ctx ends, so sign-ins made by
	// other processes reach session --watch. Nil disables polling.
	Poll  func(ctx context.Context, interval time.Duration)
	Close func()
}

// Migrator is the part of store.Migrator the migrate command drives.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Pending() ([]store.Migration, error)
	Close() error
}

// ObservabilityServer is the metrics and health server of session --watch.
type ObservabilityServer interface {
	Handle(pattern string, h http.Handler)
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Registry() *prometheus.Registry
}

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// OpenBackend connects the configured provider and profile store.
	// Default: openBackend
	OpenBackend func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error)

	// OpenMigrator opens a migrator for a database URL.
	// Default: store.NewMigrator
	OpenMigrator func(databaseURL string) (Migrator, error)

	// NewObservabilityServer creates the metrics server.
	// Default: observability.NewServer
	NewObservabilityServer func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// ConfigPath returns the default configuration file path.
	// Default: xdg.ConfigFile
	ConfigPath func() (string, error)
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.OpenBackend == nil {
		out.OpenBackend = openBackend
	}
	if out.OpenMigrator == nil {
		out.OpenMigrator = func(url string) (Migrator, error) {
			m, err := store.NewMigrator(url)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	if out.NewObservabilityServer == nil {
		out.NewObservabilityServer = func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, version, ready, logger)
		}
	}
	if out.ConfigPath == nil {
		out.ConfigPath = xdg.ConfigFile
	}
	return &out
}

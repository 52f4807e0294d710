// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/painlog/painlog/internal/auth"
	authpg "github.com/painlog/painlog/internal/auth/postgres"
	"github.com/painlog/painlog/internal/config"
	"github.com/painlog/painlog/internal/identity"
	"github.com/painlog/painlog/internal/identity/firebase"
	"github.com/painlog/painlog/internal/identity/local"
	localpg "github.com/painlog/painlog/internal/identity/local/postgres"
	"github.com/painlog/painlog/internal/store"
	"github.com/painlog/painlog/internal/xdg"
)

// sessionPath resolves the session file, defaulting to the XDG state dir.
func sessionPath(cfg *config.Config) (string, error) {
	if cfg.Session.File != "" {
		return cfg.Session.File, nil
	}
	return xdg.SessionFile()
}

// openBackend connects to PostgreSQL and builds the configured provider.
// Profiles always live in PostgreSQL; accounts do too for the local provider.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	if cfg.Provider == config.ProviderFirebase {
		if err := cfg.RequireFirebase(); err != nil {
			return nil, err
		}
	}
	path, err := sessionPath(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := store.Connect(ctx, cfg.Database.URL, store.ConnectOptions{
		Attempts: cfg.Database.ConnectAttempts,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	var (
		provider auth.IdentityProvider
		tracker  *identity.Tracker
	)
	switch cfg.Provider {
	case config.ProviderFirebase:
		tracker = identity.NewTracker(identity.NewFileSession(path, firebase.ProviderName), logger)
		provider, err = firebase.NewProvider(firebase.Config{
			APIKey:  cfg.Firebase.APIKey,
			BaseURL: cfg.Firebase.BaseURL,
			Timeout: cfg.Firebase.Timeout,
			Logger:  logger,
		}, tracker)
	default:
		tracker = identity.NewTracker(identity.NewFileSession(path, local.ProviderName), logger)
		provider, err = local.NewProvider(localpg.NewAccountRepository(pool), tracker, local.WithLogger(logger))
	}
	if err != nil {
		pool.Close()
		return nil, oops.With("provider", cfg.Provider).Wrap(err)
	}

	logger.DebugContext(ctx, "backend ready", "provider", cfg.Provider, "session_file", path)
	return &Backend{
		Provider: provider,
		Profiles: authpg.NewProfileRepository(pool),
		Poll:     tracker.Poll,
		Close:    pool.Close,
	}, nil
}

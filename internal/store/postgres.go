// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package store connects to PostgreSQL and manages the PainLog schema.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectOptions tunes how Connect waits for the database.
type ConnectOptions struct {
	// Attempts is the maximum number of connection attempts. Zero means 5.
	Attempts uint64
	// InitialBackoff is the first retry delay; later delays grow exponentially.
	// Zero means 250ms.
	InitialBackoff time.Duration
	// MaxBackoff caps each individual delay. Zero means 5s.
	MaxBackoff time.Duration
	Logger     *slog.Logger
}

func (o ConnectOptions) withDefaults() ConnectOptions {
	if o.Attempts == 0 {
		o.Attempts = 5
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 250 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 5 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// pinger is the part of a pool Connect needs to verify a connection.
type pinger interface {
	Ping(ctx context.Context) error
	Close()
}

// Connect opens a pool for databaseURL and pings it, retrying with
// exponential backoff while the server is unreachable. A malformed URL fails
// immediately.
func Connect(ctx context.Context, databaseURL string, opts ConnectOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}

	var pool *pgxpool.Pool
	err = connectWithRetry(ctx, opts, func(ctx context.Context) (pinger, error) {
		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		pool = p
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	opts.withDefaults().Logger.InfoContext(ctx, "database connected",
		"host", cfg.ConnConfig.Host,
		"database", cfg.ConnConfig.Database,
		"max_conns", cfg.MaxConns)
	return pool, nil
}

func connectWithRetry(ctx context.Context, opts ConnectOptions, open func(context.Context) (pinger, error)) error {
	opts = opts.withDefaults()

	backoff := retry.NewExponential(opts.InitialBackoff)
	backoff = retry.WithCappedDuration(opts.MaxBackoff, backoff)
	backoff = retry.WithMaxRetries(opts.Attempts-1, backoff)

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		p, err := open(ctx)
		if err != nil {
			// Pool construction only fails on configuration problems.
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			opts.Logger.WarnContext(ctx, "database not ready, retrying",
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").
			With("operation", "connect").
			With("attempts", attempt).
			Wrap(err)
	}
	return nil
}

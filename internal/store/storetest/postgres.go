// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package storetest starts a migrated PostgreSQL container for integration
// tests.
package storetest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/painlog/painlog/internal/store"
)

// Database is a running, fully migrated PostgreSQL instance.
type Database struct {
	Pool    *pgxpool.Pool
	ConnStr string

	container *postgres.PostgresContainer
}

// Start runs a postgres:16-alpine container and applies every migration.
func Start(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("painlog_test"),
		postgres.WithUsername("painlog"),
		postgres.WithPassword("painlog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, oops.With("operation", "start postgres container").Wrap(err)
	}

	db := &Database{container: container}
	if err := db.init(ctx); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return db, nil
}

func (db *Database) init(ctx context.Context) error {
	connStr, err := db.container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return oops.With("operation", "get connection string").Wrap(err)
	}
	db.ConnStr = connStr

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // test setup
	if err := migrator.Up(); err != nil {
		return err
	}

	pool, err := store.Connect(ctx, connStr, store.ConnectOptions{})
	if err != nil {
		return err
	}
	db.Pool = pool
	return nil
}

// Close closes the pool and terminates the container.
func (db *Database) Close(ctx context.Context) {
	if db.Pool != nil {
		db.Pool.Close()
	}
	_ = db.container.Terminate(ctx)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package postgres stores user profiles in PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/painlog/painlog/internal/auth"
)

// poolIface is the subset of *pgxpool.Pool the repository uses.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProfileRepository implements auth.ProfileStore on the user_profiles table.
type ProfileRepository struct {
	pool poolIface
}

// NewProfileRepository creates a ProfileRepository.
func NewProfileRepository(pool poolIface) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Get returns the profile for id, or an error wrapping auth.ErrNotFound.
func (r *ProfileRepository) Get(ctx context.Context, id string) (*auth.User, error) {
	var u auth.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, created_at
		FROM user_profiles
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PROFILE_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PROFILE_GET_FAILED").
			With("operation", "get profile").
			With("id", id).
			Wrap(err)
	}
	return &u, nil
}

// Set writes user, replacing the email of any existing document with the
// same id. An existing created_at is kept and copied back into user.
func (r *ProfileRepository) Set(ctx context.Context, user *auth.User) error {
	if user == nil || user.ID == "" {
		return oops.Code("PROFILE_SET_FAILED").Errorf("profile id is required")
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_profiles (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			updated_at = now()
		RETURNING created_at
	`, user.ID, user.Email, user.CreatedAt).Scan(&user.CreatedAt)
	if err != nil {
		return oops.Code("PROFILE_SET_FAILED").
			With("operation", "upsert profile").
			With("id", user.ID).
			Wrap(err)
	}
	return nil
}

// Delete removes the profile for id. Deleting a missing profile reports
// auth.ErrNotFound.
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		return oops.Code("PROFILE_DELETE_FAILED").
			With("operation", "delete profile").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PROFILE_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

var _ auth.ProfileStore = (*ProfileRepository)(nil)

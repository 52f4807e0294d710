// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package postgres stores local accounts in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/painlog/painlog/internal/identity/local"
)

type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements local.AccountRepository on the accounts table.
type AccountRepository struct {
	pool poolIface
}

// NewAccountRepository creates an AccountRepository.
func NewAccountRepository(pool poolIface) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, email, password_hash, disabled, failed_attempts, locked_until, created_at, updated_at`

// Create inserts account. A duplicate email reports local.ErrEmailTaken.
func (r *AccountRepository) Create(ctx context.Context, account *local.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		account.ID.String(),
		account.Email,
		account.PasswordHash,
		account.Disabled,
		account.FailedAttempts,
		account.LockedUntil,
		account.CreatedAt,
		account.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("ACCOUNT_EMAIL_TAKEN").
			With("email", account.Email).
			Wrap(local.ErrEmailTaken)
	}
	if err != nil {
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("email", account.Email).
			Wrap(err)
	}
	return nil
}

// GetByEmail finds an account by email, ignoring case.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*local.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("email", email).
			Wrap(local.ErrAccountNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account by email").
			With("email", email).
			Wrap(err)
	}
	return account, nil
}

// Update saves the mutable fields of account.
func (r *AccountRepository) Update(ctx context.Context, account *local.Account) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET
			password_hash = $2,
			disabled = $3,
			failed_attempts = $4,
			locked_until = $5,
			updated_at = $6
		WHERE id = $1
	`,
		account.ID.String(),
		account.PasswordHash,
		account.Disabled,
		account.FailedAttempts,
		account.LockedUntil,
		account.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", "update account").
			With("id", account.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", account.ID.String()).
			Wrap(local.ErrAccountNotFound)
	}
	return nil
}

// scanAccount passes pgx.ErrNoRows through unwrapped.
func scanAccount(row pgx.Row) (*local.Account, error) {
	var (
		idStr string
		a     local.Account
		until *time.Time
	)
	err := row.Scan(&idStr, &a.Email, &a.PasswordHash, &a.Disabled, &a.FailedAttempts, &until, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").Wrap(err)
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").With("id", idStr).Wrap(err)
	}
	a.ID = id
	a.LockedUntil = until
	return &a, nil
}

var _ local.AccountRepository = (*AccountRepository)(nil)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package local

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Account errors.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

// Account is a locally stored credential.
type Account struct {
	ID             ulid.ULID
	Email          string
	PasswordHash   string
	Disabled       bool
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount creates an account with a fresh ID.
func NewAccount(email, passwordHash string, now time.Time) *Account {
	return &Account{
		ID:           ulid.Make(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail trims and lower-cases email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountRepository persists accounts.
type AccountRepository interface {
	// Create stores a new account. Returns ErrEmailTaken when the email is
	// already registered.
	Create(ctx context.Context, account *Account) error

	// GetByEmail finds an account by email, ignoring case. Returns
	// ErrAccountNotFound when none matches.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update saves an existing account.
	Update(ctx context.Context, account *Account) error
}

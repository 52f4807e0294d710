// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

import (
	"context"
	"time"
)

// CreatedAtLayout is the ISO-8601 layout of User.CreatedAt (UTC, milliseconds).
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// User is the application-level profile of an authenticated identity.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// NewUser builds the profile for identity created at now. The identity's
// email wins; fallbackEmail is used when the provider did not report one.
func NewUser(identity *Identity, fallbackEmail string, now time.Time) User {
	email := identity.Email
	if email == "" {
		email = fallbackEmail
	}
	return User{
		ID:        identity.Subject,
		Email:     email,
		CreatedAt: now.UTC().Format(CreatedAtLayout),
	}
}

// ProfileStore persists one User document per identity.
type ProfileStore interface {
	// Get returns the profile stored under id, or ErrNotFound.
	Get(ctx context.Context, id string) (*User, error)

	// Set writes user under user.ID, replacing any existing document.
	Set(ctx context.Context, user *User) error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

import "context"

// Provider failure codes. Identity provider implementations report
// rejections with these codes so a single translation table covers them all.
const (
	CodeUserNotFound            = "auth/user-not-found"
	CodeWrongPassword           = "auth/wrong-password"
	CodeUserDisabled            = "auth/user-disabled"
	CodeInvalidCredential       = "auth/invalid-credential"
	CodeInvalidLoginCredentials = "auth/invalid-login-credentials"
	CodeInvalidEmail            = "auth/invalid-email"
	CodeEmailAlreadyInUse       = "auth/email-already-in-use"
	CodeWeakPassword            = "auth/weak-password"
	CodeTooManyRequests         = "auth/too-many-requests"
	CodeNetworkRequestFailed    = "auth/network-request-failed"
	CodeTimeout                 = "auth/timeout"
	CodeInternalError           = "auth/internal-error"
)

// Identity is an authenticated subject as reported by the identity provider.
type Identity struct {
	// Subject is the provider's stable identifier; it becomes User.ID.
	Subject string
	Email   string
}

// IdentityProvider authenticates credentials and tracks the current session.
type IdentityProvider interface {
	// SignIn authenticates an existing account.
	SignIn(ctx context.Context, email, password string) (*Identity, error)

	// SignUp creates an account and signs it in.
	SignUp(ctx context.Context, email, password string) (*Identity, error)

	// SignOut ends the current session.
	SignOut(ctx context.Context) error

	// OnSessionChange registers fn to be called with the current identity
	// (nil when signed out) once right after subscribing and again on every
	// session change. The returned function removes the registration.
	OnSessionChange(fn func(*Identity)) (unsubscribe func())
}

// ProviderError is a rejection reported by an identity provider.
type ProviderError struct {
	Code    string
	Message string
}

// NewProviderError creates a ProviderError.
func NewProviderError(code, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

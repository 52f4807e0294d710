// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

import (
	"errors"
	"log/slog"
)

// ErrNotFound is returned by a ProfileStore when no profile exists for an id.
var ErrNotFound = errors.New("not found")

// Kind classifies a user-facing authentication failure.
type Kind string

// The closed set of failure kinds.
const (
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindNotFound           Kind = "NOT_FOUND"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindProvider           Kind = "PROVIDER_ERROR"
	KindNetwork            Kind = "NETWORK_ERROR"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindUserNotFound       Kind = "USER_NOT_FOUND"
	KindEmailAlreadyInUse  Kind = "EMAIL_ALREADY_IN_USE"
	KindWeakPassword       Kind = "WEAK_PASSWORD"
	KindInvalidEmail       Kind = "INVALID_EMAIL"
	KindTooManyRequests    Kind = "TOO_MANY_REQUESTS"
)

var allKinds = []Kind{
	KindUnauthorized,
	KindNotFound,
	KindValidation,
	KindProvider,
	KindNetwork,
	KindInvalidCredentials,
	KindUserNotFound,
	KindEmailAlreadyInUse,
	KindWeakPassword,
	KindInvalidEmail,
	KindTooManyRequests,
}

// Kinds returns every defined Kind.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Error is a classified authentication failure. Message is safe to show to
// end users; Details carries opaque diagnostics and is never shown verbatim.
type Error struct {
	Kind    Kind
	Message string
	Details any

	cause error
}

// NewError creates an Error without an underlying cause.
func NewError(kind Kind, message string, details any) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// WrapError creates an Error that keeps cause available to errors.Is/As.
func WrapError(kind Kind, message string, details any, cause error) *Error {
	return &Error{Kind: kind, Message: message, Details: details, cause: cause}
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Unwrap returns the diagnostic cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// LogValue renders the error as a structured group.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", string(e.Kind)),
		slog.String("message", e.Message),
	}
	if e.Details != nil {
		attrs = append(attrs, slog.Any("details", e.Details))
	}
	if e.cause != nil {
		attrs = append(attrs, slog.String("cause", e.cause.Error()))
	}
	return slog.GroupValue(attrs...)
}

// ProviderDetails is attached to PROVIDER_ERROR values produced from an
// unrecognized provider failure.
type ProviderDetails struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// StoreDetails is attached to errors produced from profile store failures.
type StoreDetails struct {
	Operation string `json:"operation"`
	UserID    string `json:"user_id"`
}

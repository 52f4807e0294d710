// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

import (
	"sync"

	"golang.org/x/text/message"

	"github.com/painlog/painlog/internal/i18n"
)

// Catalog keys used by this package.
const (
	keyEmailRequired    = "validation.email_required"
	keyEmailFormat      = "validation.email_format"
	keyPasswordRequired = "validation.password_required"
	keyPasswordTooShort = "validation.password_too_short"
	keyPasswordMismatch = "validation.password_mismatch"
	keyInvalidInput     = "validation.invalid"

	keyUnauthorized       = "error.unauthorized"
	keyNotFound           = "error.not_found"
	keyInvalidCredentials = "error.invalid_credentials"
	keyUserNotFound       = "error.user_not_found"
	keyInvalidEmail       = "error.invalid_email"
	keyEmailAlreadyInUse  = "error.email_already_in_use"
	keyWeakPassword       = "error.weak_password"
	keyTooManyRequests    = "error.too_many_requests"
	keyNetwork            = "error.network"
	keyProvider           = "error.provider"
	keyProfileFetch       = "error.profile_fetch"
	keyProfileSave        = "error.profile_save"
)

// kindKeys maps each kind to its canonical message. Validator failures carry
// a check-specific message instead of the generic VALIDATION_ERROR one.
var kindKeys = map[Kind]string{
	KindValidation:         keyInvalidInput,
	KindUnauthorized:       keyUnauthorized,
	KindNotFound:           keyNotFound,
	KindProvider:           keyProvider,
	KindNetwork:            keyNetwork,
	KindInvalidCredentials: keyInvalidCredentials,
	KindUserNotFound:       keyUserNotFound,
	KindEmailAlreadyInUse:  keyEmailAlreadyInUse,
	KindWeakPassword:       keyWeakPassword,
	KindInvalidEmail:       keyInvalidEmail,
	KindTooManyRequests:    keyTooManyRequests,
}

// Messages renders user-facing text for one locale.
type Messages struct {
	printer *message.Printer
	locale  string
}

var defaultMessages = sync.OnceValue(func() *Messages {
	return NewMessages(i18n.BaseLocale)
})

// DefaultMessages returns the messages for the base (Japanese) locale.
func DefaultMessages() *Messages {
	return defaultMessages()
}

// NewMessages returns messages for the closest supported locale.
func NewMessages(locale string) *Messages {
	p, tag := i18n.Default().Printer(locale)
	return &Messages{printer: p, locale: tag.String()}
}

// Locale returns the locale the messages resolved to.
func (m *Messages) Locale() string {
	return m.locale
}

// Text returns the message stored under key.
func (m *Messages) Text(key string) string {
	return m.printer.Sprintf(key)
}

// ForKind returns the canonical message for kind.
func (m *Messages) ForKind(kind Kind) string {
	key, ok := kindKeys[kind]
	if !ok {
		key = keyProvider
	}
	return m.Text(key)
}

// NewError creates an Error of kind carrying its canonical message.
func (m *Messages) NewError(kind Kind, details any) *Error {
	return NewError(kind, m.ForKind(kind), details)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

import (
	"context"
	"errors"
	"net"
	"strings"
)

// providerKinds is the provider code translation table. Unknown accounts,
// wrong passwords and disabled accounts share one kind so callers cannot
// tell which of them failed.
var providerKinds = map[string]Kind{
	CodeUserNotFound:            KindInvalidCredentials,
	CodeWrongPassword:           KindInvalidCredentials,
	CodeUserDisabled:            KindInvalidCredentials,
	CodeInvalidCredential:       KindInvalidCredentials,
	CodeInvalidLoginCredentials: KindInvalidCredentials,
	CodeInvalidEmail:            KindInvalidEmail,
	CodeEmailAlreadyInUse:       KindEmailAlreadyInUse,
	CodeWeakPassword:            KindWeakPassword,
	CodeTooManyRequests:         KindTooManyRequests,
	CodeNetworkRequestFailed:    KindNetwork,
	CodeTimeout:                 KindNetwork,
}

// networkMarkers are lower-case fragments of raw provider messages that
// indicate a connectivity failure.
var networkMarkers = []string{
	"network",
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"timed out",
	"offline",
	"unreachable",
}

// Translator classifies provider failures into Errors.
type Translator struct {
	messages *Messages
}

// NewTranslator returns a Translator reporting in messages' locale.
func NewTranslator(messages *Messages) *Translator {
	return &Translator{messages: messages}
}

// Translate maps a provider code and raw message to an Error. It always
// returns a non-nil Error; unrecognized codes become PROVIDER_ERROR with the
// original code and message kept in Details.
func (t *Translator) Translate(code, rawMessage string) *Error {
	if kind, ok := providerKinds[code]; ok {
		return t.messages.NewError(kind, nil)
	}
	if looksLikeNetworkFailure(rawMessage) {
		return t.messages.NewError(KindNetwork, ProviderDetails{Code: code, Message: rawMessage})
	}
	return t.messages.NewError(KindProvider, ProviderDetails{Code: code, Message: rawMessage})
}

// FromError classifies an error returned by an IdentityProvider. It returns
// nil only for a nil err.
func (t *Translator) FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var translated *Error
	var providerErr *ProviderError
	var netErr net.Error
	switch {
	case errors.As(err, &providerErr):
		translated = t.Translate(providerErr.Code, providerErr.Message)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		translated = t.messages.NewError(KindNetwork, ProviderDetails{Code: CodeNetworkRequestFailed, Message: err.Error()})
	default:
		translated = t.Translate("", err.Error())
	}
	translated.cause = err
	return translated
}

func looksLikeNetworkFailure(rawMessage string) bool {
	msg := strings.ToLower(rawMessage)
	for _, marker := range networkMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// TranslateProviderError maps a provider code with the default messages.
func TranslateProviderError(code, rawMessage string) *Error {
	return NewTranslator(DefaultMessages()).Translate(code, rawMessage)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the minimum password length accepted at registration.
const MinPasswordLength = 6

// emailPattern requires one @, whitespace-free local and domain parts, and a
// dot inside the domain.
var emailPattern = regexp.MustCompile(`^[^\s\p{Z}@]+@[^\s\p{Z}@]+\.[^\s\p{Z}@]+$`)

// LoginCredentials is the input to Service.Login.
type LoginCredentials struct {
	Email    string
	Password string
}

// RegisterCredentials is the input to Service.Register.
type RegisterCredentials struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// ValidEmail reports whether email is structurally an address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validator checks credentials before they reach the identity provider.
// Checks run in a fixed order and stop at the first failure.
type Validator struct {
	messages *Messages
}

// NewValidator returns a Validator reporting failures in messages' locale.
func NewValidator(messages *Messages) *Validator {
	return &Validator{messages: messages}
}

// Login validates sign-in credentials.
func (v *Validator) Login(c LoginCredentials) Result[LoginCredentials] {
	if key := checkCommon(c.Email, c.Password); key != "" {
		return Fail[LoginCredentials](v.fail(key))
	}
	return Ok(c)
}

// Register validates sign-up credentials.
func (v *Validator) Register(c RegisterCredentials) Result[RegisterCredentials] {
	key := checkCommon(c.Email, c.Password)
	if key == "" && utf8.RuneCountInString(c.Password) < MinPasswordLength {
		key = keyPasswordTooShort
	}
	if key == "" && c.Password != c.ConfirmPassword {
		key = keyPasswordMismatch
	}
	if key != "" {
		return Fail[RegisterCredentials](v.fail(key))
	}
	return Ok(c)
}

func (v *Validator) fail(key string) *Error {
	return NewError(KindValidation, v.messages.Text(key), nil)
}

func checkCommon(email, password string) string {
	switch {
	case strings.TrimSpace(email) == "":
		return keyEmailRequired
	case !ValidEmail(email):
		return keyEmailFormat
	case password == "":
		return keyPasswordRequired
	}
	return ""
}

// ValidateLoginCredentials validates sign-in credentials with the default messages.
func ValidateLoginCredentials(c LoginCredentials) Result[LoginCredentials] {
	return NewValidator(DefaultMessages()).Login(c)
}

// ValidateRegisterCredentials validates sign-up credentials with the default messages.
func ValidateRegisterCredentials(c RegisterCredentials) Result[RegisterCredentials] {
	return NewValidator(DefaultMessages()).Register(c)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painlog/painlog/internal/auth"
)

const (
	msgEmailRequired    = "メールアドレスを入力してください"
	msgEmailFormat      = "メールアドレスの形式が正しくありません"
	msgPasswordRequired = "パスワードを入力してください"
	msgPasswordTooShort = "パスワードは6文字以上で入力してください"
	msgPasswordMismatch = "パスワードが一致しません"
)

func TestValidateLoginCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   auth.LoginCredentials
		wantMsg string
	}{
		{"valid", auth.LoginCredentials{Email: "a@b.co", Password: "x"}, ""},
		{"empty email", auth.LoginCredentials{Email: "", Password: "secret"}, msgEmailRequired},
		{"whitespace email", auth.LoginCredentials{Email: "   ", Password: "secret"}, msgEmailRequired},
		{"email checked before password", auth.LoginCredentials{Email: "", Password: ""}, msgEmailRequired},
		{"no at sign", auth.LoginCredentials{Email: "user.example.com", Password: "secret"}, msgEmailFormat},
		{"no dot in domain", auth.LoginCredentials{Email: "user@example", Password: "secret"}, msgEmailFormat},
		{"space inside", auth.LoginCredentials{Email: "us er@example.com", Password: "secret"}, msgEmailFormat},
		{"format checked before password", auth.LoginCredentials{Email: "bad", Password: ""}, msgEmailFormat},
		{"empty password", auth.LoginCredentials{Email: "user@example.com", Password: ""}, msgPasswordRequired},
		{"short password is fine for login", auth.LoginCredentials{Email: "user@example.com", Password: "1"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auth.ValidateLoginCredentials(tt.creds)
			if tt.wantMsg == "" {
				require.True(t, result.IsOk())
				got, appErr := result.Get()
				assert.Nil(t, appErr)
				assert.Equal(t, tt.creds, got)
				return
			}
			appErr := result.Err()
			require.NotNil(t, appErr)
			assert.Equal(t, auth.KindValidation, appErr.Kind)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Nil(t, appErr.Details)
		})
	}
}

func TestValidateRegisterCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   auth.RegisterCredentials
		wantMsg string
	}{
		{"valid", auth.RegisterCredentials{Email: "user@example.com", Password: "secret", ConfirmPassword: "secret"}, ""},
		{"empty email", auth.RegisterCredentials{Password: "secret", ConfirmPassword: "secret"}, msgEmailRequired},
		{"bad email", auth.RegisterCredentials{Email: "nope", Password: "secret", ConfirmPassword: "secret"}, msgEmailFormat},
		{"empty password", auth.RegisterCredentials{Email: "user@example.com"}, msgPasswordRequired},
		{"five characters", auth.RegisterCredentials{Email: "user@example.com", Password: "12345", ConfirmPassword: "12345"}, msgPasswordTooShort},
		{"six characters", auth.RegisterCredentials{Email: "user@example.com", Password: "123456", ConfirmPassword: "123456"}, ""},
		{"length counts characters not bytes", auth.RegisterCredentials{Email: "user@example.com", Password: "ぱすわーど", ConfirmPassword: "ぱすわーど"}, msgPasswordTooShort},
		{"length checked before mismatch", auth.RegisterCredentials{Email: "user@example.com", Password: "123", ConfirmPassword: "456"}, msgPasswordTooShort},
		{"mismatch", auth.RegisterCredentials{Email: "user@example.com", Password: "secret1", ConfirmPassword: "secret2"}, msgPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auth.ValidateRegisterCredentials(tt.creds)
			if tt.wantMsg == "" {
				require.True(t, result.IsOk())
				return
			}
			appErr := result.Err()
			require.NotNil(t, appErr)
			assert.Equal(t, auth.KindValidation, appErr.Kind)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestValidator_IsDeterministic(t *testing.T) {
	creds := auth.RegisterCredentials{Email: "user@example.com", Password: "12345", ConfirmPassword: "12345"}

	first := auth.ValidateRegisterCredentials(creds).Err()
	second := auth.ValidateRegisterCredentials(creds).Err()

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.Equal(t, "12345", creds.Password, "input must not be modified")
}

func TestValidator_EnglishMessages(t *testing.T) {
	v := auth.NewValidator(auth.NewMessages("en"))

	appErr := v.Login(auth.LoginCredentials{}).Err()

	require.NotNil(t, appErr)
	assert.Equal(t, "Please enter your email address.", appErr.Message)
}

func TestValidEmail(t *testing.T) {
	assert.True(t, auth.ValidEmail("a@b.c"))
	assert.True(t, auth.ValidEmail("first.last+tag@sub.example.co.jp"))
	assert.False(t, auth.ValidEmail("a@@b.c"))
	assert.False(t, auth.ValidEmail("@b.c"))
	assert.False(t, auth.ValidEmail("a@b."))
	assert.False(t, auth.ValidEmail(strings.Repeat(" ", 3)))
	assert.False(t, auth.ValidEmail("a@b　.c"))
}

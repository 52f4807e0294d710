// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painlog/painlog/internal/auth"
)

func TestKinds(t *testing.T) {
	kinds := auth.Kinds()

	assert.Len(t, kinds, 11)
	for _, k := range kinds {
		assert.True(t, k.Valid(), k.String())
	}
	assert.False(t, auth.Kind("SOMETHING_ELSE").Valid())

	kinds[0] = "mutated"
	assert.Equal(t, auth.KindUnauthorized, auth.Kinds()[0])
}

func TestKind_WireValues(t *testing.T) {
	assert.Equal(t, "UNAUTHORIZED", string(auth.KindUnauthorized))
	assert.Equal(t, "VALIDATION_ERROR", string(auth.KindValidation))
	assert.Equal(t, "PROVIDER_ERROR", string(auth.KindProvider))
	assert.Equal(t, "NETWORK_ERROR", string(auth.KindNetwork))
	assert.Equal(t, "INVALID_CREDENTIALS", string(auth.KindInvalidCredentials))
	assert.Equal(t, "EMAIL_ALREADY_IN_USE", string(auth.KindEmailAlreadyInUse))
	assert.Equal(t, "TOO_MANY_REQUESTS", string(auth.KindTooManyRequests))
}

func TestError_ErrorString(t *testing.T) {
	err := auth.NewError(auth.KindWeakPassword, "too weak", nil)
	assert.Equal(t, "WEAK_PASSWORD: too weak", err.Error())
}

func TestError_IsMatchesKind(t *testing.T) {
	err := auth.NewError(auth.KindNetwork, "offline", nil)

	assert.ErrorIs(t, err, auth.NewError(auth.KindNetwork, "different text", nil))
	assert.NotErrorIs(t, err, auth.NewError(auth.KindProvider, "offline", nil))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := auth.WrapError(auth.KindProvider, "save failed", nil, cause)

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, auth.NewError(auth.KindProvider, "x", nil).Unwrap())
}

func TestError_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := auth.WrapError(auth.KindProvider, "save failed",
		auth.StoreDetails{Operation: "set profile", UserID: "uid-1"}, errors.New("disk full"))
	logger.Info("test", "error", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	group, ok := entry["error"].(map[string]any)
	require.True(t, ok, "error should render as a group")
	assert.Equal(t, "PROVIDER_ERROR", group["kind"])
	assert.Equal(t, "save failed", group["message"])
	assert.Equal(t, "disk full", group["cause"])

	details, ok := group["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "set profile", details["operation"])
	assert.Equal(t, "uid-1", details["user_id"])
}

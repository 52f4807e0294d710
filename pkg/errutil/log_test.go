// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painlog/painlog/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("TEST_ERROR").
		With("key", "value").
		Errorf("something failed")

	errutil.LogError(logger, "operation failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Equal(t, "operation failed", logEntry["msg"])
	assert.Equal(t, "TEST_ERROR", logEntry["code"])
	assert.Contains(t, logEntry["error"], "something failed")
}

func TestLogError_LogValuerWrappingOops(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	cause := oops.Code("PROFILE_GET_FAILED").Errorf("db down")
	errutil.LogError(logger, "failed", wrappingValuer{cause: cause})

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	_, grouped := logEntry["error"].(map[string]any)
	assert.True(t, grouped)
	assert.Nil(t, logEntry["code"])
}

type wrappingValuer struct{ cause error }

func (w wrappingValuer) Error() string { return "wrapped: " + w.cause.Error() }
func (w wrappingValuer) Unwrap() error { return w.cause }

func (w wrappingValuer) LogValue() slog.Value {
	return slog.GroupValue(slog.String("cause", w.cause.Error()))
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := errors.New("standard error")

	errutil.LogError(logger, "operation failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Contains(t, logEntry["error"], "standard error")
}

func TestLogError_ExtraAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "login failed", errors.New("boom"), "email", "a@example.com")

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "a@example.com", logEntry["email"])
}

type valuerError struct{}

func (valuerError) Error() string { return "valuer" }

func (valuerError) LogValue() slog.Value {
	return slog.GroupValue(slog.String("kind", "NETWORK_ERROR"))
}

func TestLogError_LogValuerWins(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "failed", valuerError{})

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	group, ok := logEntry["error"].(map[string]any)
	require.True(t, ok, "expected grouped error attribute, got %v", logEntry["error"])
	assert.Equal(t, "NETWORK_ERROR", group["kind"])
}

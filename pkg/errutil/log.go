// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package errutil provides helpers for logging and asserting structured errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code and context.
// Errors that render themselves (slog.LogValuer) are logged as-is so their
// own attributes win over any oops cause they wrap.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	LogErrorContext(context.Background(), logger, msg, err, attrs...)
}

// LogErrorContext is LogError with a context, so trace ids reach the handler.
func LogErrorContext(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...any) {
	// oops errors are LogValuers too; they take the flattened path below.
	if _, isOops := err.(oops.OopsError); !isOops {
		if _, ok := err.(slog.LogValuer); ok {
			logger.ErrorContext(ctx, msg, append([]any{"error", err}, attrs...)...)
			return
		}
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		fields := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			fields = append(fields, "code", code)
		}
		if oopsCtx := oopsErr.Context(); len(oopsCtx) > 0 {
			fields = append(fields, "context", oopsCtx)
		}
		logger.ErrorContext(ctx, msg, append(fields, attrs...)...)
		return
	}
	logger.ErrorContext(ctx, msg, append([]any{"error", err}, attrs...)...)
}

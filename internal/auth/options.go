// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/painlog/painlog/internal/auth"

type options struct {
	logger   *slog.Logger
	messages *Messages
	metrics  *Metrics
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures a Service or a SessionObserver.
type Option func(*options)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMessages sets the locale of user-facing messages. Defaults to DefaultMessages().
func WithMessages(messages *Messages) Option {
	return func(o *options) { o.messages = messages }
}

// WithMetrics enables outcome counters.
func WithMetrics(metrics *Metrics) Option {
	return func(o *options) { o.metrics = metrics }
}

// WithTracer sets the tracer. Defaults to the global otel tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithClock sets the clock used to stamp new profiles.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   slog.Default(),
		messages: DefaultMessages(),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

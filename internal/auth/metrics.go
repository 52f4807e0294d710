// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package auth

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	outcomeSuccess = "success"

	sessionSignedIn  = "signed_in"
	sessionSignedOut = "signed_out"
	sessionError     = "error"
)

// Metrics counts authentication outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Attempts       *prometheus.CounterVec
	SessionUpdates *prometheus.CounterVec
}

// NewMetrics creates and registers the auth metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "painlog_auth_attempts_total",
				Help: "Total number of authentication operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		SessionUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "painlog_session_updates_total",
				Help: "Total number of published session states by state",
			},
			[]string{"state"},
		),
	}

	reg.MustRegister(m.Attempts)
	reg.MustRegister(m.SessionUpdates)

	return m
}

func (m *Metrics) recordAttempt(operation string, err *Error) {
	if m == nil {
		return
	}
	outcome := outcomeSuccess
	if err != nil {
		outcome = strings.ToLower(string(err.Kind))
	}
	m.Attempts.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) recordSession(state string) {
	if m == nil {
		return
	}
	m.SessionUpdates.WithLabelValues(state).Inc()
}

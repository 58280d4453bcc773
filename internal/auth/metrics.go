// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors for authentication and tokens.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Attempts      *prometheus.CounterVec
	AuditFailures prometheus.Counter
	TokensIssued  *prometheus.CounterVec
	TokensRedeem  *prometheus.CounterVec
	TokensSwept   prometheus.Counter
}

// NewMetrics creates and registers the auth collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credgate_auth_attempts_total",
				Help: "Total number of authentication attempts by outcome",
			},
			[]string{"outcome"},
		),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credgate_auth_audit_failures_total",
			Help: "Total number of login failure audit records that could not be written",
		}),
		TokensIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credgate_tokens_issued_total",
				Help: "Total number of tokens issued by kind",
			},
			[]string{"kind"},
		),
		TokensRedeem: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credgate_token_redemptions_total",
				Help: "Total number of token redemption attempts by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		TokensSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credgate_tokens_swept_total",
			Help: "Total number of expired tokens deleted by the sweeper",
		}),
	}

	reg.MustRegister(m.Attempts, m.AuditFailures, m.TokensIssued, m.TokensRedeem, m.TokensSwept)
	return m
}

func (m *Metrics) attempt(outcome string) {
	if m != nil {
		m.Attempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) auditFailure() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}

func (m *Metrics) issued(kind string) {
	if m != nil {
		m.TokensIssued.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) redeemed(kind, outcome string) {
	if m != nil {
		m.TokensRedeem.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) swept(n int64) {
	if m != nil && n > 0 {
		m.TokensSwept.Add(float64(n))
	}
}

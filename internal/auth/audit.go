// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventLoginFailure is the audit classification of a rejected login.
const EventLoginFailure = "login_failure"

// RequestContext describes the request that carried a credential.
type RequestContext struct {
	RequestID  string
	RemoteAddr string
	UserAgent  string
	// Secure is true when the request arrived over TLS.
	Secure bool
}

// LoginFailure is one audit record for a rejected login attempt.
type LoginFailure struct {
	ID         ulid.ULID
	AccountID  *ulid.ULID
	Identifier string
	Request    RequestContext
	Reason     FailureReason
	OccurredAt time.Time
}

// Event returns the audit classification.
func (f LoginFailure) Event() string { return EventLoginFailure }

// AuditSink receives login failure records. Implementations may fail; the
// authenticator logs the error and carries on.
type AuditSink interface {
	RecordLoginFailure(ctx context.Context, failure LoginFailure) error
}

// SlogAuditSink writes login failures to a structured logger.
type SlogAuditSink struct {
	logger *slog.Logger
}

// NewSlogAuditSink creates a SlogAuditSink. A nil logger uses slog.Default().
func NewSlogAuditSink(logger *slog.Logger) *SlogAuditSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuditSink{logger: logger}
}

// RecordLoginFailure logs the failure at warn level.
func (s *SlogAuditSink) RecordLoginFailure(ctx context.Context, failure LoginFailure) error {
	accountID := ""
	if failure.AccountID != nil {
		accountID = failure.AccountID.String()
	}
	s.logger.WarnContext(ctx, "login failed",
		"event", EventLoginFailure,
		"audit_id", failure.ID.String(),
		"account_id", accountID,
		"identifier", failure.Identifier,
		"reason", string(failure.Reason),
		"request_id", failure.Request.RequestID,
		"remote_addr", failure.Request.RemoteAddr,
		"user_agent", failure.Request.UserAgent,
		"secure", failure.Request.Secure,
	)
	return nil
}

// AuditSinks fans a record out to several sinks. Every sink is called; their
// errors are joined.
type AuditSinks []AuditSink

// RecordLoginFailure implements AuditSink.
func (s AuditSinks) RecordLoginFailure(ctx context.Context, failure LoginFailure) error {
	var errs []error
	for _, sink := range s {
		if err := sink.RecordLoginFailure(ctx, failure); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ AuditSink = (*SlogAuditSink)(nil)
	_ AuditSink = AuditSinks(nil)
)

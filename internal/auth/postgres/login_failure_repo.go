// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package postgres

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/credgate/credgate/internal/auth"
)

// LoginFailureRepository persists login failure audit records. It
// implements auth.AuditSink.
type LoginFailureRepository struct {
	pool poolIface
}

// NewLoginFailureRepository creates a new LoginFailureRepository.
func NewLoginFailureRepository(pool poolIface) *LoginFailureRepository {
	return &LoginFailureRepository{pool: pool}
}

// RecordLoginFailure inserts one audit record.
func (r *LoginFailureRepository) RecordLoginFailure(ctx context.Context, failure auth.LoginFailure) error {
	var accountID *string
	if failure.AccountID != nil {
		accountID = nullable(failure.AccountID.String())
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO login_failures
			(id, account_id, identifier, reason, request_id, remote_addr, user_agent, secure, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, failure.ID.String(), accountID, failure.Identifier, string(failure.Reason),
		failure.Request.RequestID, failure.Request.RemoteAddr, failure.Request.UserAgent,
		failure.Request.Secure, failure.OccurredAt)
	if err != nil {
		return oops.Code("AUDIT_WRITE_FAILED").
			With("operation", "insert login_failure").
			With("audit_id", failure.ID.String()).
			Wrap(err)
	}
	return nil
}

// CountSince returns how many failures were recorded for identifier at or
// after since. Identifiers are compared case-insensitively.
func (r *LoginFailureRepository) CountSince(ctx context.Context, identifier string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_failures
		WHERE LOWER(identifier) = LOWER($1) AND occurred_at >= $2
	`, identifier, since).Scan(&count)
	if err != nil {
		return 0, oops.Code("AUDIT_QUERY_FAILED").
			With("operation", "count login_failures").
			Wrap(err)
	}
	return count, nil
}

// ListByAccount returns the most recent failures for an account, newest first.
func (r *LoginFailureRepository) ListByAccount(ctx context.Context, accountID ulid.ULID, limit int) ([]auth.LoginFailure, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, identifier, reason, request_id, remote_addr, user_agent, secure, occurred_at
		FROM login_failures
		WHERE account_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, accountID.String(), limit)
	if err != nil {
		return nil, oops.Code("AUDIT_QUERY_FAILED").
			With("operation", "list login_failures").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var failures []auth.LoginFailure
	for rows.Next() {
		var (
			idStr  string
			reason string
			f      auth.LoginFailure
		)
		if err := rows.Scan(&idStr, &f.Identifier, &reason, &f.Request.RequestID,
			&f.Request.RemoteAddr, &f.Request.UserAgent, &f.Request.Secure, &f.OccurredAt); err != nil {
			return nil, oops.Code("AUDIT_SCAN_FAILED").Wrap(err)
		}
		if f.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.Code("AUDIT_INVALID_ID").With("id", idStr).Wrap(err)
		}
		id := accountID
		f.AccountID = &id
		f.Reason = auth.FailureReason(reason)
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("AUDIT_QUERY_FAILED").Wrap(err)
	}
	return failures, nil
}

// Compile-time interface check.
var _ auth.AuditSink = (*LoginFailureRepository)(nil)

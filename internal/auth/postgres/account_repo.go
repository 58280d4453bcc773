// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/credgate/credgate/internal/auth"
)

const accountColumns = `id, email, hasher_id, password_hash, password_salt, verified_at, created_at`

// AccountRepository implements auth.AccountStore using PostgreSQL. Emails
// are matched case-insensitively.
type AccountRepository struct {
	pool poolIface
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool poolIface) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create stores a new account. An email already in use, ignoring case,
// fails with auth.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, email, hasher_id, password_hash, password_salt, verified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, account.ID.String(), account.Email, account.Password.HasherID, account.Password.Hash,
		nullable(account.Password.Salt), account.VerifiedAt, account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_EXISTS").
				With("email", account.Email).
				Wrap(auth.ErrAccountExists)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("account_id", account.ID.String()).
			Wrap(err)
	}
	return nil
}

// FindByIdentifier retrieves the account whose email matches identifier.
func (r *AccountRepository) FindByIdentifier(ctx context.Context, identifier string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, strings.TrimSpace(identifier))

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdatePassword replaces the stored password record.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, password auth.StoredPasswordInfo) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET hasher_id = $2, password_hash = $3, password_salt = $4, updated_at = NOW()
		WHERE id = $1
	`, id.String(), password.HasherID, password.Hash, nullable(password.Salt))
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", "update password").
			With("account_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("account_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// MarkVerified sets verified_at. An already verified account keeps its
// original timestamp.
func (r *AccountRepository) MarkVerified(ctx context.Context, id ulid.ULID, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET verified_at = COALESCE(verified_at, $2), updated_at = NOW()
		WHERE id = $1
	`, id.String(), at)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", "mark verified").
			With("account_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("account_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		idStr      string
		account    auth.Account
		salt       *string
		verifiedAt *time.Time
	)

	err := row.Scan(&idStr, &account.Email, &account.Password.HasherID, &account.Password.Hash,
		&salt, &verifiedAt, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}

	account.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("operation", "parse account id").
			With("id", idStr).
			Wrap(err)
	}
	if salt != nil {
		account.Password.Salt = *salt
	}
	account.VerifiedAt = verifiedAt
	return &account, nil
}

// Compile-time interface check.
var _ auth.AccountStore = (*AccountRepository)(nil)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/credgate/credgate/internal/auth"
)

// TokenRepository implements auth.TokenStore using PostgreSQL. Only the
// SHA-256 hash of a token id is persisted.
type TokenRepository struct {
	pool poolIface
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(pool poolIface) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Save stores a new token.
func (r *TokenRepository) Save(ctx context.Context, token *auth.Token) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tokens (id_hash, email, is_sign_up, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, auth.HashTokenID(token.ID), token.Email, token.IsSignUp, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("TOKEN_ID_CONFLICT").
				With("kind", token.Kind()).
				Wrap(err)
		}
		return oops.Code("TOKEN_SAVE_FAILED").
			With("operation", "insert token").
			With("kind", token.Kind()).
			Wrap(err)
	}
	return nil
}

// Find retrieves a token without consuming it.
func (r *TokenRepository) Find(ctx context.Context, id string) (*auth.Token, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT email, is_sign_up, created_at, expires_at
		FROM tokens
		WHERE id_hash = $1
	`, auth.HashTokenID(id))

	return scanToken(row, id)
}

// Consume deletes the token of the given kind and returns it. The delete is
// a single statement, so concurrent redemptions of one id see exactly one
// success.
func (r *TokenRepository) Consume(ctx context.Context, id string, isSignUp bool) (*auth.Token, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM tokens
		WHERE id_hash = $1 AND is_sign_up = $2
		RETURNING email, is_sign_up, created_at, expires_at
	`, auth.HashTokenID(id), isSignUp)

	return scanToken(row, id)
}

// DeleteByEmail removes every token issued to email.
func (r *TokenRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM tokens WHERE LOWER(email) = LOWER($1)
	`, email)
	if err != nil {
		return oops.Code("TOKEN_DELETE_FAILED").
			With("operation", "delete tokens by email").
			Wrap(err)
	}
	// Deleting nothing is a valid state.
	return nil
}

// DeleteExpired removes tokens expired at now and returns the count.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM tokens WHERE expires_at <= $1
	`, now)
	if err != nil {
		return 0, oops.Code("TOKEN_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

func scanToken(row pgx.Row, id string) (*auth.Token, error) {
	token := auth.Token{ID: id}
	err := row.Scan(&token.Email, &token.IsSignUp, &token.CreatedAt, &token.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TOKEN_SCAN_FAILED").
			With("operation", "scan token").
			Wrap(err)
	}
	return &token, nil
}

// Compile-time interface check.
var _ auth.TokenStore = (*TokenRepository)(nil)

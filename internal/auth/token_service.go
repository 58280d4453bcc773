// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/credgate/credgate/internal/policy"
	"github.com/credgate/credgate/pkg/errutil"
)

// TokenService issues and redeems sign-up and password reset tokens.
// Delivering the token to the user (email) is the caller's job.
type TokenService struct {
	accounts AccountStore
	tokens   TokenStore
	registry *HasherRegistry
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *Metrics
	clock    func() time.Time
}

// NewTokenService creates a TokenService. Tokens live for pol.TokenDuration.
func NewTokenService(
	accounts AccountStore,
	tokens TokenStore,
	registry *HasherRegistry,
	pol policy.Policy,
	opts ...Option,
) (*TokenService, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("account store is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("token store is required")
	}
	if registry == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("hasher registry is required")
	}
	if pol.TokenDuration <= 0 {
		return nil, oops.Code("AUTH_INVALID_CONFIG").
			With("token_duration", pol.TokenDuration.String()).
			Errorf("token duration must be positive")
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &TokenService{
		accounts: accounts,
		tokens:   tokens,
		registry: registry,
		ttl:      pol.TokenDuration,
		logger:   o.logger,
		metrics:  o.metrics,
		clock:    o.clock,
	}, nil
}

// IssueSignUp creates an account confirmation token for email. It fails with
// ErrAccountExists when the email already belongs to an account; callers that
// must not reveal this should send a notice to that address instead.
func (s *TokenService) IssueSignUp(ctx context.Context, email string) (*Token, error) {
	email = strings.TrimSpace(email)

	_, err := s.accounts.FindByIdentifier(ctx, email)
	switch {
	case err == nil:
		return nil, oops.Code("TOKEN_ACCOUNT_EXISTS").
			With("email", email).
			Wrap(ErrAccountExists)
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("TOKEN_ISSUE_FAILED").
			With("operation", "FindByIdentifier").
			Wrap(err)
	}

	return s.issue(ctx, email, true)
}

// IssueReset creates a password reset token for email. When no account
// exists it returns (nil, nil) so callers respond identically either way.
func (s *TokenService) IssueReset(ctx context.Context, email string) (*Token, error) {
	email = strings.TrimSpace(email)

	if _, err := s.accounts.FindByIdentifier(ctx, email); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("TOKEN_ISSUE_FAILED").
			With("operation", "FindByIdentifier").
			Wrap(err)
	}

	return s.issue(ctx, email, false)
}

func (s *TokenService) issue(ctx context.Context, email string, isSignUp bool) (*Token, error) {
	token, err := NewToken(email, isSignUp, s.ttl, s.clock())
	if err != nil {
		return nil, oops.Code("TOKEN_ISSUE_FAILED").
			With("operation", "NewToken").
			Wrap(err)
	}

	if err := s.tokens.Save(ctx, token); err != nil {
		return nil, oops.Code("TOKEN_ISSUE_FAILED").
			With("operation", "Save").
			With("kind", token.Kind()).
			Wrap(err)
	}

	s.metrics.issued(token.Kind())
	s.logger.InfoContext(ctx, "token issued",
		"kind", token.Kind(),
		"email", email,
		"expires_at", token.ExpiresAt)
	return token, nil
}

// RedeemSignUp consumes a sign-up token and returns it. The caller creates
// or activates the account for token.Email.
func (s *TokenService) RedeemSignUp(ctx context.Context, id string) (*Token, error) {
	return s.redeem(ctx, id, true)
}

// ResetPassword consumes a reset token and stores newPassword, hashed with
// the default hasher, on the token's account. Remaining tokens for the
// account are then removed.
//
// The password is hashed before the token is consumed, so only a store
// failure after consumption can use up the token without changing the
// password; the user then has to request a new reset.
func (s *TokenService) ResetPassword(ctx context.Context, id, newPassword string) error {
	if newPassword == "" {
		return oops.Code("RESET_PASSWORD_EMPTY").Errorf("new password cannot be empty")
	}

	stored, err := s.registry.Default().Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "Hash").
			Wrap(err)
	}

	token, err := s.redeem(ctx, id, false)
	if err != nil {
		return err
	}

	account, err := s.accounts.FindByIdentifier(ctx, token.Email)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "FindByIdentifier").
			With("email", token.Email).
			Wrap(err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, stored); err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "UpdatePassword").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	// The password is already updated; leftover tokens will also be swept on expiry.
	if err := s.tokens.DeleteByEmail(ctx, token.Email); err != nil {
		errutil.LogWarn(ctx, s.logger, "best-effort token cleanup failed", err)
	}

	s.logger.InfoContext(ctx, "password reset", "account_id", account.ID.String())
	return nil
}

// ConfirmSignUp redeems a sign-up token and marks the existing account for
// its email as verified. Use it when accounts are created before
// confirmation; otherwise call RedeemSignUp and create the account.
func (s *TokenService) ConfirmSignUp(ctx context.Context, id string) (*Account, error) {
	token, err := s.redeem(ctx, id, true)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByIdentifier(ctx, token.Email)
	if err != nil {
		return nil, oops.Code("SIGNUP_CONFIRM_FAILED").
			With("operation", "FindByIdentifier").
			With("email", token.Email).
			Wrap(err)
	}

	now := s.clock()
	if err := s.accounts.MarkVerified(ctx, account.ID, now); err != nil {
		return nil, oops.Code("SIGNUP_CONFIRM_FAILED").
			With("operation", "MarkVerified").
			With("account_id", account.ID.String()).
			Wrap(err)
	}
	account.VerifiedAt = &now
	return account, nil
}

func (s *TokenService) redeem(ctx context.Context, id string, isSignUp bool) (*Token, error) {
	kind := TokenKindReset
	if isSignUp {
		kind = TokenKindSignUp
	}

	if id == "" {
		s.metrics.redeemed(kind, "invalid")
		return nil, oops.Code(CodeTokenInvalid).Wrap(ErrTokenInvalid)
	}

	token, err := s.tokens.Consume(ctx, id, isSignUp)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.redeemed(kind, "invalid")
			return nil, oops.Code(CodeTokenInvalid).Wrap(ErrTokenInvalid)
		}
		return nil, oops.Code("TOKEN_REDEEM_FAILED").
			With("operation", "Consume").
			With("kind", kind).
			Wrap(err)
	}

	if token.IsExpiredAt(s.clock()) {
		s.metrics.redeemed(kind, "expired")
		return nil, oops.Code(CodeTokenExpired).
			With("expired_at", token.ExpiresAt).
			Wrap(ErrTokenExpired)
	}

	s.metrics.redeemed(kind, "ok")
	return token, nil
}

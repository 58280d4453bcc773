// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/samber/oops"
)

// TokenIDBytes is the number of random bytes in a token id (64 hex chars).
const TokenIDBytes = 32

// Token kinds, used in logs and metrics.
const (
	TokenKindSignUp = "signup"
	TokenKindReset  = "reset"
)

// Token is a single-use, time-bounded reference that authorizes a sign-up
// confirmation or a password reset for Email.
type Token struct {
	// ID is the value handed to the user. Stores keep only HashTokenID(ID).
	ID        string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsSignUp  bool
}

// NewToken creates a token with a fresh random id that expires ttl after now.
func NewToken(email string, isSignUp bool, ttl time.Duration, now time.Time) (*Token, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, oops.Code("TOKEN_INVALID_EMAIL").Errorf("token email cannot be empty")
	}
	if ttl <= 0 {
		return nil, oops.Code("TOKEN_INVALID_TTL").
			With("ttl", ttl.String()).
			Errorf("token lifetime must be positive")
	}

	id, err := GenerateTokenID()
	if err != nil {
		return nil, err
	}

	return &Token{
		ID:        id,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		IsSignUp:  isSignUp,
	}, nil
}

// Kind returns TokenKindSignUp or TokenKindReset.
func (t *Token) Kind() string {
	if t.IsSignUp {
		return TokenKindSignUp
	}
	return TokenKindReset
}

// IsExpiredAt reports whether the token is expired at now. A token expires
// at ExpiresAt exactly.
func (t *Token) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsExpired reports whether the token is expired by the wall clock.
func (t *Token) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// StateAt returns TokenActive or TokenExpired. Redeemed and Deleted are
// never observed on a Token value: a store that has consumed or removed a
// token returns ErrNotFound for it.
func (t *Token) StateAt(now time.Time) TokenState {
	if t.IsExpiredAt(now) {
		return TokenExpired
	}
	return TokenActive
}

// TokenState is a step in a token's lifecycle:
//
//	Active -> Expired -> Deleted
//	Active -> Redeemed -> Deleted
type TokenState int

// Token states.
const (
	TokenActive TokenState = iota
	TokenExpired
	TokenRedeemed
	TokenDeleted
)

func (s TokenState) String() string {
	switch s {
	case TokenActive:
		return "active"
	case TokenExpired:
		return "expired"
	case TokenRedeemed:
		return "redeemed"
	case TokenDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// GenerateTokenID returns a hex-encoded random token id.
func GenerateTokenID() (string, error) {
	b := make([]byte, TokenIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").Wrap(err)
	}
	return hex.EncodeToString(b), nil
}

// HashTokenID returns the hex SHA-256 digest stores use as the lookup key,
// so a leaked table cannot be replayed.
func HashTokenID(id string) string {
	h := sha256.Sum256([]byte(id))
	return hex.EncodeToString(h[:])
}

// TokenStore persists tokens. Consume must be atomic: of any number of
// concurrent calls for the same id, at most one returns the token.
type TokenStore interface {
	// Save stores a new token.
	Save(ctx context.Context, token *Token) error

	// Find returns the token without consuming it, or ErrNotFound.
	Find(ctx context.Context, id string) (*Token, error)

	// Consume removes and returns the token of the given kind, or ErrNotFound
	// if it does not exist, was already consumed, or is of the other kind.
	Consume(ctx context.Context, id string, isSignUp bool) (*Token, error)

	// DeleteByEmail removes every token issued for email.
	DeleteByEmail(ctx context.Context, email string) error

	// DeleteExpired removes tokens with ExpiresAt <= now and returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

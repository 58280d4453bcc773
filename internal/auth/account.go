// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// StoredPasswordInfo describes a persisted password hash and the strategy
// that produced it. Salt is only used by strategies that keep it outside
// the encoded hash.
type StoredPasswordInfo struct {
	HasherID string
	Hash     string
	Salt     string
}

// Account is the part of a user record the authenticator reads.
type Account struct {
	ID         ulid.ULID
	Email      string
	Password   StoredPasswordInfo
	VerifiedAt *time.Time
	CreatedAt  time.Time
}

// Identity is the result of a successful authentication.
type Identity struct {
	AccountID  ulid.ULID
	Identifier string
}

// AccountLookup finds accounts by login identifier.
type AccountLookup interface {
	// FindByIdentifier returns ErrNotFound when no account matches.
	FindByIdentifier(ctx context.Context, identifier string) (*Account, error)
}

// AccountStore extends AccountLookup with the writes needed by token flows.
type AccountStore interface {
	AccountLookup

	// UpdatePassword replaces the stored password for the account.
	UpdatePassword(ctx context.Context, id ulid.ULID, password StoredPasswordInfo) error

	// MarkVerified records that the account's email was confirmed.
	MarkVerified(ctx context.Context, id ulid.ULID, at time.Time) error
}

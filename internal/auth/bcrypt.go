// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher implements PasswordHasher using bcrypt. The salt and cost are
// part of the encoded hash.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. A cost outside bcrypt's accepted
// range falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// ID returns "bcrypt".
func (h *BcryptHasher) ID() string { return HasherBcrypt }

// Hash generates a salted bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (StoredPasswordInfo, error) {
	if password == "" {
		return StoredPasswordInfo{}, ErrEmptyPassword
	}
	encoded, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return StoredPasswordInfo{}, oops.Code("AUTH_HASH_FAILED").
			With("hasher", HasherBcrypt).
			Wrap(err)
	}
	return StoredPasswordInfo{HasherID: HasherBcrypt, Hash: string(encoded)}, nil
}

// Verify compares the password with the bcrypt hash. bcrypt compares in
// constant time internally.
func (h *BcryptHasher) Verify(password string, stored StoredPasswordInfo) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored.Hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, oops.Code("AUTH_INVALID_HASH").
			With("hasher", HasherBcrypt).
			Wrap(err)
	}
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/samber/oops"
)

const sha256SaltLen = 16

// SHA256Hasher verifies legacy records stored as hex(sha256(salt || password))
// with the salt kept in StoredPasswordInfo.Salt. It exists so accounts created
// before the move to adaptive hashes keep working; new accounts should use
// the configured default.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// ID returns "sha256".
func (h *SHA256Hasher) ID() string { return HasherSHA256 }

// Hash produces a salted SHA-256 record.
func (h *SHA256Hasher) Hash(password string) (StoredPasswordInfo, error) {
	if password == "" {
		return StoredPasswordInfo{}, ErrEmptyPassword
	}
	salt := make([]byte, sha256SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return StoredPasswordInfo{}, oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}
	saltHex := hex.EncodeToString(salt)
	return StoredPasswordInfo{
		HasherID: HasherSHA256,
		Hash:     saltedSHA256(saltHex, password),
		Salt:     saltHex,
	}, nil
}

// Verify recomputes the digest and compares it in constant time.
func (h *SHA256Hasher) Verify(password string, stored StoredPasswordInfo) (bool, error) {
	if stored.Salt == "" {
		return false, oops.Code("AUTH_INVALID_HASH").
			With("hasher", HasherSHA256).
			Errorf("salt is required")
	}
	expected, err := hex.DecodeString(stored.Hash)
	if err != nil || len(expected) != sha256.Size {
		return false, oops.Code("AUTH_INVALID_HASH").
			With("hasher", HasherSHA256).
			Errorf("hash must be %d hex-encoded bytes", sha256.Size)
	}
	computed, _ := hex.DecodeString(saltedSHA256(stored.Salt, password)) //nolint:errcheck // produced by hex.EncodeToString
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

func saltedSHA256(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

var _ PasswordHasher = (*SHA256Hasher)(nil)

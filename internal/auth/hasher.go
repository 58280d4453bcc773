// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Hasher identifiers.
const (
	HasherArgon2id = "argon2id"
	HasherBcrypt   = "bcrypt"
	HasherSHA256   = "sha256"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher is a password hashing strategy identified by a stable id.
type PasswordHasher interface {
	// ID is the key recorded in StoredPasswordInfo.HasherID.
	ID() string

	// Hash produces a new stored record for the password.
	Hash(password string) (StoredPasswordInfo, error)

	// Verify checks if the password matches the stored record.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on a
	// malformed record. Implementations must compare in constant time.
	Verify(password string, stored StoredPasswordInfo) (bool, error)
}

// Argon2idParams are the cost parameters used when hashing.
type Argon2idParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// DefaultArgon2idParams returns the OWASP-recommended argon2id parameters.
func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Upper bounds on the cost read from a stored record. Every login pays the
// encoded cost, so a corrupted record must not allocate without limit.
const (
	maxArgon2idTime   = 16
	maxArgon2idMemory = 4 * 64 * 1024 // KiB
	maxArgon2idKeyLen = 1024
)

// Argon2idHasher implements PasswordHasher using argon2id in PHC string format.
type Argon2idHasher struct {
	params Argon2idParams
}

// NewArgon2idHasher creates an Argon2idHasher with the default parameters.
func NewArgon2idHasher() *Argon2idHasher {
	return NewArgon2idHasherWithParams(DefaultArgon2idParams())
}

// NewArgon2idHasherWithParams creates an Argon2idHasher with custom cost
// parameters. Verification always uses the parameters encoded in the hash.
func NewArgon2idHasherWithParams(params Argon2idParams) *Argon2idHasher {
	return &Argon2idHasher{params: params}
}

// ID returns "argon2id".
func (h *Argon2idHasher) ID() string { return HasherArgon2id }

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (StoredPasswordInfo, error) {
	if password == "" {
		return StoredPasswordInfo{}, ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return StoredPasswordInfo{}, oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return StoredPasswordInfo{HasherID: HasherArgon2id, Hash: encoded}, nil
}

// Verify checks if the password matches the encoded argon2id hash.
func (h *Argon2idHasher) Verify(password string, stored StoredPasswordInfo) (bool, error) {
	parts := strings.Split(stored.Hash, "$")
	if len(parts) != 6 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported argon2 version: %d", version)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	// uint8 truncation would silently change the cost
	if threads == 0 || threads > 255 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d out of range", threads)
	}
	if time < 1 || time > maxArgon2idTime {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("time value %d out of range", time)
	}
	if memory < 8*threads || memory > maxArgon2idMemory {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("memory value %d out of range", memory)
	}

	keyLen := len(expectedHash)
	if keyLen <= 0 || keyLen > maxArgon2idKeyLen {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	computedHash := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1, nil
}

var _ PasswordHasher = (*Argon2idHasher)(nil)

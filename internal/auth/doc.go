// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

// Package auth provides credential authentication and single-use account tokens.
//
// # Hashing
//
// Password hashes are verified by the strategy recorded on the stored record
// (StoredPasswordInfo.HasherID), not by current configuration. A HasherRegistry
// maps those ids to PasswordHasher implementations:
//   - argon2id - Argon2idHasher
//   - bcrypt - BcryptHasher
//   - sha256 - SHA256Hasher, salted legacy records
//
// The registry is built once at startup and never mutated, so it is safe to
// share between goroutines without locking.
//
// # Services
//
//   - Authenticator - checks an identifier/secret pair and audits failures
//   - TokenService - sign-up confirmation and password reset tokens
//   - TokenSweeper - periodic removal of expired tokens
//
// Every rejected credential surfaces as ErrInvalidCredentials so that callers
// cannot tell an unknown identifier from a wrong password. The precise reason
// is only recorded in the audit trail.
package auth

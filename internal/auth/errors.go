// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Authentication outcomes. Callers match these with errors.Is; the oops
// wrapper around them carries the stable error code.
var (
	// ErrInvalidCredentials covers every rejected credential: unknown
	// identifier, wrong secret, unresolvable hasher and malformed input.
	ErrInvalidCredentials = errors.New("invalid identifier or password")

	// ErrDependencyUnavailable means the account lookup failed or timed out.
	ErrDependencyUnavailable = errors.New("account lookup unavailable")

	// ErrInsecureTransport means the policy requires TLS and the request
	// did not arrive over it.
	ErrInsecureTransport = errors.New("secure transport required")
)

// Token outcomes.
var (
	ErrTokenInvalid = errors.New("token is invalid or already used")
	ErrTokenExpired = errors.New("token has expired")

	// ErrAccountExists is returned when signing up an email that already has an account.
	ErrAccountExists = errors.New("account already exists")
)

// Error codes attached with oops.
const (
	CodeInvalidCredentials    = "AUTH_INVALID_CREDENTIALS"
	CodeDependencyUnavailable = "AUTH_DEPENDENCY_UNAVAILABLE"
	CodeInsecureTransport     = "AUTH_INSECURE_TRANSPORT"
	CodeTokenInvalid          = "TOKEN_INVALID"
	CodeTokenExpired          = "TOKEN_EXPIRED"
)

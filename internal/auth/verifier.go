// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"log/slog"
)

// FailureReason classifies why a login attempt was rejected. It is written
// to the audit trail only and never returned to callers.
type FailureReason string

// Failure reasons.
const (
	ReasonNone                  FailureReason = ""
	ReasonValidation            FailureReason = "validation"
	ReasonUnknownIdentifier     FailureReason = "unknown_identifier"
	ReasonPasswordMismatch      FailureReason = "password_mismatch"
	ReasonHasherUnresolved      FailureReason = "hasher_unresolved"
	ReasonDependencyUnavailable FailureReason = "dependency_unavailable"
	ReasonInsecureTransport     FailureReason = "insecure_transport"
)

// PasswordVerifier checks secrets against stored records using the strategy
// named by each record.
type PasswordVerifier struct {
	registry *HasherRegistry
	logger   *slog.Logger
}

// NewPasswordVerifier creates a PasswordVerifier. A nil logger uses slog.Default().
func NewPasswordVerifier(registry *HasherRegistry, logger *slog.Logger) *PasswordVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordVerifier{registry: registry, logger: logger}
}

// Verify reports whether the credential's secret matches stored. Unknown
// hashers and malformed records never match.
func (v *PasswordVerifier) Verify(cred Credential, stored StoredPasswordInfo) bool {
	return v.VerifyDetailed(cred, stored) == ReasonNone
}

// VerifyDetailed is Verify with the reason for a mismatch.
func (v *PasswordVerifier) VerifyDetailed(cred Credential, stored StoredPasswordInfo) FailureReason {
	hasher, ok := v.registry.Resolve(stored.HasherID)
	if !ok {
		v.logger.Warn("stored password uses unregistered hasher",
			"hasher", stored.HasherID,
			"identifier", cred.Identifier)
		return ReasonHasherUnresolved
	}

	match, err := hasher.Verify(cred.Secret, stored)
	if err != nil {
		v.logger.Warn("stored password record is malformed",
			"hasher", stored.HasherID,
			"identifier", cred.Identifier,
			"error", err)
		return ReasonPasswordMismatch
	}
	if !match {
		return ReasonPasswordMismatch
	}
	return ReasonNone
}

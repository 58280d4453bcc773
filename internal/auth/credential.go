// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"log/slog"
	"strings"
)

// Credential is an identifier/secret pair submitted for authentication.
// It is never persisted and renders with the secret redacted.
type Credential struct {
	Identifier string
	Secret     string
}

// NewCredential trims surrounding whitespace from the identifier. The secret
// is kept verbatim.
func NewCredential(identifier, secret string) Credential {
	return Credential{
		Identifier: strings.TrimSpace(identifier),
		Secret:     secret,
	}
}

// Valid reports whether both fields are non-empty.
func (c Credential) Valid() bool {
	return c.Identifier != "" && c.Secret != ""
}

// String implements fmt.Stringer without exposing the secret.
func (c Credential) String() string {
	return "Credential{" + c.Identifier + ", [REDACTED]}"
}

// LogValue implements slog.LogValuer without exposing the secret.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(slog.String("identifier", c.Identifier))
}

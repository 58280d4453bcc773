// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"github.com/samber/oops"

	"github.com/credgate/credgate/internal/auth"
)

func unknownHasherError(id string, registry *auth.HasherRegistry) error {
	return oops.Code("HASHER_UNKNOWN").
		With("hasher", id).
		With("registered", registry.IDs()).
		Errorf("hasher %q is not registered", id)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"sort"

	"github.com/samber/oops"
)

// HasherRegistry maps hasher ids to strategies. It is populated once by
// NewHasherRegistry and read-only afterwards.
type HasherRegistry struct {
	hashers   map[string]PasswordHasher
	defaultID string
}

// NewHasherRegistry registers hashers and selects the default used for new
// records. Registering two hashers with the same id is an error, as is a
// default id that none of them provides.
func NewHasherRegistry(defaultID string, hashers ...PasswordHasher) (*HasherRegistry, error) {
	r := &HasherRegistry{
		hashers:   make(map[string]PasswordHasher, len(hashers)),
		defaultID: defaultID,
	}

	for _, h := range hashers {
		if h == nil {
			return nil, oops.Code("AUTH_HASHER_INVALID").Errorf("hasher cannot be nil")
		}
		id := h.ID()
		if id == "" {
			return nil, oops.Code("AUTH_HASHER_INVALID").Errorf("hasher id cannot be empty")
		}
		if _, dup := r.hashers[id]; dup {
			return nil, oops.Code("AUTH_HASHER_DUPLICATE").
				With("hasher", id).
				Errorf("hasher %q registered twice", id)
		}
		r.hashers[id] = h
	}

	if _, ok := r.hashers[defaultID]; !ok {
		return nil, oops.Code("AUTH_HASHER_DEFAULT_UNKNOWN").
			With("hasher", defaultID).
			With("registered", r.IDs()).
			Errorf("default hasher %q is not registered", defaultID)
	}

	return r, nil
}

// Resolve returns the hasher registered under id.
func (r *HasherRegistry) Resolve(id string) (PasswordHasher, bool) {
	h, ok := r.hashers[id]
	return h, ok
}

// Default returns the hasher assigned to newly created records.
func (r *HasherRegistry) Default() PasswordHasher {
	return r.hashers[r.defaultID]
}

// IDs returns the registered ids in sorted order.
func (r *HasherRegistry) IDs() []string {
	ids := make([]string, 0, len(r.hashers))
	for id := range r.hashers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewStandardRegistry registers the built-in hashers (argon2id, bcrypt and
// salted sha256) with production costs and selects defaultID for new records.
func NewStandardRegistry(defaultID string) (*HasherRegistry, error) {
	return NewHasherRegistry(defaultID,
		NewArgon2idHasher(),
		NewBcryptHasher(0),
		NewSHA256Hasher(),
	)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/credgate/credgate/internal/auth"
	"github.com/credgate/credgate/internal/auth/postgres"
	"github.com/credgate/credgate/internal/store"
)

// services bundles the database-backed components a command needs.
type services struct {
	*settings

	pool     *pgxpool.Pool
	registry *auth.HasherRegistry
	accounts *postgres.AccountRepository
	tokens   *postgres.TokenRepository
	failures *postgres.LoginFailureRepository
}

// openServices connects to the database and builds the repositories.
// Callers must Close the result.
func openServices(ctx context.Context, s *settings) (*services, error) {
	registry, err := auth.NewStandardRegistry(s.policy.DefaultHasherID)
	if err != nil {
		return nil, err
	}

	url, err := s.databaseURL()
	if err != nil {
		return nil, err
	}
	pool, err := store.Connect(ctx, url, s.logger)
	if err != nil {
		return nil, err
	}

	return &services{
		settings: s,
		pool:     pool,
		registry: registry,
		accounts: postgres.NewAccountRepository(pool),
		tokens:   postgres.NewTokenRepository(pool),
		failures: postgres.NewLoginFailureRepository(pool),
	}, nil
}

// auditSink writes failures to the database and the log.
func (s *services) auditSink() auth.AuditSink {
	return auth.AuditSinks{s.failures, auth.NewSlogAuditSink(s.logger)}
}

// Close releases the pool.
func (s *services) Close() {
	s.pool.Close()
}

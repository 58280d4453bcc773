// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/credgate/credgate/pkg/errutil"
)

// TokenSweeper periodically deletes expired tokens.
type TokenSweeper struct {
	tokens   TokenStore
	interval time.Duration
	logger   *slog.Logger
	metrics  *Metrics
	clock    func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTokenSweeper creates a sweeper that runs every interval.
func NewTokenSweeper(tokens TokenStore, interval time.Duration, opts ...Option) (*TokenSweeper, error) {
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("token store is required")
	}
	if interval <= 0 {
		return nil, oops.Code("AUTH_INVALID_CONFIG").
			With("interval", interval.String()).
			Errorf("sweep interval must be positive")
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &TokenSweeper{
		tokens:   tokens,
		interval: interval,
		logger:   o.logger,
		metrics:  o.metrics,
		clock:    o.clock,
	}, nil
}

// RunOnce deletes every token expired at the current time.
func (s *TokenSweeper) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := s.tokens.DeleteExpired(ctx, s.clock())
	if err != nil {
		return 0, oops.Code("TOKEN_SWEEP_FAILED").
			With("operation", "DeleteExpired").
			Wrap(err)
	}
	s.metrics.swept(deleted)
	if deleted > 0 {
		s.logger.InfoContext(ctx, "deleted expired tokens", "count", deleted)
	}
	return deleted, nil
}

// Start runs a sweep immediately and then every interval until Stop is
// called or ctx is cancelled. Starting a running sweeper is an error.
func (s *TokenSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return oops.Code("TOKEN_SWEEPER_RUNNING").Errorf("token sweeper already started")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
	return nil
}

// Stop stops the sweeper and waits for an in-flight sweep to finish.
func (s *TokenSweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *TokenSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *TokenSweeper) sweep(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		errutil.LogError(ctx, s.logger, "token sweep failed", err)
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// Option configures the services in this package.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *Metrics
	clock   func() time.Time
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

func applyOptions(opts []Option) (options, error) {
	o := options{
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		return o, oops.Code("AUTH_INVALID_CONFIG").Errorf("logger cannot be nil")
	}
	if o.clock == nil {
		return o, oops.Code("AUTH_INVALID_CONFIG").Errorf("clock cannot be nil")
	}
	return o, nil
}

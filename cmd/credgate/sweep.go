// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/credgate/credgate/internal/auth"
	"github.com/credgate/credgate/internal/observability"
)

const (
	defaultMetricsAddr = "127.0.0.1:9102"
	readinessTimeout   = 2 * time.Second
	shutdownTimeout    = 5 * time.Second
)

type sweepConfig struct {
	once        bool
	metricsAddr string
}

// NewSweepCmd creates the sweep subcommand.
func NewSweepCmd() *cobra.Command {
	cfg := &sweepConfig{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired tokens",
		Long: `Delete expired tokens every auth.token_delete_interval until
interrupted, serving metrics and health probes on --metrics-addr. With
--once, run a single sweep and exit. The periodic job does nothing when
auth.enable_token_job is false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.once, "once", false, "run one sweep and exit")
	cmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	return cmd
}

func runSweep(cmd *cobra.Command, cfg *sweepConfig) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if !cfg.once && !s.policy.EnableTokenJob {
		s.logger.Info("token sweep job is disabled", "key", "auth.enable_token_job")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := openServices(ctx, s)
	if err != nil {
		return err
	}
	defer svc.Close()

	if cfg.once {
		sweeper, err := auth.NewTokenSweeper(svc.tokens, s.policy.TokenDeleteInterval, auth.WithLogger(s.logger))
		if err != nil {
			return err
		}
		n, err := sweeper.RunOnce(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Deleted %d expired tokens\n", n)
		return nil
	}

	var obsServer *observability.Server
	opts := []auth.Option{auth.WithLogger(s.logger)}
	if cfg.metricsAddr != "" {
		obsServer = observability.NewServer(cfg.metricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), readinessTimeout)
			defer pingCancel()
			return svc.pool.Ping(pingCtx) == nil
		}, s.logger)
		opts = append(opts, auth.WithMetrics(auth.NewMetrics(obsServer.Registry())))

		obsErrChan, err := obsServer.Start()
		if err != nil {
			return err
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, s)
		s.logger.Info("observability server started", "addr", obsServer.Addr())
	}

	sweeper, err := auth.NewTokenSweeper(svc.tokens, s.policy.TokenDeleteInterval, opts...)
	if err != nil {
		return err
	}
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	s.logger.Info("token sweeper started", "interval", s.policy.TokenDeleteInterval.String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
	}

	sweeper.Stop()

	if obsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			s.logger.Warn("error stopping observability server", "error", err)
		}
	}

	s.logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels ctx when a background server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errs <-chan error, s *settings) {
	select {
	case err, ok := <-errs:
		if ok && err != nil {
			s.logger.Error("observability server failed", "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}

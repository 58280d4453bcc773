// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/credgate/credgate/internal/logging"
	"github.com/credgate/credgate/internal/policy"
	"github.com/credgate/credgate/internal/xdg"
)

// Global flags available to all subcommands.
var (
	configFile string
	logFormat  string
	logLevel   string
)

// NewRootCmd creates the root command for the credgate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credgate",
		Short: "credgate - password authentication and account tokens",
		Long: `credgate verifies passwords against stored hashes from several
hashing strategies, audits failed logins, and manages the single-use
tokens behind sign-up confirmation and password reset.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (default $XDG_CONFIG_HOME/credgate/config.yaml)")
	flags.StringVar(&logFormat, "log-format", "json", "log format (json, text)")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	policy.RegisterFlags(flags)

	cmd.AddCommand(NewPolicyCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewHashCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewAccountCmd())
	cmd.AddCommand(NewTokenCmd())
	cmd.AddCommand(NewSweepCmd())

	return cmd
}

// settings is the configuration every subcommand starts from.
type settings struct {
	config *koanf.Koanf
	policy policy.Policy
	logger *slog.Logger
}

// loadSettings reads the config file, environment and flags, then resolves
// the authentication policy.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	logger := logging.SetupWithLevel("credgate", version, logFormat, logging.ParseLevel(logLevel), cmd.ErrOrStderr())

	path := configFile
	if path == "" {
		path = xdg.ConfigFile()
	}

	k, err := policy.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}

	pol, err := policy.Resolve(k, logger)
	if err != nil {
		return nil, err
	}

	return &settings{config: k, policy: pol, logger: logger}, nil
}

// databaseURL returns database.url, falling back to DATABASE_URL.
func (s *settings) databaseURL() (string, error) {
	if url := s.config.String("database.url"); url != "" {
		return url, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", oops.Code("CONFIG_INVALID").
		Errorf("database URL is required (--database-url, CREDGATE_DATABASE__URL or DATABASE_URL)")
}

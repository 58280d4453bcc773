// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/credgate/credgate/internal/auth"
)

// NewLoginCmd creates the login subcommand.
func NewLoginCmd() *cobra.Command {
	var insecure bool

	cmd := &cobra.Command{
		Use:   "login IDENTIFIER",
		Short: "Check a password against the account database",
		Long: `Authenticate IDENTIFIER with a password read from standard input.
Failures are written to the login_failures audit table. Pass --insecure to
simulate a request that did not arrive over TLS.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			svc, err := openServices(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer svc.Close()

			authenticator, err := auth.NewAuthenticator(svc.accounts, svc.registry, svc.auditSink(), s.policy,
				auth.WithLogger(s.logger))
			if err != nil {
				return err
			}

			password, err := readSecret(cmd, "Password: ")
			if err != nil {
				return err
			}

			host, _ := os.Hostname() //nolint:errcheck // informational
			identity, err := authenticator.Authenticate(cmd.Context(), args[0], password, auth.RequestContext{
				RequestID:  ulid.Make().String(),
				RemoteAddr: host,
				UserAgent:  "credgate-cli/" + version,
				Secure:     !insecure,
			})
			if err != nil {
				return err
			}

			cmd.Printf("Authenticated %s (account %s)\n", identity.Identifier, identity.AccountID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&insecure, "insecure", false, "treat the request as not using TLS")
	return cmd
}

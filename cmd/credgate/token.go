// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/credgate/credgate/internal/auth"
)

// NewTokenCmd creates the token subcommand. Delivery of issued tokens is
// left to the operator; the id is printed once and never stored in clear.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and redeem sign-up and password reset tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "signup EMAIL",
		Short: "Issue a sign-up confirmation token",
		Args:  cobra.ExactArgs(1),
		RunE: withTokenService(func(cmd *cobra.Command, svc *auth.TokenService, args []string) error {
			token, err := svc.IssueSignUp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printToken(cmd, token)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset EMAIL",
		Short: "Issue a password reset token",
		Args:  cobra.ExactArgs(1),
		RunE: withTokenService(func(cmd *cobra.Command, svc *auth.TokenService, args []string) error {
			token, err := svc.IssueReset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if token == nil {
				cmd.Println("No account for that email; nothing issued")
				return nil
			}
			printToken(cmd, token)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "confirm TOKEN",
		Short: "Redeem a sign-up token and mark its account verified",
		Args:  cobra.ExactArgs(1),
		RunE: withTokenService(func(cmd *cobra.Command, svc *auth.TokenService, args []string) error {
			account, err := svc.ConfirmSignUp(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Verified %s\n", account.Email)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-password TOKEN",
		Short: "Redeem a reset token and set the password read from standard input",
		Args:  cobra.ExactArgs(1),
		RunE: withTokenService(func(cmd *cobra.Command, svc *auth.TokenService, args []string) error {
			password, err := readSecret(cmd, "New password: ")
			if err != nil {
				return err
			}
			if err := svc.ResetPassword(cmd.Context(), args[0], password); err != nil {
				return err
			}
			cmd.Println("Password updated")
			return nil
		}),
	})

	return cmd
}

func withTokenService(fn func(*cobra.Command, *auth.TokenService, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		svc, err := openServices(cmd.Context(), s)
		if err != nil {
			return err
		}
		defer svc.Close()

		tokens, err := auth.NewTokenService(svc.accounts, svc.tokens, svc.registry, s.policy,
			auth.WithLogger(s.logger))
		if err != nil {
			return err
		}
		return fn(cmd, tokens, args)
	}
}

func printToken(cmd *cobra.Command, token *auth.Token) {
	cmd.Printf("kind: %s\nemail: %s\nexpires_at: %s\ntoken: %s\n",
		token.Kind(), token.Email, token.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"), token.ID)
}

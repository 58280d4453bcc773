// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/credgate/credgate/internal/auth"
)

// NewAccountCmd creates the account subcommand.
func NewAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	var verified bool
	create := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create an account with a password read from standard input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if email == "" {
				return oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("email cannot be empty")
			}

			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			svc, err := openServices(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer svc.Close()

			password, err := readSecret(cmd, "Password: ")
			if err != nil {
				return err
			}
			stored, err := svc.registry.Default().Hash(password)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			account := &auth.Account{
				ID:        ulid.Make(),
				Email:     email,
				Password:  stored,
				CreatedAt: now,
			}
			if verified {
				account.VerifiedAt = &now
			}
			if err := svc.accounts.Create(cmd.Context(), account); err != nil {
				return err
			}

			cmd.Printf("Created account %s for %s\n", account.ID, email)
			return nil
		},
	}
	create.Flags().BoolVar(&verified, "verified", false, "mark the email as already confirmed")

	cmd.AddCommand(create, newAccountFailuresCmd())
	return cmd
}

func newAccountFailuresCmd() *cobra.Command {
	var (
		window time.Duration
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "failures EMAIL",
		Short: "Show recent login failures for an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if window <= 0 || limit <= 0 {
				return oops.Code("INVALID_ARGUMENT").
					With("since", window.String()).
					With("limit", limit).
					Errorf("--since and --limit must be positive")
			}

			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			svc, err := openServices(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer svc.Close()

			since := time.Now().UTC().Add(-window)
			return printFailures(cmd.Context(), cmd.OutOrStdout(), svc.accounts, svc.failures,
				strings.TrimSpace(args[0]), since, limit)
		},
	}
	cmd.Flags().DurationVar(&window, "since", 24*time.Hour, "count failures within this window")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of failures to list")
	return cmd
}

// failureHistory is the read side of the login failure audit.
type failureHistory interface {
	CountSince(ctx context.Context, identifier string, since time.Time) (int, error)
	ListByAccount(ctx context.Context, accountID ulid.ULID, limit int) ([]auth.LoginFailure, error)
}

// printFailures writes the failure count for email since the given time and,
// when the email belongs to an account, its most recent failures.
func printFailures(
	ctx context.Context,
	w io.Writer,
	accounts auth.AccountLookup,
	history failureHistory,
	email string,
	since time.Time,
	limit int,
) error {
	count, err := history.CountSince(ctx, email, since)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d failed login(s) for %s since %s\n", count, email, since.Format(time.RFC3339))

	account, err := accounts.FindByIdentifier(ctx, email)
	if errors.Is(err, auth.ErrNotFound) || (err == nil && account == nil) {
		fmt.Fprintln(w, "No account exists for this email.")
		return nil
	}
	if err != nil {
		return err
	}

	failures, err := history.ListByAccount(ctx, account.ID, limit)
	if err != nil {
		return err
	}
	for _, f := range failures {
		fmt.Fprintf(w, "%s  %-22s  %s\n", f.OccurredAt.UTC().Format(time.RFC3339), f.Reason, f.Request.RemoteAddr)
	}
	return nil
}

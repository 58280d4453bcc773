// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/credgate/credgate/internal/auth"
)

// NewHashCmd creates the hash subcommand.
func NewHashCmd() *cobra.Command {
	var hasherID string

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a password read from standard input",
		Long: `Hash a password with a registered strategy and print the stored
record. The policy's default hasher is used unless --with is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			registry, err := auth.NewStandardRegistry(s.policy.DefaultHasherID)
			if err != nil {
				return err
			}

			hasher := registry.Default()
			if hasherID != "" {
				h, ok := registry.Resolve(hasherID)
				if !ok {
					return unknownHasherError(hasherID, registry)
				}
				hasher = h
			}

			password, err := readSecret(cmd, "Password: ")
			if err != nil {
				return err
			}
			stored, err := hasher.Hash(password)
			if err != nil {
				return err
			}

			cmd.Printf("hasher_id: %s\nhash: %s\n", stored.HasherID, stored.Hash)
			if stored.Salt != "" {
				cmd.Printf("salt: %s\n", stored.Salt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hasherID, "with", "", "hasher id (argon2id, bcrypt, sha256)")
	return cmd
}

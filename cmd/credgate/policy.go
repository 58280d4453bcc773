// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/credgate/credgate/internal/auth"
	"github.com/credgate/credgate/internal/policy"
)

// policyView is the YAML rendering of a resolved policy.
type policyView struct {
	Mode       string   `yaml:"mode"`
	Production bool     `yaml:"production"`
	Hashers    []string `yaml:"hashers"`
	Auth       struct {
		SSL                 bool   `yaml:"ssl"`
		Hasher              string `yaml:"hasher"`
		SendWelcomeEmail    bool   `yaml:"send_welcome_email"`
		EnableGravatar      bool   `yaml:"enable_gravatar"`
		EnableTokenJob      bool   `yaml:"enable_token_job"`
		SignupSkipLogin     bool   `yaml:"signup_skip_login"`
		TokenDuration       string `yaml:"token_duration"`
		TokenDeleteInterval string `yaml:"token_delete_interval"`
		LookupTimeout       string `yaml:"lookup_timeout"`
	} `yaml:"auth"`
}

func newPolicyView(p policy.Policy, hashers []string) policyView {
	var v policyView
	v.Mode = p.Mode
	v.Production = p.Production
	v.Hashers = hashers
	v.Auth.SSL = p.SSLRequired
	v.Auth.Hasher = p.DefaultHasherID
	v.Auth.SendWelcomeEmail = p.SendWelcomeEmail
	v.Auth.EnableGravatar = p.EnableGravatar
	v.Auth.EnableTokenJob = p.EnableTokenJob
	v.Auth.SignupSkipLogin = p.SignupSkipLogin
	v.Auth.TokenDuration = p.TokenDuration.String()
	v.Auth.TokenDeleteInterval = p.TokenDeleteInterval.String()
	v.Auth.LookupTimeout = p.LookupTimeout.String()
	return v
}

// NewPolicyCmd creates the policy subcommand.
func NewPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Print the resolved authentication policy",
		Long: `Resolve the authentication policy from the config file, CREDGATE_
environment variables and flags, validate that the default hasher is
registered, and print the result as YAML.`,
		Args: cobra.NoArgs,
		RunE: runPolicy,
	}
}

func runPolicy(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	registry, err := auth.NewStandardRegistry(s.policy.DefaultHasherID)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(newPolicyView(s.policy, registry.IDs()))
	if err != nil {
		return oops.Code("POLICY_RENDER_FAILED").Wrap(err)
	}
	cmd.Print(string(out))
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/credgate/credgate/pkg/errutil"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	out, _, err := execute(t, "", "--help")
	require.NoError(t, err)

	for _, sub := range []string{"policy", "migrate", "hash", "login", "account", "token", "sweep"} {
		assert.Contains(t, out, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{"separate value", []string{"--config", "/path/to/config.yaml", "--help"}, "/path/to/config.yaml"},
		{"with equals", []string{"--config=/etc/credgate.yaml", "--help"}, "/etc/credgate.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile = ""
			_, _, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestRootCommand_VersionFlag(t *testing.T) {
	cmd := NewRootCmd()
	cmd.Version = "test-version"
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "test-version")
}

func TestPolicyCommand(t *testing.T) {
	out, stderr, err := execute(t, "", "policy", "--hasher", "argon2id", "--mode", "prod", "--token-duration", "2h")
	require.NoError(t, err)

	var view policyView
	require.NoError(t, yaml.Unmarshal([]byte(out), &view))
	assert.Equal(t, "argon2id", view.Auth.Hasher)
	assert.Equal(t, "2h0m0s", view.Auth.TokenDuration)
	assert.True(t, view.Production)
	assert.Equal(t, []string{"argon2id", "bcrypt", "sha256"}, view.Hashers)

	// TLS is not required, so resolution warns.
	assert.Contains(t, stderr, "TLS is not required in a production deployment")
}

func TestPolicyCommand_FromEnvironment(t *testing.T) {
	t.Setenv("CREDGATE_AUTH__SSL", "true")
	t.Setenv("CREDGATE_AUTH__ENABLE_GRAVATAR", "false")

	out, _, err := execute(t, "", "policy")
	require.NoError(t, err)

	var view policyView
	require.NoError(t, yaml.Unmarshal([]byte(out), &view))
	assert.True(t, view.Auth.SSL)
	assert.False(t, view.Auth.EnableGravatar)
	assert.Equal(t, "bcrypt", view.Auth.Hasher)
}

func TestPolicyCommand_UnregisteredDefaultHasher(t *testing.T) {
	_, _, err := execute(t, "", "policy", "--hasher", "scrypt")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_HASHER_DEFAULT_UNKNOWN")
}

func TestPolicyCommand_MalformedValue(t *testing.T) {
	t.Setenv("CREDGATE_AUTH__TOKEN_DELETE_INTERVAL", "often")

	_, _, err := execute(t, "", "policy")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "POLICY_INVALID")
}

func TestHashCommand(t *testing.T) {
	out, _, err := execute(t, "s3cret\n", "hash", "--with", "sha256")
	require.NoError(t, err)

	assert.Contains(t, out, "hasher_id: sha256")
	assert.Contains(t, out, "salt: ")
	assert.NotContains(t, out, "s3cret")
}

func TestHashCommand_DefaultHasher(t *testing.T) {
	out, _, err := execute(t, "s3cret\n", "hash", "--hasher", "bcrypt")
	require.NoError(t, err)
	assert.Contains(t, out, "hasher_id: bcrypt")
	assert.Contains(t, out, "hash: $2a$")
}

func TestHashCommand_Errors(t *testing.T) {
	_, _, err := execute(t, "pw\n", "hash", "--with", "md5")
	errutil.AssertErrorCode(t, err, "HASHER_UNKNOWN")

	_, _, err = execute(t, "", "hash", "--with", "sha256")
	errutil.AssertErrorCode(t, err, "SECRET_READ_FAILED")

	_, _, err = execute(t, "\n", "hash", "--with", "sha256")
	errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
}

func TestSweepCommand_DisabledJob(t *testing.T) {
	t.Setenv("CREDGATE_AUTH__ENABLE_TOKEN_JOB", "false")

	_, stderr, err := execute(t, "", "sweep")
	require.NoError(t, err)
	assert.Contains(t, stderr, "token sweep job is disabled")
}

func TestDatabaseCommands_RequireURL(t *testing.T) {
	for _, args := range [][]string{
		{"migrate", "version"},
		{"login", "alice@example.com"},
		{"sweep", "--once"},
		{"token", "reset", "alice@example.com"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := execute(t, "pw\n", args...)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
		})
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package policy_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credgate/credgate/internal/policy"
	"github.com/credgate/credgate/pkg/errutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
app:
  mode: prod
auth:
  ssl: true
  hasher: argon2id
  token_duration: 24h
  enable_token_job: false
database:
  url: postgres://credgate@db/credgate
`)

	k, err := policy.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://credgate@db/credgate", k.String("database.url"))

	p, err := policy.Resolve(k, nil)
	require.NoError(t, err)
	assert.True(t, p.SSLRequired)
	assert.Equal(t, "argon2id", p.DefaultHasherID)
	assert.Equal(t, 24*time.Hour, p.TokenDuration)
	assert.False(t, p.EnableTokenJob)
	assert.True(t, p.Production)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "auth:\n  hasher: argon2id\n  ssl: false\n")
	t.Setenv("CREDGATE_AUTH__HASHER", "sha256")
	t.Setenv("CREDGATE_AUTH__SSL", "true")
	t.Setenv("CREDGATE_AUTH__TOKEN_DELETE_INTERVAL", "1m")

	k, err := policy.Load(path, nil)
	require.NoError(t, err)

	p, err := policy.Resolve(k, nil)
	require.NoError(t, err)
	assert.Equal(t, "sha256", p.DefaultHasherID)
	assert.True(t, p.SSLRequired)
	assert.Equal(t, time.Minute, p.TokenDeleteInterval)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("CREDGATE_AUTH__HASHER", "sha256")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	policy.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--hasher", "argon2id", "--token-duration", "2h", "--ssl-required"}))

	k, err := policy.Load("", fs)
	require.NoError(t, err)

	p, err := policy.Resolve(k, nil)
	require.NoError(t, err)
	assert.Equal(t, "argon2id", p.DefaultHasherID)
	assert.Equal(t, 2*time.Hour, p.TokenDuration)
	assert.True(t, p.SSLRequired)
}

func TestLoad_UnsetFlagsKeepEnv(t *testing.T) {
	t.Setenv("CREDGATE_AUTH__HASHER", "sha256")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	policy.RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))

	k, err := policy.Load("", fs)
	require.NoError(t, err)

	p, err := policy.Resolve(k, nil)
	require.NoError(t, err)
	assert.Equal(t, "sha256", p.DefaultHasherID)
	assert.Equal(t, policy.Default().TokenDuration, p.TokenDuration)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := policy.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestLoad_MalformedEnvFailsResolution(t *testing.T) {
	t.Setenv("CREDGATE_AUTH__TOKEN_DURATION", "forever")

	k, err := policy.Load("", nil)
	require.NoError(t, err)

	_, err = policy.Resolve(k, nil)
	assert.ErrorIs(t, err, policy.ErrInvalidPolicy)
}

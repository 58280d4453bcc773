// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package store

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var migrationFilePattern = regexp.MustCompile(`^\d{6}_[a-z0-9_]+\.(up|down)\.sql$`)

func TestMigrationsFS_Contents(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
		assert.Regexp(t, migrationFilePattern, e.Name())
	}

	assert.ElementsMatch(t, []string{
		"000001_accounts.up.sql", "000001_accounts.down.sql",
		"000002_tokens.up.sql", "000002_tokens.down.sql",
		"000003_login_failures.up.sql", "000003_login_failures.down.sql",
	}, names)
}

func TestMigrationsFS_EveryUpHasDown(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	files := make(map[string]bool, len(entries))
	for _, e := range entries {
		files[e.Name()] = true
	}
	for name := range files {
		if base, ok := strings.CutSuffix(name, ".up.sql"); ok {
			assert.True(t, files[base+".down.sql"], "missing down migration for %s", base)
		}
	}
}

func TestMigrationsFS_NoEmptyFiles(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	for _, e := range entries {
		data, err := migrationsFS.ReadFile("migrations/" + e.Name())
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(string(data)), e.Name())
	}
}

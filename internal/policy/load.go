// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package policy

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment overrides. Levels are separated by
// a double underscore: CREDGATE_AUTH__HASHER sets auth.hasher.
const EnvPrefix = "CREDGATE_"

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"ssl-required":   KeySSLRequired,
	"hasher":         KeyDefaultHasher,
	"mode":           KeyMode,
	"token-duration": KeyTokenDuration,
	"lookup-timeout": KeyLookupTimeout,
	"database-url":   "database.url",
}

// RegisterFlags adds the policy flags to fs with the Default values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Bool("ssl-required", d.SSLRequired, "require TLS for credential submission")
	fs.String("hasher", d.DefaultHasherID, "hasher assigned to new password records")
	fs.String("mode", d.Mode, "deployment mode (dev, prod)")
	fs.Duration("token-duration", d.TokenDuration, "lifetime of sign-up and reset tokens")
	fs.Duration("lookup-timeout", d.LookupTimeout, "maximum wait for the account lookup")
	fs.String("database-url", "", "PostgreSQL connection URL")
}

// Load builds the configuration from, in increasing precedence: the YAML
// file at path (skipped when empty), CREDGATE_ environment variables, and
// flags explicitly set on fs (nil skips flags).
func Load(path string, fs *pflag.FlagSet) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "load config file").
				With("path", path).
				Wrap(err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").
			With("operation", "load environment").
			Wrap(err)
	}

	if fs != nil {
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		}), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	return k, nil
}

// envKey turns CREDGATE_AUTH__ENABLE_TOKEN_JOB into auth.enable_token_job.
func envKey(k, v string) (string, any) {
	k = strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	if k == "" {
		return "", nil
	}
	return strings.ReplaceAll(k, "__", "."), v
}

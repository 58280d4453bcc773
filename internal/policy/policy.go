// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

// Package policy resolves the deployment-wide authentication policy.
//
// A Policy is resolved once at startup and passed by value to the services
// that need it; nothing reads configuration after that.
package policy

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Configuration keys.
const (
	KeySSLRequired         = "auth.ssl"
	KeyDefaultHasher       = "auth.hasher"
	KeySendWelcomeEmail    = "auth.send_welcome_email"
	KeyEnableGravatar      = "auth.enable_gravatar"
	KeyEnableTokenJob      = "auth.enable_token_job"
	KeySignupSkipLogin     = "auth.signup_skip_login"
	KeyTokenDuration       = "auth.token_duration"
	KeyTokenDeleteInterval = "auth.token_delete_interval"
	KeyLookupTimeout       = "auth.lookup_timeout"
	KeyMode                = "app.mode"
)

// CodeInvalid is the oops code of a malformed policy value.
const CodeInvalid = "POLICY_INVALID"

// ErrInvalidPolicy is wrapped by every resolution error.
var ErrInvalidPolicy = errors.New("invalid authentication policy")

// Policy is the resolved authentication policy.
type Policy struct {
	SSLRequired      bool
	DefaultHasherID  string
	SendWelcomeEmail bool
	EnableGravatar   bool
	EnableTokenJob   bool
	SignupSkipLogin  bool

	TokenDuration       time.Duration
	TokenDeleteInterval time.Duration
	LookupTimeout       time.Duration

	Mode       string
	Production bool
}

// Default returns the policy used when no key is configured.
func Default() Policy {
	return Policy{
		SSLRequired:         false,
		DefaultHasherID:     "bcrypt",
		SendWelcomeEmail:    true,
		EnableGravatar:      true,
		EnableTokenJob:      true,
		SignupSkipLogin:     false,
		TokenDuration:       60 * time.Minute,
		TokenDeleteInterval: 5 * time.Minute,
		LookupTimeout:       5 * time.Second,
		Mode:                "dev",
	}
}

// InsecureProduction reports a production deployment that does not require TLS.
func (p Policy) InsecureProduction() bool {
	return p.Production && !p.SSLRequired
}

// Source is a key/value configuration lookup. *koanf.Koanf satisfies it.
type Source interface {
	Exists(key string) bool
	Get(key string) any
}

// Resolve reads every policy key from src, falling back to Default for
// missing keys. A present but malformed value is an error wrapping
// ErrInvalidPolicy. When the result is an insecure production deployment a
// warning is logged; resolution still succeeds.
func Resolve(src Source, logger *slog.Logger) (Policy, error) {
	if logger == nil {
		logger = slog.Default()
	}

	p := Default()
	r := resolver{src: src}

	r.boolean(KeySSLRequired, &p.SSLRequired)
	r.str(KeyDefaultHasher, &p.DefaultHasherID)
	r.boolean(KeySendWelcomeEmail, &p.SendWelcomeEmail)
	r.boolean(KeyEnableGravatar, &p.EnableGravatar)
	r.boolean(KeyEnableTokenJob, &p.EnableTokenJob)
	r.boolean(KeySignupSkipLogin, &p.SignupSkipLogin)
	r.duration(KeyTokenDuration, &p.TokenDuration)
	r.duration(KeyTokenDeleteInterval, &p.TokenDeleteInterval)
	r.duration(KeyLookupTimeout, &p.LookupTimeout)
	r.str(KeyMode, &p.Mode)

	if r.err != nil {
		return Policy{}, r.err
	}

	p.Mode = strings.ToLower(p.Mode)
	p.Production = p.Mode == "prod" || p.Mode == "production"

	if p.InsecureProduction() {
		logger.Warn("TLS is not required in a production deployment",
			"key", KeySSLRequired,
			"mode", p.Mode)
	}

	return p, nil
}

// resolver keeps the first error so Resolve reads as a flat list of keys.
type resolver struct {
	src Source
	err error
}

func (r *resolver) lookup(key string) (any, bool) {
	if r.err != nil || r.src == nil || !r.src.Exists(key) {
		return nil, false
	}
	return r.src.Get(key), true
}

func (r *resolver) fail(key string, value any, format string, args ...any) {
	r.err = oops.Code(CodeInvalid).
		With("key", key).
		With("value", fmt.Sprint(value)).
		Wrapf(ErrInvalidPolicy, format, args...)
}

func (r *resolver) boolean(key string, dst *bool) {
	raw, ok := r.lookup(key)
	if !ok {
		return
	}
	switch v := raw.(type) {
	case bool:
		*dst = v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			r.fail(key, raw, "%s must be a boolean", key)
			return
		}
		*dst = b
	default:
		r.fail(key, raw, "%s must be a boolean, got %T", key, raw)
	}
}

func (r *resolver) str(key string, dst *string) {
	raw, ok := r.lookup(key)
	if !ok {
		return
	}
	v, isString := raw.(string)
	v = strings.TrimSpace(v)
	if !isString || v == "" {
		r.fail(key, raw, "%s must be a non-empty string", key)
		return
	}
	*dst = v
}

func (r *resolver) duration(key string, dst *time.Duration) {
	raw, ok := r.lookup(key)
	if !ok {
		return
	}
	var d time.Duration
	switch v := raw.(type) {
	case time.Duration:
		d = v
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			r.fail(key, raw, "%s must be a duration such as 60m", key)
			return
		}
		d = parsed
	default:
		r.fail(key, raw, "%s must be a duration such as 60m, got %T", key, raw)
		return
	}
	if d <= 0 {
		r.fail(key, raw, "%s must be positive", key)
		return
	}
	*dst = d
}

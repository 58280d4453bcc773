// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/credgate/credgate/internal/policy"
	"github.com/credgate/credgate/pkg/errutil"
)

// Authenticator checks identifier/secret pairs against stored accounts.
// It holds no mutable state and is safe for concurrent use.
type Authenticator struct {
	accounts AccountLookup
	verifier *PasswordVerifier
	audit    AuditSink
	policy   policy.Policy
	dummy    StoredPasswordInfo
	logger   *slog.Logger
	metrics  *Metrics
	clock    func() time.Time
}

// NewAuthenticator creates an Authenticator. The registry's default hasher
// produces the decoy record verified when no account matches, so an unknown
// identifier costs about as much as a wrong password.
func NewAuthenticator(
	accounts AccountLookup,
	registry *HasherRegistry,
	audit AuditSink,
	pol policy.Policy,
	opts ...Option,
) (*Authenticator, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("account lookup is required")
	}
	if registry == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("hasher registry is required")
	}
	if audit == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("audit sink is required")
	}

	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	a := &Authenticator{
		accounts: accounts,
		verifier: NewPasswordVerifier(registry, o.logger),
		audit:    audit,
		policy:   pol,
		logger:   o.logger,
		metrics:  o.metrics,
		clock:    o.clock,
	}

	decoy := make([]byte, 16)
	if _, err := rand.Read(decoy); err != nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").With("operation", "generate decoy secret").Wrap(err)
	}
	dummy, err := registry.Default().Hash(hex.EncodeToString(decoy))
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").With("operation", "hash decoy secret").Wrap(err)
	}
	a.dummy = dummy

	return a, nil
}

// Authenticate verifies the credential and returns the matching identity.
//
// Every rejection records exactly one LoginFailure with the audit sink.
// Unknown identifiers, wrong secrets, unresolvable hashers and empty fields
// all return ErrInvalidCredentials. A failing or slow account lookup returns
// ErrDependencyUnavailable.
func (a *Authenticator) Authenticate(ctx context.Context, rawIdentifier, rawSecret string, req RequestContext) (*Identity, error) {
	cred := NewCredential(rawIdentifier, rawSecret)

	if a.policy.SSLRequired && !req.Secure {
		a.record(ctx, nil, cred, req, ReasonInsecureTransport)
		return nil, oops.Code(CodeInsecureTransport).Wrap(ErrInsecureTransport)
	}

	if !cred.Valid() {
		return nil, a.reject(ctx, nil, cred, req, ReasonValidation)
	}

	account, err := a.lookup(ctx, cred.Identifier)
	if errors.Is(err, ErrNotFound) {
		// Result discarded; the work keeps timing in line with a real mismatch.
		a.verifier.Verify(cred, a.dummy)
		return nil, a.reject(ctx, nil, cred, req, ReasonUnknownIdentifier)
	}
	if err != nil {
		errutil.LogError(ctx, a.logger, "account lookup failed", err)
		a.record(ctx, nil, cred, req, ReasonDependencyUnavailable)
		// The cause's own oops code would shadow ours, so it travels as context.
		return nil, oops.Code(CodeDependencyUnavailable).
			With("operation", "find account by identifier").
			With("cause", err.Error()).
			Wrap(ErrDependencyUnavailable)
	}

	if reason := a.verifier.VerifyDetailed(cred, account.Password); reason != ReasonNone {
		if reason == ReasonHasherUnresolved {
			// No hashing happened yet; pay for it so the rejection takes as long as a mismatch.
			a.verifier.Verify(cred, a.dummy)
		}
		accountID := account.ID
		return nil, a.reject(ctx, &accountID, cred, req, reason)
	}

	a.metrics.attempt("success")
	return &Identity{AccountID: account.ID, Identifier: cred.Identifier}, nil
}

type lookupResult struct {
	account *Account
	err     error
}

// lookup bounds the account lookup by the policy timeout even when the
// implementation ignores its context.
func (a *Authenticator) lookup(ctx context.Context, identifier string) (*Account, error) {
	if a.policy.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.policy.LookupTimeout)
		defer cancel()
	}

	done := make(chan lookupResult, 1)
	go func() {
		account, err := a.accounts.FindByIdentifier(ctx, identifier)
		done <- lookupResult{account: account, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		if res.account == nil {
			return nil, ErrNotFound
		}
		return res.account, nil
	case <-ctx.Done():
		return nil, oops.With("timeout", a.policy.LookupTimeout.String()).Wrap(ctx.Err())
	}
}

func (a *Authenticator) reject(ctx context.Context, accountID *ulid.ULID, cred Credential, req RequestContext, reason FailureReason) error {
	a.record(ctx, accountID, cred, req, reason)
	return oops.Code(CodeInvalidCredentials).Wrap(ErrInvalidCredentials)
}

func (a *Authenticator) record(ctx context.Context, accountID *ulid.ULID, cred Credential, req RequestContext, reason FailureReason) {
	a.metrics.attempt(string(reason))

	failure := LoginFailure{
		ID:         ulid.Make(),
		AccountID:  accountID,
		Identifier: cred.Identifier,
		Request:    req,
		Reason:     reason,
		OccurredAt: a.clock(),
	}

	// The caller's deadline may already have passed; the audit write still happens.
	if err := a.audit.RecordLoginFailure(context.WithoutCancel(ctx), failure); err != nil {
		a.metrics.auditFailure()
		errutil.LogWarn(ctx, a.logger, "best-effort login failure audit failed", err)
	}
}

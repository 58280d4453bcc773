// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/credgate/credgate/internal/auth"
	"github.com/credgate/credgate/internal/auth/mocks"
	"github.com/credgate/credgate/pkg/errutil"
)

type stubHistory struct {
	count     int
	countErr  error
	failures  []auth.LoginFailure
	listedFor *ulid.ULID
	limit     int
}

func (h *stubHistory) CountSince(_ context.Context, _ string, _ time.Time) (int, error) {
	return h.count, h.countErr
}

func (h *stubHistory) ListByAccount(_ context.Context, accountID ulid.ULID, limit int) ([]auth.LoginFailure, error) {
	h.listedFor = &accountID
	h.limit = limit
	return h.failures, nil
}

var failuresSince = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func TestPrintFailures_ListsAccountFailures(t *testing.T) {
	account := &auth.Account{ID: ulid.Make(), Email: "alice@example.com"}
	accounts := mocks.NewMockAccountStore(t)
	accounts.On("FindByIdentifier", mock.Anything, "alice@example.com").Return(account, nil)

	history := &stubHistory{
		count: 2,
		failures: []auth.LoginFailure{{
			Reason:     auth.ReasonPasswordMismatch,
			Request:    auth.RequestContext{RemoteAddr: "192.0.2.1:443"},
			OccurredAt: failuresSince.Add(time.Hour),
		}},
	}

	var out bytes.Buffer
	err := printFailures(context.Background(), &out, accounts, history, "alice@example.com", failuresSince, 5)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "2 failed login(s) for alice@example.com since 2026-04-01T00:00:00Z")
	assert.Contains(t, out.String(), "password_mismatch")
	assert.Contains(t, out.String(), "192.0.2.1:443")
	require.NotNil(t, history.listedFor)
	assert.Equal(t, account.ID, *history.listedFor)
	assert.Equal(t, 5, history.limit)
}

func TestPrintFailures_UnknownEmailStillCounts(t *testing.T) {
	accounts := mocks.NewMockAccountStore(t)
	accounts.On("FindByIdentifier", mock.Anything, "ghost@example.com").Return(nil, auth.ErrNotFound)
	history := &stubHistory{count: 3}

	var out bytes.Buffer
	require.NoError(t, printFailures(context.Background(), &out, accounts, history, "ghost@example.com", failuresSince, 5))

	assert.Contains(t, out.String(), "3 failed login(s)")
	assert.Contains(t, out.String(), "No account exists")
	assert.Nil(t, history.listedFor)
}

func TestPrintFailures_CountError(t *testing.T) {
	accounts := mocks.NewMockAccountStore(t)
	history := &stubHistory{countErr: errors.New("db down")}

	var out bytes.Buffer
	err := printFailures(context.Background(), &out, accounts, history, "alice@example.com", failuresSince, 5)
	assert.EqualError(t, err, "db down")
	accounts.AssertNotCalled(t, "FindByIdentifier", mock.Anything, mock.Anything)
}

func TestAccountFailuresCommand_RejectsNonPositiveLimit(t *testing.T) {
	_, _, err := execute(t, "", "account", "failures", "alice@example.com", "--limit", "0")
	errutil.AssertErrorCode(t, err, "INVALID_ARGUMENT")
}

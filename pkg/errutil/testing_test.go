// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/credgate/credgate/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("account_id", "123").Errorf("test error")
	errutil.AssertErrorContext(t, err, "account_id", "123")
}

func TestAssertNoErrorContext_MissingKey(t *testing.T) {
	err := oops.With("account_id", "123").Errorf("test error")
	errutil.AssertNoErrorContext(t, err, "reason")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

// Package mocks provides testify mocks of the auth interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/credgate/credgate/internal/auth"
)

// T is the subset of *testing.T the constructors need.
type T interface {
	mock.TestingT
	Cleanup(func())
}

// MockAccountStore mocks auth.AccountStore (and so auth.AccountLookup).
type MockAccountStore struct {
	mock.Mock
}

// NewMockAccountStore creates a mock that asserts its expectations on cleanup.
func NewMockAccountStore(t T) *MockAccountStore {
	m := &MockAccountStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// FindByIdentifier implements auth.AccountLookup.
func (m *MockAccountStore) FindByIdentifier(ctx context.Context, identifier string) (*auth.Account, error) {
	args := m.Called(ctx, identifier)
	account, _ := args.Get(0).(*auth.Account)
	return account, args.Error(1)
}

// UpdatePassword implements auth.AccountStore.
func (m *MockAccountStore) UpdatePassword(ctx context.Context, id ulid.ULID, password auth.StoredPasswordInfo) error {
	return m.Called(ctx, id, password).Error(0)
}

// MarkVerified implements auth.AccountStore.
func (m *MockAccountStore) MarkVerified(ctx context.Context, id ulid.ULID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// MockTokenStore mocks auth.TokenStore.
type MockTokenStore struct {
	mock.Mock
}

// NewMockTokenStore creates a mock that asserts its expectations on cleanup.
func NewMockTokenStore(t T) *MockTokenStore {
	m := &MockTokenStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Save implements auth.TokenStore.
func (m *MockTokenStore) Save(ctx context.Context, token *auth.Token) error {
	return m.Called(ctx, token).Error(0)
}

// Find implements auth.TokenStore.
func (m *MockTokenStore) Find(ctx context.Context, id string) (*auth.Token, error) {
	args := m.Called(ctx, id)
	token, _ := args.Get(0).(*auth.Token)
	return token, args.Error(1)
}

// Consume implements auth.TokenStore.
func (m *MockTokenStore) Consume(ctx context.Context, id string, isSignUp bool) (*auth.Token, error) {
	args := m.Called(ctx, id, isSignUp)
	token, _ := args.Get(0).(*auth.Token)
	return token, args.Error(1)
}

// DeleteByEmail implements auth.TokenStore.
func (m *MockTokenStore) DeleteByEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// DeleteExpired implements auth.TokenStore.
func (m *MockTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// MockAuditSink mocks auth.AuditSink.
type MockAuditSink struct {
	mock.Mock
}

// NewMockAuditSink creates a mock that asserts its expectations on cleanup.
func NewMockAuditSink(t T) *MockAuditSink {
	m := &MockAuditSink{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// RecordLoginFailure implements auth.AuditSink.
func (m *MockAuditSink) RecordLoginFailure(ctx context.Context, failure auth.LoginFailure) error {
	return m.Called(ctx, failure).Error(0)
}

// MockPasswordHasher mocks auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock that asserts its expectations on cleanup.
func NewMockPasswordHasher(t T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ID implements auth.PasswordHasher.
func (m *MockPasswordHasher) ID() string {
	return m.Called().String(0)
}

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (auth.StoredPasswordInfo, error) {
	args := m.Called(password)
	stored, _ := args.Get(0).(auth.StoredPasswordInfo)
	return stored, args.Error(1)
}

// Verify implements auth.PasswordHasher.
func (m *MockPasswordHasher) Verify(password string, stored auth.StoredPasswordInfo) (bool, error) {
	args := m.Called(password, stored)
	return args.Bool(0), args.Error(1)
}

var (
	_ auth.AccountStore   = (*MockAccountStore)(nil)
	_ auth.TokenStore     = (*MockTokenStore)(nil)
	_ auth.AuditSink      = (*MockAuditSink)(nil)
	_ auth.PasswordHasher = (*MockPasswordHasher)(nil)
)

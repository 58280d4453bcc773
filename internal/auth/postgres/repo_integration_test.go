// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Credgate Contributors

//go:build integration

package postgres_test

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/credgate/credgate/internal/auth"
	"github.com/credgate/credgate/internal/auth/postgres"
	"github.com/credgate/credgate/internal/policy"
)

func newAccount(email string, password string) *auth.Account {
	stored, err := auth.NewSHA256Hasher().Hash(password)
	Expect(err).NotTo(HaveOccurred())
	return &auth.Account{
		ID:        ulid.Make(),
		Email:     email,
		Password:  stored,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

var _ = Describe("AccountRepository", func() {
	var repo *postgres.AccountRepository

	BeforeEach(func() {
		truncate()
		repo = postgres.NewAccountRepository(testPool)
	})

	It("finds an account ignoring email case", func() {
		account := newAccount("Hank@Example.com", "pw")
		Expect(repo.Create(suiteCtx, account)).To(Succeed())

		found, err := repo.FindByIdentifier(suiteCtx, "hank@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal(account.ID))
		Expect(found.Password).To(Equal(account.Password))
		Expect(found.VerifiedAt).To(BeNil())
	})

	It("rejects a second account with the same email", func() {
		Expect(repo.Create(suiteCtx, newAccount("ivy@example.com", "pw"))).To(Succeed())
		err := repo.Create(suiteCtx, newAccount("IVY@example.com", "pw"))
		Expect(err).To(MatchError(auth.ErrAccountExists))
	})

	It("returns ErrNotFound for an unknown identifier", func() {
		_, err := repo.FindByIdentifier(suiteCtx, "nobody@example.com")
		Expect(err).To(MatchError(auth.ErrNotFound))
	})

	It("updates the password and verification time", func() {
		account := newAccount("jack@example.com", "old")
		Expect(repo.Create(suiteCtx, account)).To(Succeed())

		bcrypt, err := auth.NewBcryptHasher(4).Hash("new")
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.UpdatePassword(suiteCtx, account.ID, bcrypt)).To(Succeed())

		at := time.Now().UTC().Truncate(time.Microsecond)
		Expect(repo.MarkVerified(suiteCtx, account.ID, at)).To(Succeed())
		Expect(repo.MarkVerified(suiteCtx, account.ID, at.Add(time.Hour))).To(Succeed())

		found, err := repo.FindByIdentifier(suiteCtx, "jack@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.Password.HasherID).To(Equal(auth.HasherBcrypt))
		Expect(found.Password.Salt).To(BeEmpty())
		Expect(found.VerifiedAt).NotTo(BeNil())
		Expect(found.VerifiedAt.Equal(at)).To(BeTrue())
	})
})

var _ = Describe("TokenRepository", func() {
	var repo *postgres.TokenRepository

	BeforeEach(func() {
		truncate()
		repo = postgres.NewTokenRepository(testPool)
	})

	It("lets exactly one concurrent redemption succeed", func() {
		token, err := auth.NewToken("kim@example.com", false, time.Hour, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Save(suiteCtx, token)).To(Succeed())

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				if _, err := repo.Consume(suiteCtx, token.ID, false); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				} else {
					Expect(err).To(MatchError(auth.ErrNotFound))
				}
			}()
		}
		wg.Wait()
		Expect(successes).To(Equal(1))
	})

	It("does not consume a token of the other kind", func() {
		token, err := auth.NewToken("lee@example.com", true, time.Hour, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Save(suiteCtx, token)).To(Succeed())

		_, err = repo.Consume(suiteCtx, token.ID, false)
		Expect(err).To(MatchError(auth.ErrNotFound))

		found, err := repo.Find(suiteCtx, token.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(found.IsSignUp).To(BeTrue())
	})

	It("sweeps only expired tokens", func() {
		now := time.Now().UTC()
		old, err := auth.NewToken("mia@example.com", false, time.Minute, now.Add(-2*time.Hour))
		Expect(err).NotTo(HaveOccurred())
		fresh, err := auth.NewToken("mia@example.com", false, time.Hour, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Save(suiteCtx, old)).To(Succeed())
		Expect(repo.Save(suiteCtx, fresh)).To(Succeed())

		n, err := repo.DeleteExpired(suiteCtx, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))

		_, err = repo.Find(suiteCtx, fresh.ID)
		Expect(err).NotTo(HaveOccurred())

		Expect(repo.DeleteByEmail(suiteCtx, "MIA@example.com")).To(Succeed())
		_, err = repo.Find(suiteCtx, fresh.ID)
		Expect(err).To(MatchError(auth.ErrNotFound))
	})
})

var _ = Describe("Authenticator against PostgreSQL", func() {
	BeforeEach(truncate)

	It("authenticates and audits failures in the database", func() {
		accounts := postgres.NewAccountRepository(testPool)
		failures := postgres.NewLoginFailureRepository(testPool)

		account := newAccount("nora@example.com", "correct horse")
		Expect(accounts.Create(suiteCtx, account)).To(Succeed())

		registry, err := auth.NewHasherRegistry(auth.HasherSHA256, auth.NewSHA256Hasher(), auth.NewBcryptHasher(4))
		Expect(err).NotTo(HaveOccurred())

		pol := policy.Default()
		pol.DefaultHasherID = auth.HasherSHA256
		authenticator, err := auth.NewAuthenticator(accounts, registry, failures, pol)
		Expect(err).NotTo(HaveOccurred())

		identity, err := authenticator.Authenticate(suiteCtx, " NORA@example.com ", "correct horse", auth.RequestContext{})
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.AccountID).To(Equal(account.ID))

		_, err = authenticator.Authenticate(suiteCtx, "nora@example.com", "wrong", auth.RequestContext{RequestID: "r1"})
		Expect(err).To(MatchError(auth.ErrInvalidCredentials))

		_, err = authenticator.Authenticate(suiteCtx, "ghost@example.com", "wrong", auth.RequestContext{})
		Expect(err).To(MatchError(auth.ErrInvalidCredentials))

		recent, err := failures.ListByAccount(suiteCtx, account.ID, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(HaveLen(1))
		Expect(recent[0].Reason).To(Equal(auth.ReasonPasswordMismatch))
		Expect(recent[0].Request.RequestID).To(Equal("r1"))

		n, err := failures.CountSince(suiteCtx, "ghost@example.com", time.Now().Add(-time.Minute))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
	})
})

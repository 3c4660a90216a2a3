// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/stretchr/testify/mock"

	"github.com/holomush/deskauth/internal/auth"
	"github.com/holomush/deskauth/internal/auth/mocks"
	"github.com/holomush/deskauth/pkg/errutil"
)

// account is a persisted user row as the embedding application stores it.
type account struct {
	id   int64
	hash string
}

// accountStore is an in-memory stand-in for the application's user table.
// Safe for concurrent use.
type accountStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]account
}

func newAccountStore() *accountStore {
	return &accountStore{rows: make(map[string]account)}
}

func (s *accountStore) Create(username, hash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[username]; ok {
		return 0, fmt.Errorf("username %q taken", username)
	}
	s.nextID++
	s.rows[username] = account{id: s.nextID, hash: hash}
	return s.nextID, nil
}

func (s *accountStore) Lookup(username string) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[username]
	return a, ok
}

func (s *accountStore) UpdateHash(username, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.rows[username]
	a.hash = hash
	s.rows[username] = a
}

func cheapParams(memoryKiB uint32) auth.Argon2idParams {
	return auth.Argon2idParams{
		MemoryKiB:   memoryKiB,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newService(params auth.Argon2idParams) *auth.Service {
	hasher, err := auth.NewArgon2idHasher(params)
	Expect(err).NotTo(HaveOccurred())
	svc, err := auth.NewAuthServiceWithLogger(auth.DefaultPasswordPolicy(), hasher, auth.NewSessionStore(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	Expect(err).NotTo(HaveOccurred())
	return svc
}

// signUp registers and persists an account, returning its id.
func signUp(ctx context.Context, svc *auth.Service, store *accountStore, username, password string) int64 {
	result, err := svc.Register(ctx, username, password)
	Expect(err).NotTo(HaveOccurred())
	Expect(result.Success).To(BeTrue(), "register rejected: %s", result.Reason)
	id, err := store.Create(username, result.CredentialHash)
	Expect(err).NotTo(HaveOccurred())
	return id
}

// signIn looks the account up and logs in only after verification.
func signIn(ctx context.Context, svc *auth.Service, store *accountStore, username, password string) (*auth.AuthResult, error) {
	row, ok := store.Lookup(username)
	if !ok {
		return &auth.AuthResult{Success: false, Reason: auth.ReasonInvalidCredentials}, nil
	}
	return svc.LoginWithCredential(ctx, username, row.id, password, row.hash)
}

var _ = Describe("Account lifecycle", func() {
	var (
		ctx   context.Context
		store *accountStore
		svc   *auth.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newAccountStore()
		svc = newService(cheapParams(1024))
	})

	It("registers, signs in, and signs out", func() {
		id := signUp(ctx, svc, store, "alice", "Password1")

		result, err := signIn(ctx, svc, store, "alice", "Password1")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Success).To(BeTrue())
		Expect(result.Identity).To(Equal(&auth.Identity{ID: id, Username: "alice"}))

		current, ok := svc.WhoAmI(ctx)
		Expect(ok).To(BeTrue())
		Expect(current.ID).To(Equal(id))

		svc.Logout(ctx)
		_, ok = svc.WhoAmI(ctx)
		Expect(ok).To(BeFalse())
	})

	It("keeps the session anonymous on a wrong password", func() {
		signUp(ctx, svc, store, "alice", "Password1")

		result, err := signIn(ctx, svc, store, "alice", "Password2")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Success).To(BeFalse())
		Expect(result.Reason).To(Equal(auth.ReasonInvalidCredentials))

		_, ok := svc.WhoAmI(ctx)
		Expect(ok).To(BeFalse())
	})

	It("replaces the signed-in user on a second login", func() {
		signUp(ctx, svc, store, "alice", "Password1")
		bobID := signUp(ctx, svc, store, "bob", "Password2")

		_, err := signIn(ctx, svc, store, "alice", "Password1")
		Expect(err).NotTo(HaveOccurred())
		_, err = signIn(ctx, svc, store, "bob", "Password2")
		Expect(err).NotTo(HaveOccurred())

		current, ok := svc.WhoAmI(ctx)
		Expect(ok).To(BeTrue())
		Expect(current.ID).To(Equal(bobID))
	})

	It("surfaces a corrupted stored hash as a hard failure", func() {
		signUp(ctx, svc, store, "alice", "Password1")
		store.UpdateHash("alice", "$argon2id$v=19$m=1024,t=1,p=1$!!!$!!!")

		_, err := signIn(ctx, svc, store, "alice", "Password1")
		Expect(err).To(HaveOccurred())
		Expect(auth.IsMalformedHash(err)).To(BeTrue())

		_, ok := svc.WhoAmI(ctx)
		Expect(ok).To(BeFalse())
	})

	It("upgrades hashes made with older parameters", func() {
		signUp(ctx, svc, store, "alice", "Password1")
		legacy, _ := store.Lookup("alice")

		upgraded := newService(cheapParams(2048))
		Expect(upgraded.NeedsRehash(legacy.hash)).To(BeTrue())

		result, err := signIn(ctx, upgraded, store, "alice", "Password1")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Success).To(BeTrue(), "older hashes keep verifying")

		fresh, err := upgraded.Register(ctx, "alice", "Password1")
		Expect(err).NotTo(HaveOccurred())
		store.UpdateHash("alice", fresh.CredentialHash)

		current, _ := store.Lookup("alice")
		Expect(upgraded.NeedsRehash(current.hash)).To(BeFalse())
	})

	It("reports hashing failures without producing a hash", func() {
		hasher := mocks.NewMockPasswordHasher(GinkgoT())
		hasher.On("Hash", mock.Anything).Return("", errors.New("entropy exhausted"))
		failing, err := auth.NewAuthServiceWithLogger(auth.DefaultPasswordPolicy(), hasher, auth.NewSessionStore(),
			slog.New(slog.NewTextHandler(io.Discard, nil)))
		Expect(err).NotTo(HaveOccurred())

		result, err := failing.Register(ctx, "alice", "Password1")
		Expect(err).To(HaveOccurred())
		Expect(auth.IsHashingFailure(err)).To(BeTrue())
		code, ok := errutil.Code(err)
		Expect(ok).To(BeTrue())
		Expect(code).To(Equal(auth.CodeHashingFailed))
		if result != nil {
			Expect(result.CredentialHash).To(BeEmpty())
		}
	})

	Describe("concurrent sign-ups", func() {
		It("produces a distinct verifiable hash per account", func() {
			const accounts = 12
			var wg sync.WaitGroup
			for i := range accounts {
				wg.Add(1)
				go func(n int) {
					defer GinkgoRecover()
					defer wg.Done()
					signUp(ctx, svc, store, fmt.Sprintf("user%d", n), fmt.Sprintf("Password%d", n))
				}(i)
			}
			wg.Wait()

			seen := make(map[string]bool, accounts)
			for i := range accounts {
				row, ok := store.Lookup(fmt.Sprintf("user%d", i))
				Expect(ok).To(BeTrue())
				Expect(seen).NotTo(HaveKey(row.hash))
				seen[row.hash] = true

				match, err := svc.VerifyCredential(ctx, fmt.Sprintf("Password%d", i), row.hash)
				Expect(err).NotTo(HaveOccurred())
				Expect(match).To(BeTrue())
			}
		})
	})
})

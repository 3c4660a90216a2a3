// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"sync"
)

// Identity is an authenticated principal. The id is allocated by the caller's
// account store; two identities are the same principal when their ids match.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// NewIdentity creates an Identity.
func NewIdentity(id int64, username string) Identity {
	return Identity{ID: id, Username: username}
}

// Equal reports whether both identities refer to the same principal.
func (i Identity) Equal(other Identity) bool {
	return i.ID == other.ID
}

// SessionState names the two states of a SessionStore.
type SessionState int

// Session states.
const (
	StateAnonymous SessionState = iota
	StateAuthenticated
)

// String returns the state name.
func (s SessionState) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// SessionStore holds at most one authenticated Identity for the lifetime of
// the process. It starts anonymous and is never persisted.
//
// A SessionStore is safe for concurrent use. Create one at startup and pass it
// to every component that needs it.
type SessionStore struct {
	mu            sync.RWMutex
	current       Identity
	authenticated bool
}

// NewSessionStore creates an anonymous session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Login replaces the current identity unconditionally.
func (s *SessionStore) Login(identity Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = identity
	s.authenticated = true
}

// Logout clears the current identity. Calling Logout while anonymous is a no-op.
func (s *SessionStore) Logout() {
	s.Clear()
}

// Clear logs out and returns the identity that was current, read under the
// same lock, and whether one was.
func (s *SessionStore) Clear() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, was := s.current, s.authenticated
	s.current = Identity{}
	s.authenticated = false
	return prev, was
}

// GetCurrent returns a copy of the current identity and true, or the zero
// Identity and false when anonymous.
func (s *SessionStore) GetCurrent() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current, s.authenticated
}

// State returns the current session state.
func (s *SessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.authenticated {
		return StateAuthenticated
	}
	return StateAnonymous
}

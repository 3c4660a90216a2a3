// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth provides the authentication core of the desktop application.
//
// # Components
//
//   - PasswordPolicy - validates candidate passwords, first violated rule wins
//   - Argon2idHasher - produces and verifies self-describing argon2id hash strings
//   - SessionStore - holds at most one authenticated Identity for the process
//   - Service - register, verify, login, logout and whoami over the three above
//
// Nothing in this package persists data. Register returns the credential hash and
// the caller stores it next to the username; the caller's store also allocates the
// integer account id that Login receives.
//
// # Failures
//
// Input problems (empty username, policy violations, wrong password) are reported as
// results carrying a Reason. Only AUTH_HASHING_FAILED and AUTH_MALFORMED_HASH are
// returned as errors; use IsHashingFailure and IsMalformedHash to branch on them.
package auth

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/deskauth/internal/auth"
	"github.com/holomush/deskauth/internal/auth/mocks"
)

// logEntry represents a parsed JSON log entry.
type logEntry struct {
	Level    string `json:"level"`
	Msg      string `json:"msg"`
	Event    string `json:"event"`
	Reason   string `json:"reason"`
	Code     string `json:"code"`
	Username string `json:"username"`
	UserID   int64  `json:"user_id"`
}

func parseLogs(t *testing.T, buf *bytes.Buffer) []logEntry {
	t.Helper()
	var entries []logEntry
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry logEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "line: %s", scanner.Text())
		entries = append(entries, entry)
	}
	return entries
}

func newLoggingService(t *testing.T, hasher auth.PasswordHasher) (*auth.Service, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc, err := auth.NewAuthServiceWithLogger(auth.DefaultPasswordPolicy(), hasher, auth.NewSessionStore(), logger)
	require.NoError(t, err)
	return svc, &buf
}

func TestService_Register_LogsRejectionReason(t *testing.T) {
	svc, buf := newLoggingService(t, mocks.NewMockPasswordHasher(t))

	_, err := svc.Register(context.Background(), "bob", "short")
	require.NoError(t, err)

	entries := parseLogs(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "register", entries[0].Event)
	assert.Equal(t, "PASSWORD_TOO_SHORT", entries[0].Reason)
}

func TestService_Register_NeverLogsSecrets(t *testing.T) {
	svc, buf := newLoggingService(t, newFastHasher(t))

	res, err := svc.Register(context.Background(), "bob", "GoodPass123")
	require.NoError(t, err)
	require.True(t, res.Success)

	out := buf.String()
	assert.Contains(t, out, "credential registered")
	assert.NotContains(t, out, "GoodPass123")
	assert.NotContains(t, out, res.CredentialHash)
}

func TestService_Register_LogsHashingFailure(t *testing.T) {
	hasher := mocks.NewMockPasswordHasher(t)
	hasher.On("Hash", "GoodPass123").Return("", errors.New("rng unavailable"))
	svc, buf := newLoggingService(t, hasher)

	_, err := svc.Register(context.Background(), "bob", "GoodPass123")
	require.Error(t, err)

	entries := parseLogs(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, "register", entries[0].Event)
}

func TestService_LoginLogout_LogsSessionChanges(t *testing.T) {
	svc, buf := newLoggingService(t, mocks.NewMockPasswordHasher(t))
	ctx := context.Background()

	svc.Login(ctx, "alice", 42)
	svc.Logout(ctx)
	svc.Logout(ctx) // anonymous: nothing to log

	entries := parseLogs(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "session started", entries[0].Msg)
	assert.Equal(t, "login", entries[0].Event)
	assert.Equal(t, int64(42), entries[0].UserID)
	assert.Equal(t, "session ended", entries[1].Msg)
	assert.Equal(t, int64(42), entries[1].UserID)
	assert.Equal(t, "alice", entries[1].Username)
}

func TestService_ConcurrentLogout_LogsEachSessionOnce(t *testing.T) {
	svc, buf := newLoggingService(t, mocks.NewMockPasswordHasher(t))
	ctx := context.Background()

	const rounds = 50
	for round := int64(1); round <= rounds; round++ {
		svc.Login(ctx, fmt.Sprintf("user-%d", round), round)

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				svc.Logout(ctx)
			}()
		}
		wg.Wait()
	}

	ended := make(map[int64]int)
	for _, e := range parseLogs(t, buf) {
		if e.Msg != "session ended" {
			continue
		}
		assert.Equal(t, fmt.Sprintf("user-%d", e.UserID), e.Username)
		ended[e.UserID]++
	}
	require.Len(t, ended, rounds)
	for id, n := range ended {
		assert.Equal(t, 1, n, "session %d ended more than once", id)
	}
}

func TestService_VerifyCredential_LogsMalformedHash(t *testing.T) {
	svc, buf := newLoggingService(t, newFastHasher(t))

	_, err := svc.VerifyCredential(context.Background(), "GoodPass123", "not-a-valid-hash-string")
	require.Error(t, err)

	entries := parseLogs(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, "verify", entries[0].Event)
	assert.Equal(t, auth.CodeMalformedHash, entries[0].Code)
}

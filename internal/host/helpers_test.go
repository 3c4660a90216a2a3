// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holomush/deskauth/internal/auth"
	"github.com/holomush/deskauth/internal/host"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAuthDispatcher wires a dispatcher to a real service with a cheap KDF.
func newAuthDispatcher(t *testing.T, opts ...host.Option) (*host.Dispatcher, *auth.Service) {
	t.Helper()
	hasher, err := auth.NewArgon2idHasher(auth.Argon2idParams{
		MemoryKiB:   1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	require.NoError(t, err)

	svc, err := auth.NewAuthServiceWithLogger(auth.DefaultPasswordPolicy(), hasher, auth.NewSessionStore(), discardLogger())
	require.NoError(t, err)

	d := host.NewDispatcher(append([]host.Option{host.WithLogger(discardLogger())}, opts...)...)
	require.NoError(t, host.RegisterAuthHandlers(d, svc))
	return d, svc
}

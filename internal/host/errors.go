// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"github.com/samber/oops"
)

// Error codes for dispatch failures.
const (
	CodeUnknownCommand = "HOST_UNKNOWN_COMMAND"
	CodeInvalidArgs    = "HOST_INVALID_ARGS"
	CodeInternal       = "HOST_INTERNAL"
)

// ErrUnknownCommand creates an error for an unregistered command name.
func ErrUnknownCommand(cmd string) error {
	return oops.Code(CodeUnknownCommand).
		With("command", cmd).
		Errorf("unknown command: %s", cmd)
}

// ErrInvalidArgs creates an error for arguments a handler cannot accept.
func ErrInvalidArgs(cmd, detail string) error {
	return oops.Code(CodeInvalidArgs).
		With("command", cmd).
		Errorf("invalid arguments for %s: %s", cmd, detail)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"github.com/samber/oops"
)

// Error codes for hard authentication failures.
const (
	CodeHashingFailed = "AUTH_HASHING_FAILED"
	CodeMalformedHash = "AUTH_MALFORMED_HASH"
	CodeInvalidConfig = "AUTH_INVALID_CONFIG"
)

// errMalformedHash creates an error for a stored hash that does not parse.
func errMalformedHash(reason string) error {
	return oops.Code(CodeMalformedHash).
		With("reason", reason).
		Errorf("malformed password hash: %s", reason)
}

// IsMalformedHash returns true if err is an AUTH_MALFORMED_HASH error.
func IsMalformedHash(err error) bool {
	return hasCode(err, CodeMalformedHash)
}

// IsHashingFailure returns true if err is an AUTH_HASHING_FAILED error.
func IsHashingFailure(err error) bool {
	return hasCode(err, CodeHashingFailed)
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}

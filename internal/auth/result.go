// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

// Reason is the structured cause of an unsuccessful authentication result.
// The zero value means no failure.
type Reason string

// Failure reasons reported on results. These are input problems the user can
// correct and retry; they are never returned as errors.
const (
	ReasonNone               Reason = ""
	ReasonEmptyUsername      Reason = "EMPTY_USERNAME"
	ReasonTooShort           Reason = "PASSWORD_TOO_SHORT"
	ReasonMissingUppercase   Reason = "PASSWORD_MISSING_UPPERCASE"
	ReasonMissingLowercase   Reason = "PASSWORD_MISSING_LOWERCASE"
	ReasonMissingDigit       Reason = "PASSWORD_MISSING_DIGIT"
	ReasonInvalidCredentials Reason = "INVALID_CREDENTIALS"
)

// String returns the reason code.
func (r Reason) String() string {
	return string(r)
}

// Status messages for successful results.
const (
	MessageRegistered = "Registration successful"
	MessageLoggedIn   = "Login successful"
)

// AuthResult is the outcome of a Register or Login call.
//
// On success Reason is empty. CredentialHash is set only by Register and Identity
// only by a login, so the status text in Message is never overloaded with data.
type AuthResult struct {
	Success        bool      `json:"success"`
	Reason         Reason    `json:"reason,omitempty"`
	Message        string    `json:"message"`
	CredentialHash string    `json:"credential_hash,omitempty"`
	Identity       *Identity `json:"identity,omitempty"`
}

func failed(reason Reason, message string) *AuthResult {
	return &AuthResult{
		Success: false,
		Reason:  reason,
		Message: message,
	}
}

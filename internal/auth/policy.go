// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// DefaultMinPasswordLength is the minimum password length in characters.
const DefaultMinPasswordLength = 8

// PolicyResult is the outcome of a password policy check: valid, or exactly one
// violated rule.
type PolicyResult struct {
	Reason  Reason
	Message string
}

// Valid reports whether the password satisfied every rule.
func (r PolicyResult) Valid() bool {
	return r.Reason == ReasonNone
}

// PasswordPolicy validates candidate passwords.
type PasswordPolicy struct {
	MinLength int
}

// DefaultPasswordPolicy returns the policy with an 8 character minimum.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: DefaultMinPasswordLength}
}

// Validate checks the password against the rules in order: length, uppercase,
// lowercase, digit. The first violated rule is reported.
//
// Length is counted in code points. Character classes follow Unicode general
// categories: Lu for uppercase, Ll for lowercase and Nd for digits.
func (p PasswordPolicy) Validate(password string) PolicyResult {
	minLen := p.MinLength
	if minLen <= 0 {
		minLen = DefaultMinPasswordLength
	}

	if utf8.RuneCountInString(password) < minLen {
		return PolicyResult{
			Reason:  ReasonTooShort,
			Message: fmt.Sprintf("Password must be at least %d characters long", minLen),
		}
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return PolicyResult{
			Reason:  ReasonMissingUppercase,
			Message: "Password must contain at least one uppercase letter",
		}
	}
	if !hasLower {
		return PolicyResult{
			Reason:  ReasonMissingLowercase,
			Message: "Password must contain at least one lowercase letter",
		}
	}
	if !hasDigit {
		return PolicyResult{
			Reason:  ReasonMissingDigit,
			Message: "Password must contain at least one number",
		}
	}

	return PolicyResult{}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/deskauth/internal/auth"
)

func TestPasswordPolicy_Validate(t *testing.T) {
	policy := auth.DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		want     auth.Reason
	}{
		{"valid password", "ValidPass123", auth.ReasonNone},
		{"exactly eight characters", "Abcdefg1", auth.ReasonNone},
		{"empty", "", auth.ReasonTooShort},
		{"seven characters", "Short1A", auth.ReasonTooShort},
		{"too short wins over missing classes", "abc", auth.ReasonTooShort},
		{"no uppercase", "lowercase123", auth.ReasonMissingUppercase},
		{"no letters at all reports uppercase first", "12345678", auth.ReasonMissingUppercase},
		{"no lowercase", "UPPERCASE123", auth.ReasonMissingLowercase},
		{"no digit", "NoNumbersHere", auth.ReasonMissingDigit},
		{"spaces count toward length", "Aa1     ", auth.ReasonNone},
		{"unicode uppercase and lowercase", "Ärger123ß", auth.ReasonNone},
		{"non-latin decimal digit", "Password٣", auth.ReasonNone},
		{"non-decimal numerals are not digits", "PasswordⅣ", auth.ReasonMissingDigit},
		{"titlecase letter is not uppercase", "ǅabcdefg1", auth.ReasonMissingUppercase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := policy.Validate(tt.password)
			assert.Equal(t, tt.want, res.Reason)
			assert.Equal(t, tt.want == auth.ReasonNone, res.Valid())
			if !res.Valid() {
				assert.NotEmpty(t, res.Message)
			} else {
				assert.Empty(t, res.Message)
			}
		})
	}
}

func TestPasswordPolicy_ShortPasswordsAlwaysTooShort(t *testing.T) {
	policy := auth.DefaultPasswordPolicy()

	for n := 0; n < auth.DefaultMinPasswordLength; n++ {
		for _, unit := range []string{"a", "A", "1", "Aa1", "é"} {
			pw := strings.Repeat(unit, n)
			if len([]rune(pw)) >= auth.DefaultMinPasswordLength {
				continue
			}
			assert.Equal(t, auth.ReasonTooShort, policy.Validate(pw).Reason, "password %q", pw)
		}
	}
}

func TestPasswordPolicy_CountsCharactersNotBytes(t *testing.T) {
	policy := auth.DefaultPasswordPolicy()

	// 7 code points, 14 bytes.
	assert.Equal(t, auth.ReasonTooShort, policy.Validate("Ééééé1é").Reason)
}

func TestPasswordPolicy_Messages(t *testing.T) {
	policy := auth.DefaultPasswordPolicy()

	assert.Equal(t, "Password must be at least 8 characters long", policy.Validate("short").Message)
	assert.Equal(t, "Password must contain at least one uppercase letter", policy.Validate("lowercase123").Message)
	assert.Equal(t, "Password must contain at least one lowercase letter", policy.Validate("UPPERCASE123").Message)
	assert.Equal(t, "Password must contain at least one number", policy.Validate("NoNumbers").Message)
}

func TestPasswordPolicy_CustomMinLength(t *testing.T) {
	policy := auth.PasswordPolicy{MinLength: 12}

	res := policy.Validate("ValidPass12")
	assert.Equal(t, auth.ReasonTooShort, res.Reason)
	assert.Contains(t, res.Message, "12 characters")

	assert.True(t, policy.Validate("ValidPass123").Valid())
}

func TestPasswordPolicy_ZeroValueUsesDefault(t *testing.T) {
	var policy auth.PasswordPolicy

	assert.Equal(t, auth.ReasonTooShort, policy.Validate("Abc1").Reason)
	assert.True(t, policy.Validate("ValidPass123").Valid())
}

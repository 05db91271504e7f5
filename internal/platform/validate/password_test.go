// Copyright (c) 2026 Taskora. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskora/taskora/internal/platform/validate"
)

/*
TestPasswordStrength_Scoring walks the scoring matrix: one point per
criterion, a two-point penalty for weak patterns, validity at score >= 4.
*/
func TestPasswordStrength_Scoring(t *testing.T) {
	tests := []struct {
		name     string
		password string
		score    int
		isValid  bool
	}{
		{"empty", "", 0, false},
		{"lowercase_only", "abcdefgh", 2, false},
		{"four_criteria_met", "Abcdef1!", 5, true},
		{"all_criteria_met", "Str0ng&Passphrase", 6, true},
		{"weak_word_drops_below_threshold", "Password1!", 3, false},
		{"weak_word_but_still_passing", "Password123!", 4, true},
		{"leading_123_penalty", "123Abc!@", 3, false},
		{"qwerty_penalty", "qwertyA1!", 3, false},
		{"repeated_characters_penalty", "aaaB1!", 2, false},
		{"score_never_negative", "aaa", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate.PasswordStrength(tt.password)

			assert.Equal(t, tt.score, result.Score)
			assert.Equal(t, tt.isValid, result.IsValid)
		})
	}
}

/*
TestPasswordStrength_Feedback verifies one message per missing criterion
plus the weak-pattern warning when a penalty applied.
*/
func TestPasswordStrength_Feedback(t *testing.T) {
	t.Run("missing_criteria_listed", func(t *testing.T) {
		result := validate.PasswordStrength("abcd")

		require.False(t, result.IsValid)
		assert.Equal(t, []string{
			"Use at least 8 characters",
			"Longer passwords (12+) are stronger",
			"Add an uppercase letter",
			"Add a digit",
			"Add a symbol",
		}, result.Feedback)
	})

	t.Run("weak_pattern_warning", func(t *testing.T) {
		result := validate.PasswordStrength("Password1!")

		require.False(t, result.IsValid)
		assert.Contains(t, result.Feedback,
			"Avoid common patterns like \"123\", \"password\", or repeated characters")
	})

	t.Run("strong_password_no_feedback", func(t *testing.T) {
		result := validate.PasswordStrength("Correct&Horse7Battery")

		assert.True(t, result.IsValid)
		assert.Empty(t, result.Feedback)
	})
}

/*
TestValidator_Password checks that the chainable rule surfaces each missing
criterion as its own field error, and stays silent for valid passwords.
*/
func TestValidator_Password(t *testing.T) {
	t.Run("weak_password_rejected", func(t *testing.T) {
		v := &validate.Validator{}
		v.Password("password", "short")

		assert.True(t, v.HasErrors())
	})

	t.Run("strong_password_accepted", func(t *testing.T) {
		v := &validate.Validator{}
		v.Password("password", "V3ry$ecureIndeed")

		assert.False(t, v.HasErrors())
		assert.Nil(t, v.Err())
	})
}

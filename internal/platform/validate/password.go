// Copyright (c) 2026 Taskora. All rights reserved.

package validate

import (
	"strings"
	"unicode"
)

// # Password Strength Policy

// StrengthResult is the outcome of scoring a candidate password.
type StrengthResult struct {
	// Score is the 0–6 strength score after weak-pattern penalties.
	Score int
	// IsValid reports whether the password meets the minimum score of 4.
	IsValid bool
	// Feedback lists one human-readable message per missing criterion.
	Feedback []string
}

// weakSequences are literal fragments that mark a password as guessable.
var weakSequences = []string{"password", "qwerty"}

// PasswordStrength scores a candidate password against the platform policy.
//
// # Scoring
//
// One point each for: length ≥ 8, length ≥ 12, a lowercase letter, an
// uppercase letter, a digit, a symbol. Two points are deducted when a common
// weak pattern matches (leading "123", the literal word "password" or
// "qwerty", or 3+ repeated characters). The password is valid iff the final
// score is at least 4.
func PasswordStrength(password string) StrengthResult {
	result := StrengthResult{}

	if len(password) >= 8 {
		result.Score++
	} else {
		result.Feedback = append(result.Feedback, "Use at least 8 characters")
	}

	if len(password) >= 12 {
		result.Score++
	} else {
		result.Feedback = append(result.Feedback, "Longer passwords (12+) are stronger")
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if hasLower {
		result.Score++
	} else {
		result.Feedback = append(result.Feedback, "Add a lowercase letter")
	}
	if hasUpper {
		result.Score++
	} else {
		result.Feedback = append(result.Feedback, "Add an uppercase letter")
	}
	if hasDigit {
		result.Score++
	} else {
		result.Feedback = append(result.Feedback, "Add a digit")
	}
	if hasSymbol {
		result.Score++
	} else {
		result.Feedback = append(result.Feedback, "Add a symbol")
	}

	if hasWeakPattern(password) {
		result.Score -= 2
		if result.Score < 0 {
			result.Score = 0
		}
		result.Feedback = append(result.Feedback, "Avoid common patterns like \"123\", \"password\", or repeated characters")
	}

	result.IsValid = result.Score >= 4
	return result
}

// hasWeakPattern reports whether the password matches a common guessable shape.
func hasWeakPattern(password string) bool {
	lower := strings.ToLower(password)

	if strings.HasPrefix(lower, "123") {
		return true
	}

	for _, sequence := range weakSequences {
		if strings.Contains(lower, sequence) {
			return true
		}
	}

	// 3+ identical characters in a row
	runes := []rune(lower)
	for i := 2; i < len(runes); i++ {
		if runes[i] == runes[i-1] && runes[i] == runes[i-2] {
			return true
		}
	}

	return false
}

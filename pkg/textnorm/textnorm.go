// Copyright (c) 2026 Taskora. All rights reserved.

// Package textnorm normalizes user-supplied Unicode text before persistence.
//
// # Usage
//
// Profile fields (names, bio) arrive from browsers and OAuth providers in
// mixed normalization forms. Persisting everything in NFC keeps equality
// checks and display rendering consistent across clients.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Clean returns the input trimmed of surrounding whitespace and normalized
// to Unicode NFC.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// CleanAll applies [Clean] to each input in place-order and returns them.
func CleanAll(inputs ...*string) {
	for _, input := range inputs {
		if input != nil {
			*input = Clean(*input)
		}
	}
}

// Copyright (c) 2026 Taskora. All rights reserved.

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskora/taskora/internal/users/auth"
)

/*
TestRandomToken verifies the state/nonce generator produces URL-safe values
of the expected length that do not repeat.
*/
func TestRandomToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		token, err := auth.RandomToken(auth.OAuthStateLength)
		require.NoError(t, err)

		// 32 random bytes in unpadded base64url.
		assert.Len(t, token, 43)
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "=")

		assert.False(t, seen[token], "token repeated")
		seen[token] = true
	}
}

// Copyright (c) 2026 Taskora. All rights reserved.

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskora/taskora/internal/platform/sec"
)

/*
TestHashPassword verifies the bcrypt round trip and that two hashes of the
same input differ (per-hash salt).
*/
func TestHashPassword(t *testing.T) {
	hash, err := sec.HashPassword("S3cure!Passphrase")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	secondHash, err := sec.HashPassword("S3cure!Passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, hash, secondHash)

	assert.True(t, sec.CheckPasswordHash("S3cure!Passphrase", hash))
	assert.False(t, sec.CheckPasswordHash("wrong-password", hash))
}

/*
TestCheckPasswordHash_EmptyHash covers the account-without-password case:
an empty stored hash must never match any input.
*/
func TestCheckPasswordHash_EmptyHash(t *testing.T) {
	assert.False(t, sec.CheckPasswordHash("anything", ""))
	assert.False(t, sec.CheckPasswordHash("", ""))
}

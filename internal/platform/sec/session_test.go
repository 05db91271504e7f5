// Copyright (c) 2026 Taskora. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskora/taskora/internal/platform/sec"
)

const testSessionSecret = "unit-test-session-secret"

func testPrincipal() *sec.Principal {
	return &sec.Principal{
		UserID:    "user-456",
		Email:     "oauth@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		AvatarURL: "https://cdn.example.com/a.png",
	}
}

/*
TestSessionService_IssueAndVerify round-trips a session artifact and checks
that every principal field survives.
*/
func TestSessionService_IssueAndVerify(t *testing.T) {
	service, err := sec.NewSessionService(testSessionSecret, testIssuer)
	require.NoError(t, err)

	artifact, err := service.Issue(testPrincipal(), time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, artifact)

	claims, err := service.Verify(artifact)
	require.NoError(t, err)

	assert.Equal(t, "user-456", claims.UserID)
	assert.Equal(t, "oauth@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.FirstName)
	assert.Equal(t, "Lovelace", claims.LastName)
	assert.Equal(t, "https://cdn.example.com/a.png", claims.AvatarURL)
	assert.Equal(t, testIssuer, claims.Issuer)
}

/*
TestSessionService_VerifyFailures checks that every failure mode collapses
into ErrInvalidSession.
*/
func TestSessionService_VerifyFailures(t *testing.T) {
	service, err := sec.NewSessionService(testSessionSecret, testIssuer)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		artifact, err := service.Issue(testPrincipal(), -time.Minute)
		require.NoError(t, err)

		_, err = service.Verify(artifact)
		assert.ErrorIs(t, err, sec.ErrInvalidSession)
	})

	t.Run("garbage_input", func(t *testing.T) {
		_, err := service.Verify("definitely-not-a-jwt")
		assert.ErrorIs(t, err, sec.ErrInvalidSession)
	})
}

/*
TestCredentialFamiliesAreIsolated ensures a session artifact is never
accepted by the legacy token verifier and vice versa, even when the two
services are configured correctly with their own secrets.
*/
func TestCredentialFamiliesAreIsolated(t *testing.T) {
	sessions, err := sec.NewSessionService(testSessionSecret, testIssuer)
	require.NoError(t, err)
	tokens, err := sec.NewTokenService(testTokenSecret, testIssuer)
	require.NoError(t, err)

	artifact, err := sessions.Issue(testPrincipal(), time.Hour)
	require.NoError(t, err)
	_, err = tokens.Verify(artifact)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	token, err := tokens.Issue("user-456", "oauth@example.com", time.Hour)
	require.NoError(t, err)
	_, err = sessions.Verify(token)
	assert.ErrorIs(t, err, sec.ErrInvalidSession)
}

// Copyright (c) 2026 Taskora. All rights reserved.

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackoff(clock *testClock) *Backoff {
	return &Backoff{
		entries: make(map[string]*backoffEntry),
		now:     clock.Now,
	}
}

/*
TestBackoff_FirstAttemptAllowed verifies an unseen (ip, email) pair carries
no wait.
*/
func TestBackoff_FirstAttemptAllowed(t *testing.T) {
	backoff := newTestBackoff(newTestClock())

	allowed, wait := backoff.Check("10.0.0.1", "user@example.com")
	assert.True(t, allowed)
	assert.Zero(t, wait)
}

/*
TestBackoff_ExponentialLadder walks the failure ladder and checks the
mandatory wait doubles each step: 1s, 2s, 4s, 8s.
*/
func TestBackoff_ExponentialLadder(t *testing.T) {
	clock := newTestClock()
	backoff := newTestBackoff(clock)

	expectedWaits := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
	}

	for _, expected := range expectedWaits {
		backoff.Failure("10.0.0.1", "user@example.com")

		allowed, wait := backoff.Check("10.0.0.1", "user@example.com")
		require.False(t, allowed)
		assert.Equal(t, expected, wait)

		// Serve out the wait so the next failure is a legitimate retry.
		clock.Advance(expected)
	}
}

/*
TestBackoff_DeniedCheckDoesNotAdvance confirms that probing during an active
wait neither extends the wait nor advances the attempt counter.
*/
func TestBackoff_DeniedCheckDoesNotAdvance(t *testing.T) {
	clock := newTestClock()
	backoff := newTestBackoff(clock)

	backoff.Failure("10.0.0.1", "user@example.com")
	backoff.Failure("10.0.0.1", "user@example.com")

	// Two failures: 2s mandatory wait.
	allowed, wait := backoff.Check("10.0.0.1", "user@example.com")
	require.False(t, allowed)
	require.Equal(t, 2*time.Second, wait)

	// Hammering Check during the wait changes nothing but the remaining time.
	clock.Advance(1 * time.Second)
	for i := 0; i < 10; i++ {
		allowed, wait = backoff.Check("10.0.0.1", "user@example.com")
		require.False(t, allowed)
		assert.Equal(t, 1*time.Second, wait)
	}

	clock.Advance(1 * time.Second)
	allowed, wait = backoff.Check("10.0.0.1", "user@example.com")
	assert.True(t, allowed)
	assert.Zero(t, wait)
}

/*
TestBackoff_WaitCap verifies the ladder tops out at 30 minutes no matter how
many failures accumulate.
*/
func TestBackoff_WaitCap(t *testing.T) {
	assert.Equal(t, 1*time.Second, waitFor(1))
	assert.Equal(t, 1024*time.Second, waitFor(11))
	assert.Equal(t, 30*time.Minute, waitFor(12))
	assert.Equal(t, 30*time.Minute, waitFor(21))
	assert.Equal(t, 30*time.Minute, waitFor(500))
	assert.Zero(t, waitFor(0))
}

/*
TestBackoff_SuccessClears verifies a successful login removes the entry
immediately, so the next failure starts the ladder over.
*/
func TestBackoff_SuccessClears(t *testing.T) {
	clock := newTestClock()
	backoff := newTestBackoff(clock)

	for i := 1; i <= 4; i++ {
		backoff.Failure("10.0.0.1", "user@example.com")
		clock.Advance(waitFor(i))
	}

	backoff.Success("10.0.0.1", "user@example.com")

	allowed, _ := backoff.Check("10.0.0.1", "user@example.com")
	assert.True(t, allowed)

	backoff.Failure("10.0.0.1", "user@example.com")
	_, wait := backoff.Check("10.0.0.1", "user@example.com")
	assert.Equal(t, 1*time.Second, wait)
}

/*
TestBackoff_InactivityReset verifies a 30-minute quiet period makes the
entry behave as absent, and that the next failure restarts the counter at 1.
*/
func TestBackoff_InactivityReset(t *testing.T) {
	clock := newTestClock()
	backoff := newTestBackoff(clock)

	backoff.Failure("10.0.0.1", "user@example.com")
	backoff.Failure("10.0.0.1", "user@example.com")
	backoff.Failure("10.0.0.1", "user@example.com")

	clock.Advance(30 * time.Minute)

	allowed, wait := backoff.Check("10.0.0.1", "user@example.com")
	assert.True(t, allowed)
	assert.Zero(t, wait)

	// The first failure after the quiet period starts a fresh ladder.
	backoff.Failure("10.0.0.1", "user@example.com")
	_, wait = backoff.Check("10.0.0.1", "user@example.com")
	assert.Equal(t, 1*time.Second, wait)
}

/*
TestBackoff_KeysAreScoped confirms the ladder is per (ip, email): a different
address or a different target account is unaffected.
*/
func TestBackoff_KeysAreScoped(t *testing.T) {
	clock := newTestClock()
	backoff := newTestBackoff(clock)

	backoff.Failure("10.0.0.1", "victim@example.com")
	backoff.Failure("10.0.0.1", "victim@example.com")

	allowed, _ := backoff.Check("10.0.0.2", "victim@example.com")
	assert.True(t, allowed, "other addresses are not penalized")

	allowed, _ = backoff.Check("10.0.0.1", "other@example.com")
	assert.True(t, allowed, "other accounts are not penalized")
}

// Copyright (c) 2026 Taskora. All rights reserved.

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// # Login Backoff

const (
	// maxBackoffWait caps the exponential wait at 30 minutes.
	maxBackoffWait = 30 * time.Minute

	// backoffInactivityReset fully clears an entry after 30 minutes without
	// a recorded failure.
	backoffInactivityReset = 30 * time.Minute
)

type backoffEntry struct {
	attempts    int
	lastAttempt time.Time
}

// Backoff enforces an exponential mandatory wait between repeated failed
// login attempts from the same (IP, email) pair.
//
// # Semantics
//
// The first failed attempt is allowed immediately. After n recorded
// failures, the next attempt must wait min(2^(n-1) seconds, 30 minutes)
// from the last failure. A denied attempt does NOT advance the counter;
// only a retry made after the wait has elapsed (and subsequently failing)
// does. The entry fully resets after 30 minutes of inactivity, and a
// successful login clears it immediately.
//
// This is independent from the account-level lockout, which is keyed by
// account identity alone and lives in the credential store.
type Backoff struct {
	mu      sync.Mutex
	entries map[string]*backoffEntry

	// now is injectable for tests.
	now func() time.Time
}

// NewBackoff constructs a Backoff and starts its background sweep.
// The sweep stops when ctx is cancelled.
func NewBackoff(ctx context.Context) *Backoff {
	backoff := &Backoff{
		entries: make(map[string]*backoffEntry),
		now:     time.Now,
	}

	go backoff.sweep(ctx)

	return backoff
}

// Check reports whether a login attempt for (ip, email) may proceed.
//
// # Returns
//   - allowed: false while the active backoff window has not elapsed.
//   - wait: the remaining mandatory wait. Zero when allowed.
//
// Check never mutates state; record the outcome with [Backoff.Failure]
// or [Backoff.Success] after the credential check.
func (backoff *Backoff) Check(ip, email string) (allowed bool, wait time.Duration) {
	backoff.mu.Lock()
	defer backoff.mu.Unlock()

	entry, found := backoff.entries[backoffKey(ip, email)]
	if !found {
		return true, 0
	}

	currentTime := backoff.now()

	// Stale entries behave as if absent; the sweep will collect them.
	if currentTime.Sub(entry.lastAttempt) >= backoffInactivityReset {
		return true, 0
	}

	readyAt := entry.lastAttempt.Add(waitFor(entry.attempts))
	if currentTime.Before(readyAt) {
		return false, readyAt.Sub(currentTime)
	}

	return true, 0
}

// Failure records a failed login attempt for (ip, email), advancing the
// attempt counter (or restarting it after the inactivity window).
func (backoff *Backoff) Failure(ip, email string) {
	backoff.mu.Lock()
	defer backoff.mu.Unlock()

	key := backoffKey(ip, email)
	currentTime := backoff.now()

	entry, found := backoff.entries[key]
	if !found || currentTime.Sub(entry.lastAttempt) >= backoffInactivityReset {
		backoff.entries[key] = &backoffEntry{attempts: 1, lastAttempt: currentTime}
		return
	}

	entry.attempts++
	entry.lastAttempt = currentTime
}

// Success clears the backoff entry for (ip, email) immediately.
func (backoff *Backoff) Success(ip, email string) {
	backoff.mu.Lock()
	defer backoff.mu.Unlock()
	delete(backoff.entries, backoffKey(ip, email))
}

// waitFor computes the mandatory wait after n recorded failures:
// min(2^(n-1) seconds, 30 minutes).
func waitFor(attempts int) time.Duration {
	if attempts <= 0 {
		return 0
	}

	// 2^21 seconds already exceeds 30 minutes; avoid shift overflow.
	if attempts > 21 {
		return maxBackoffWait
	}

	wait := time.Duration(1<<(attempts-1)) * time.Second
	if wait > maxBackoffWait {
		return maxBackoffWait
	}
	return wait
}

// sweep periodically drops entries that have been inactive past the reset window.
func (backoff *Backoff) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			backoff.mu.Lock()
			currentTime := backoff.now()
			for key, entry := range backoff.entries {
				if currentTime.Sub(entry.lastAttempt) >= backoffInactivityReset {
					delete(backoff.entries, key)
				}
			}
			backoff.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// backoffKey scopes entries by requester identity AND target account, so an
// attacker hammering one account from one address cannot starve other users.
func backoffKey(ip, email string) string {
	return ip + "|" + email
}

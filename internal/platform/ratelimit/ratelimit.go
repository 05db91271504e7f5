// Copyright (c) 2026 Taskora. All rights reserved.

/*
Package ratelimit implements the two request-throttling mechanisms guarding
the authentication boundary.

  - [Limiter]: a fixed-window counter keyed by (client IP, path), with
    per-endpoint-class budgets and a caller-visible Retry-After.
  - [Backoff]: an exponential login backoff keyed by (client IP, email),
    independent from the account-level lockout in the credential store.

Architecture:

  - Both are explicit injected components constructed once at process start
    and passed to handlers by reference. No package-level mutable state.
  - Entries live in mutex-guarded in-memory maps; a background sweep removes
    expired entries once per minute to bound memory. Per-instance only:
    scaling beyond one process needs a shared store behind these interfaces.
  - Neither mechanism ever blocks on a global counter alone: every key is
    scoped by requester identity, so one abusive client cannot starve others.
*/
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// # Endpoint Profiles

// Profile is the fixed-window budget for one class of endpoints.
type Profile struct {
	// MaxRequests is the number of requests allowed per window.
	MaxRequests int
	// Window is the fixed (not sliding) counting window.
	Window time.Duration
}

// Standard endpoint classes. Auth-sensitive endpoints get the tightest
// budget; read-heavy listing endpoints the loosest.
var (
	ProfileAuth      = Profile{MaxRequests: 10, Window: 15 * time.Minute}
	ProfileAPI       = Profile{MaxRequests: 100, Window: 1 * time.Minute}
	ProfileRead      = Profile{MaxRequests: 200, Window: 1 * time.Minute}
	ProfileSensitive = Profile{MaxRequests: 3, Window: 1 * time.Hour}
)

// sweepInterval is how often expired window entries are garbage-collected.
const sweepInterval = 1 * time.Minute

// # Fixed-Window Limiter

type windowEntry struct {
	count     int
	resetTime time.Time
}

// Limiter counts requests per key in fixed windows.
//
// # Concurrency
//
// Safe for concurrent use by all request-handling goroutines; the sweep
// goroutine shares the same mutex, so it can never corrupt an entry that is
// still inside its window.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	// now is injectable for tests.
	now func() time.Time
}

// NewLimiter constructs a Limiter and starts its background sweep.
// The sweep stops when ctx is cancelled.
func NewLimiter(ctx context.Context) *Limiter {
	limiter := &Limiter{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}

	go limiter.sweep(ctx)

	return limiter
}

// Allow records one request against key under the given profile.
//
// # Returns
//   - allowed: false when the window budget is exhausted.
//   - retryAfter: the caller-visible wait until the window resets. Zero when allowed.
func (limiter *Limiter) Allow(key string, profile Profile) (allowed bool, retryAfter time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	currentTime := limiter.now()
	entry, found := limiter.entries[key]

	// A missing or expired window starts a fresh one.
	if !found || !currentTime.Before(entry.resetTime) {
		limiter.entries[key] = &windowEntry{
			count:     1,
			resetTime: currentTime.Add(profile.Window),
		}
		return true, 0
	}

	entry.count++
	if entry.count > profile.MaxRequests {
		return false, entry.resetTime.Sub(currentTime)
	}

	return true, 0
}

// sweep periodically drops entries whose window has expired.
func (limiter *Limiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.mu.Lock()
			currentTime := limiter.now()
			for key, entry := range limiter.entries {
				if !currentTime.Before(entry.resetTime) {
					delete(limiter.entries, key)
				}
			}
			limiter.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

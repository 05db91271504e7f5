// Copyright (c) 2026 Taskora. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// # Atomicity
//
// IncrementLoginAttempts and ResetLoginAttempts must each be a single
// atomic write at the storage layer: two concurrent failed logins against
// the same account must both be counted, or the lockout protection weakens.
type UserRepository interface {

	/*
		FindByEmail returns the account with the given (lowercase) email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		Create persists a brand-new account. The unique email constraint is
		the idempotency backstop for concurrent creation races.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: Conflict on duplicate email, or persistence failures
	*/
	Create(context context.Context, account *Account) error

	/*
		UpdateProfile persists changes to mutable profile fields
		(names, avatar, bio).

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: Persistence failures
	*/
	UpdateProfile(context context.Context, account *Account) error

	/*
		SetPassword replaces only the account's password hash.
		The hash must already be computed; plaintext never reaches storage.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	SetPassword(context context.Context, userID, newHash string) error

	/*
		AttachProvider links an OAuth provider to an existing account,
		backfilling the avatar only when the account has none. It is a
		no-op when a different OAuth provider is already linked.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - provider: Provider
		  - providerID: string
		  - avatarURL: string

		Returns:
		  - error: Persistence failures
	*/
	AttachProvider(context context.Context, userID string, provider Provider, providerID, avatarURL string) error

	/*
		IncrementLoginAttempts records one failed password attempt as a
		single atomic write. An expired lock resets the counter to 1 and
		clears the lock; otherwise the counter advances, and reaching the
		threshold on an unlocked account sets the lock.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - attempts: The post-write counter value
		  - lockUntil: The post-write lock expiry, or nil
		  - error: Persistence failures
	*/
	IncrementLoginAttempts(context context.Context, userID string) (attempts int, lockUntil *time.Time, err error)

	/*
		ResetLoginAttempts zeroes the counter, clears the lock, and stamps
		LastLogin, as a single atomic write.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ResetLoginAttempts(context context.Context, userID string) error
}

// # Volatile Data Access

// StateEntry is the transient bookkeeping created when an OAuth flow starts
// and consumed exactly once at the provider callback.
type StateEntry struct {
	// Provider names which upstream the flow was started against.
	Provider Provider `json:"provider"`

	// Nonce binds the OIDC ID token to this flow (replay protection).
	Nonce string `json:"nonce"`

	// Callback is the application path to land on after sign-in.
	Callback string `json:"callback,omitempty"`
}

// StateRepository defines the contract for storing volatile OAuth state.
type StateRepository interface {

	/*
		Set stores a state entry under the random state value for a
		limited duration.

		Parameters:
		  - context: context.Context
		  - state: string
		  - entry: StateEntry
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, state string, entry StateEntry, ttl time.Duration) error

	/*
		Consume retrieves and deletes the entry for a given state value.
		A state can therefore be used at most once.

		Parameters:
		  - context: context.Context
		  - state: string

		Returns:
		  - *StateEntry: The stored entry
		  - error: apperr.NotFound when absent, expired, or already used
	*/
	Consume(context context.Context, state string) (*StateEntry, error)
}

// Copyright (c) 2026 Taskora. All rights reserved.

/*
Package auth implements the authentication and session-trust core.

It unifies two independent credential paths, local email/password and
third-party OAuth (Google, GitHub), into a single notion of authenticated
principal, while tolerating accounts that start with only one credential
type and later acquire the other.

# Architecture

  - Account: The persisted identity, with credential, provider linkage, and
    lockout state.
  - Service: Registration, login, and password flows, including the account
    lockout ladder and the login backoff guard.
  - Linking: The account linking policy, and the only place accounts are minted.
  - Authenticator: The prioritized verifier chain resolving a Principal from
    either the OAuth session artifact or the legacy token.
*/
package auth

import (
	"time"
)

// # Credential Providers

// Provider tags which credential path an account signed up through.
type Provider string

const (
	// ProviderCredentials marks a local email/password account.
	ProviderCredentials Provider = "credentials"

	// ProviderGoogle marks an account linked to Google sign-in.
	ProviderGoogle Provider = "google"

	// ProviderGithub marks an account linked to GitHub sign-in.
	ProviderGithub Provider = "github"
)

// IsOAuth reports whether the provider is a third-party OAuth provider.
func (p Provider) IsOAuth() bool {
	return p == ProviderGoogle || p == ProviderGithub
}

// # Domain Entities

// Account represents a registered member of the Taskora platform.
//
// # Invariants
//
//   - Email is globally unique and stored lowercase.
//   - An account has a password hash OR an OAuth provider linkage OR both;
//     it is never created with neither.
//   - LockUntil is cleared whenever LoginAttempts resets to zero.
//   - Once Provider is set to an OAuth provider, it is never overwritten by
//     a different provider (first-linked provider wins).
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`

	// PasswordHash is empty for OAuth-only accounts.
	PasswordHash string `json:"-"` // Explicitly omitted from JSON for security.

	// Provider linkage. ProviderID is the third-party subject identifier.
	Provider   Provider `json:"provider"`
	ProviderID string   `json:"-"`

	// Profile
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	Bio           string `json:"bio,omitempty"`
	EmailVerified bool   `json:"email_verified"`

	// Lockout state
	LoginAttempts int        `json:"-"`
	LockUntil     *time.Time `json:"-"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// IsLocked reports whether the account is currently locked out.
// Locked iff LockUntil is set and in the future.
func (a *Account) IsLocked() bool {
	return a.LockUntil != nil && a.LockUntil.After(time.Now())
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldToken       = "token"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
	FieldMessage     = "message"
	FieldProvider    = "provider"
	FieldCode        = "code"
	FieldState       = "state"
)

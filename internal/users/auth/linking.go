// Copyright (c) 2026 Taskora. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/pkg/uuid"
)

// # Account Linking

// Identity is the normalized profile a third-party provider asserts about
// the person signing in. It is provider-neutral: both the Google and GitHub
// adapters reduce their payloads to this shape before it touches an account.
type Identity struct {
	Provider   Provider
	ProviderID string

	// Email as asserted by the provider. Both providers in use only
	// release verified addresses, which is what makes email the safe
	// join key for linking.
	Email string

	FirstName string
	LastName  string
	AvatarURL string
}

// Linker applies the account linking policy. It is the only component that
// mints accounts from OAuth identities.
//
// # Policy
//
//   - No account with the identity's email: a new OAuth-only account is
//     created (no password, provider linked, email verified).
//   - An account exists without an OAuth linkage (registered with a
//     password): the provider is attached, the avatar backfilled if empty,
//     and the existing password keeps working.
//   - An account exists with an OAuth linkage already: the first-linked
//     provider wins. The linkage is never rewritten; sign-in proceeds on
//     the email match alone.
type Linker struct {
	users UserRepository
}

// NewLinker creates a Linker over the given user repository.
func NewLinker(users UserRepository) *Linker {
	return &Linker{users: users}
}

/*
Resolve maps an OAuth identity onto an account, creating or linking as the
policy dictates.

Parameters:
  - context: context.Context
  - identity: Identity (Normalized provider profile)

Returns:
  - *Account: The account the identity resolved to
  - bool: True when a new account was created
  - error: Persistence failures
*/
func (linker *Linker) Resolve(context context.Context, identity Identity) (*Account, bool, error) {
	email := strings.ToLower(identity.Email)

	account, err := linker.users.FindByEmail(context, email)
	if err == nil {
		if err := linker.users.AttachProvider(context, account.ID, identity.Provider, identity.ProviderID, identity.AvatarURL); err != nil {
			return nil, false, err
		}

		// Reflect the linkage locally so callers see the post-link state
		// without a re-read. First-linked provider wins.
		if !account.Provider.IsOAuth() {
			account.Provider = identity.Provider
			account.ProviderID = identity.ProviderID
		}
		if account.AvatarURL == "" {
			account.AvatarURL = identity.AvatarURL
		}
		account.EmailVerified = true

		return account, false, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, false, err
	}

	account = &Account{
		ID:            uuid.New(),
		Email:         email,
		Provider:      identity.Provider,
		ProviderID:    identity.ProviderID,
		FirstName:     identity.FirstName,
		LastName:      identity.LastName,
		AvatarURL:     identity.AvatarURL,
		EmailVerified: true,
	}

	if err := linker.users.Create(context, account); err != nil {
		// A concurrent sign-in may have created the account between the
		// lookup and the insert; the unique email constraint resolves the
		// race, and the existing row is the winner.
		if apperr.IsConflict(err) {
			existing, findErr := linker.users.FindByEmail(context, email)
			if findErr != nil {
				return nil, false, fmt.Errorf("linker_post_conflict_lookup_failed: %w", findErr)
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return account, true, nil
}

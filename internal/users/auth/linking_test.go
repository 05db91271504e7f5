// Copyright (c) 2026 Taskora. All rights reserved.

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskora/taskora/internal/users/auth"
)

func googleIdentity() auth.Identity {
	return auth.Identity{
		Provider:   auth.ProviderGoogle,
		ProviderID: "google-sub-1",
		Email:      "Person@Example.com",
		FirstName:  "Pat",
		LastName:   "Person",
		AvatarURL:  "https://lh3.example.com/pat.png",
	}
}

/*
TestLinker_Resolve_CreatesAccount verifies an unknown email mints a new
OAuth-only account: no password, provider linked, email verified and
lowercased.
*/
func TestLinker_Resolve_CreatesAccount(t *testing.T) {
	users := newFakeUserRepository()
	linker := auth.NewLinker(users)

	account, created, err := linker.Resolve(context.Background(), googleIdentity())
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "person@example.com", account.Email)
	assert.Equal(t, auth.ProviderGoogle, account.Provider)
	assert.Equal(t, "google-sub-1", account.ProviderID)
	assert.True(t, account.EmailVerified)
	assert.False(t, account.HasPassword())
	assert.NotEmpty(t, account.ID)

	stored, err := users.FindByEmail(context.Background(), "person@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.ID)
}

/*
TestLinker_Resolve_LinksPasswordAccount verifies a credentials account with
the same email gains the provider linkage while keeping its password, and
the avatar is backfilled only when empty.
*/
func TestLinker_Resolve_LinksPasswordAccount(t *testing.T) {
	users := newFakeUserRepository()
	users.seed(&auth.Account{
		ID:           "acct-pw",
		Email:        "person@example.com",
		PasswordHash: "$2a$12$existinghash",
		Provider:     auth.ProviderCredentials,
		FirstName:    "Pat",
	})
	linker := auth.NewLinker(users)

	account, created, err := linker.Resolve(context.Background(), googleIdentity())
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, "acct-pw", account.ID)
	assert.Equal(t, auth.ProviderGoogle, account.Provider)
	assert.Equal(t, "google-sub-1", account.ProviderID)
	assert.Equal(t, "https://lh3.example.com/pat.png", account.AvatarURL)
	assert.True(t, account.EmailVerified)
	assert.True(t, account.HasPassword(), "the existing password keeps working")
	assert.Equal(t, 1, users.attachCalls)
}

/*
TestLinker_Resolve_FirstProviderWins verifies an account already linked to
one provider is never re-linked to another: sign-in proceeds on the email
match with the original linkage intact.
*/
func TestLinker_Resolve_FirstProviderWins(t *testing.T) {
	users := newFakeUserRepository()
	users.seed(&auth.Account{
		ID:            "acct-gh",
		Email:         "person@example.com",
		Provider:      auth.ProviderGithub,
		ProviderID:    "gh-77",
		AvatarURL:     "https://avatars.example.com/gh.png",
		EmailVerified: true,
	})
	linker := auth.NewLinker(users)

	account, created, err := linker.Resolve(context.Background(), googleIdentity())
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, auth.ProviderGithub, account.Provider)
	assert.Equal(t, "gh-77", account.ProviderID)
	assert.Equal(t, "https://avatars.example.com/gh.png", account.AvatarURL, "an existing avatar is never overwritten")
}

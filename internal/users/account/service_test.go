// Copyright (c) 2026 Taskora. All rights reserved.

package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/internal/platform/sec"
	"github.com/taskora/taskora/internal/users/account"
	"github.com/taskora/taskora/internal/users/auth"
)

// memoryUsers is a single-account auth.UserRepository for profile tests.
type memoryUsers struct {
	account *auth.Account
}

func (users *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	if users.account == nil || users.account.Email != email {
		return nil, apperr.NotFound("User")
	}
	copied := *users.account
	return &copied, nil
}

func (users *memoryUsers) FindByID(_ context.Context, id string) (*auth.Account, error) {
	if users.account == nil || users.account.ID != id {
		return nil, apperr.NotFound("User")
	}
	copied := *users.account
	return &copied, nil
}

func (users *memoryUsers) Create(_ context.Context, account *auth.Account) error {
	users.account = account
	return nil
}

func (users *memoryUsers) UpdateProfile(_ context.Context, account *auth.Account) error {
	users.account.FirstName = account.FirstName
	users.account.LastName = account.LastName
	users.account.AvatarURL = account.AvatarURL
	users.account.Bio = account.Bio
	return nil
}

func (users *memoryUsers) SetPassword(_ context.Context, userID, newHash string) error {
	if users.account == nil || users.account.ID != userID {
		return apperr.NotFound("User")
	}
	users.account.PasswordHash = newHash
	return nil
}

func (users *memoryUsers) AttachProvider(_ context.Context, _ string, _ auth.Provider, _, _ string) error {
	return nil
}

func (users *memoryUsers) IncrementLoginAttempts(_ context.Context, _ string) (int, *time.Time, error) {
	return 0, nil, nil
}

func (users *memoryUsers) ResetLoginAttempts(_ context.Context, _ string) error {
	return nil
}

/*
TestService_Update verifies the partial-edit semantics: nil leaves a field
unchanged, an empty string is a genuine clear, and values are trimmed.
*/
func TestService_Update(t *testing.T) {
	users := &memoryUsers{account: &auth.Account{
		ID:        "acct-1",
		Email:     "member@example.com",
		FirstName: "Old",
		LastName:  "Name",
		Bio:       "Original bio",
	}}
	service := account.NewService(users)

	newFirst := "  New  "
	clearedBio := ""
	updated, err := service.Update(context.Background(), "acct-1", account.UpdateInput{
		FirstName: &newFirst,
		Bio:       &clearedBio,
	})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "Name", updated.LastName, "nil pointer leaves the field unchanged")
	assert.Empty(t, updated.Bio, "empty string is a genuine clear")
	assert.Equal(t, "New", users.account.FirstName)
}

/*
TestService_ChangePassword covers both success shapes and the wrong-current
rejection.
*/
func TestService_ChangePassword(t *testing.T) {
	t.Run("replace_requires_current", func(t *testing.T) {
		hash, err := sec.HashPassword("Current1!Pass")
		require.NoError(t, err)
		users := &memoryUsers{account: &auth.Account{ID: "acct-1", PasswordHash: hash}}
		service := account.NewService(users)

		result, err := service.ChangePassword(context.Background(), "acct-1", "Current1!Pass", "Replaced1!Pass")
		require.NoError(t, err)
		assert.False(t, result.InitialSet)
		assert.True(t, sec.CheckPasswordHash("Replaced1!Pass", users.account.PasswordHash))
	})

	t.Run("wrong_current_rejected", func(t *testing.T) {
		hash, err := sec.HashPassword("Current1!Pass")
		require.NoError(t, err)
		users := &memoryUsers{account: &auth.Account{ID: "acct-1", PasswordHash: hash}}
		service := account.NewService(users)

		_, err = service.ChangePassword(context.Background(), "acct-1", "Guess1!Wrong", "Replaced1!Pass")
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
		assert.True(t, sec.CheckPasswordHash("Current1!Pass", users.account.PasswordHash), "password unchanged")
	})

	t.Run("oauth_only_initial_set", func(t *testing.T) {
		users := &memoryUsers{account: &auth.Account{ID: "acct-1", Provider: auth.ProviderGoogle}}
		service := account.NewService(users)

		result, err := service.ChangePassword(context.Background(), "acct-1", "", "First1!Pass")
		require.NoError(t, err)
		assert.True(t, result.InitialSet)
		assert.True(t, sec.CheckPasswordHash("First1!Pass", users.account.PasswordHash))
	})
}

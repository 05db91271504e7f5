// Copyright (c) 2026 Taskora. All rights reserved.

/*
Package account implements profile self-management for signed-in members.

It deliberately reuses the auth package's repository rather than defining
its own: the account row is one aggregate, and splitting its writers across
two storage layers would fracture the lockout and linking invariants.
*/
package account

import (
	"context"
	"fmt"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/internal/platform/sec"
	"github.com/taskora/taskora/internal/users/auth"
	"github.com/taskora/taskora/pkg/textnorm"
)

// # Service

// Service implements profile read and update use cases.
type Service struct {
	users auth.UserRepository
}

// NewService constructs a new [Service].
func NewService(users auth.UserRepository) *Service {
	return &Service{users: users}
}

/*
Get returns the full account behind a user ID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.Account: Hydrated profile
  - error: NotFound or storage errors
*/
func (service *Service) Get(context context.Context, userID string) (*auth.Account, error) {
	return service.users.FindByID(context, userID)
}

// UpdateInput holds the mutable profile fields. Nil pointers mean
// "leave unchanged"; empty strings are genuine clears.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
	Bio       *string
}

/*
Update applies a partial profile edit.

Description: Loads the current account, overlays the provided fields after
Unicode normalization, and persists the result. Email and provider linkage
are not editable through this path.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateInput

Returns:
  - *auth.Account: The post-update profile
  - error: NotFound or storage errors
*/
func (service *Service) Update(context context.Context, userID string, input UpdateInput) (*auth.Account, error) {
	account, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		account.FirstName = textnorm.Clean(*input.FirstName)
	}
	if input.LastName != nil {
		account.LastName = textnorm.Clean(*input.LastName)
	}
	if input.AvatarURL != nil {
		account.AvatarURL = textnorm.Clean(*input.AvatarURL)
	}
	if input.Bio != nil {
		account.Bio = textnorm.Clean(*input.Bio)
	}

	if err := service.users.UpdateProfile(context, account); err != nil {
		return nil, err
	}

	return account, nil
}

// ChangePasswordResult distinguishes the two success shapes of the
// password endpoint.
type ChangePasswordResult struct {
	// InitialSet is true when the account had no password before this call
	// (OAuth-only account adding its first password).
	InitialSet bool
}

/*
ChangePassword sets or replaces the account's password.

Description: An account that already has a password must prove it by
supplying the current one. An OAuth-only account has nothing to prove
against, so the current password is ignored and the operation becomes an
initial set.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - *ChangePasswordResult: Which success shape applies
  - error: Unauthorized (wrong current password) or storage errors
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) (*ChangePasswordResult, error) {
	account, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	initialSet := !account.HasPassword()
	if !initialSet && !sec.CheckPasswordHash(currentPassword, account.PasswordHash) {
		return nil, apperr.Unauthorized("Current password is incorrect")
	}

	newHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	if err := service.users.SetPassword(context, userID, newHash); err != nil {
		return nil, err
	}

	return &ChangePasswordResult{InitialSet: initialSet}, nil
}

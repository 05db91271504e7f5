// Copyright (c) 2026 Taskora. All rights reserved.

package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/internal/platform/constants"
	"github.com/taskora/taskora/internal/users/auth"
)

// # In-Memory Fakes

// fakeUserRepository is a map-backed UserRepository with call counters for
// the lockout writes and an injectable lookup error.
type fakeUserRepository struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account // keyed by lowercase email

	// findErr, when set, is returned by every lookup to simulate an
	// unreachable store.
	findErr error

	incrementCalls int
	resetCalls     int
	attachCalls    int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{accounts: make(map[string]*auth.Account)}
}

func (repository *fakeUserRepository) seed(account *auth.Account) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.accounts[account.Email] = account
}

func (repository *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.findErr != nil {
		return nil, repository.findErr
	}
	account, found := repository.accounts[email]
	if !found {
		return nil, apperr.NotFound("User")
	}
	copied := *account
	return &copied, nil
}

func (repository *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.Account, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.findErr != nil {
		return nil, repository.findErr
	}
	for _, account := range repository.accounts {
		if account.ID == id {
			copied := *account
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) Create(_ context.Context, account *auth.Account) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.accounts[account.Email]; exists {
		return apperr.Conflict("An account with this email already exists")
	}
	copied := *account
	repository.accounts[account.Email] = &copied
	return nil
}

func (repository *fakeUserRepository) UpdateProfile(_ context.Context, account *auth.Account) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, found := repository.accounts[account.Email]
	if !found {
		return apperr.NotFound("User")
	}
	stored.FirstName = account.FirstName
	stored.LastName = account.LastName
	stored.AvatarURL = account.AvatarURL
	stored.Bio = account.Bio
	return nil
}

func (repository *fakeUserRepository) SetPassword(_ context.Context, userID, newHash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, account := range repository.accounts {
		if account.ID == userID {
			account.PasswordHash = newHash
			return nil
		}
	}
	return apperr.NotFound("User")
}

func (repository *fakeUserRepository) AttachProvider(_ context.Context, userID string, provider auth.Provider, providerID, avatarURL string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.attachCalls++
	for _, account := range repository.accounts {
		if account.ID != userID {
			continue
		}
		if !account.Provider.IsOAuth() {
			account.Provider = provider
			account.ProviderID = providerID
		}
		if account.AvatarURL == "" {
			account.AvatarURL = avatarURL
		}
		account.EmailVerified = true
		return nil
	}
	return apperr.NotFound("User")
}

func (repository *fakeUserRepository) IncrementLoginAttempts(_ context.Context, userID string) (int, *time.Time, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.incrementCalls++
	for _, account := range repository.accounts {
		if account.ID != userID {
			continue
		}
		account.LoginAttempts++
		if account.LockUntil == nil && account.LoginAttempts >= constants.MaxLoginAttempts {
			lockUntil := time.Now().Add(constants.AccountLockDuration)
			account.LockUntil = &lockUntil
		}
		return account.LoginAttempts, account.LockUntil, nil
	}
	return 0, nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) ResetLoginAttempts(_ context.Context, userID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.resetCalls++
	for _, account := range repository.accounts {
		if account.ID != userID {
			continue
		}
		account.LoginAttempts = 0
		account.LockUntil = nil
		now := time.Now()
		account.LastLogin = &now
		return nil
	}
	return apperr.NotFound("User")
}

// fakeStateRepository is a map-backed StateRepository with single-use
// consume semantics, ignoring TTL.
type fakeStateRepository struct {
	mu      sync.Mutex
	entries map[string]auth.StateEntry
}

func newFakeStateRepository() *fakeStateRepository {
	return &fakeStateRepository{entries: make(map[string]auth.StateEntry)}
}

func (repository *fakeStateRepository) Set(_ context.Context, state string, entry auth.StateEntry, _ time.Duration) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.entries[state] = entry
	return nil
}

func (repository *fakeStateRepository) Consume(_ context.Context, state string) (*auth.StateEntry, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	entry, found := repository.entries[state]
	if !found {
		return nil, apperr.NotFound("Sign-in state")
	}
	delete(repository.entries, state)
	return &entry, nil
}

// fakeProviderAdapter acts as the upstream identity provider.
type fakeProviderAdapter struct {
	name        auth.Provider
	identity    *auth.Identity
	exchangeErr error
}

func (adapter *fakeProviderAdapter) Name() auth.Provider {
	return adapter.name
}

func (adapter *fakeProviderAdapter) AuthURL(state, nonce string) string {
	return "https://provider.example.com/authorize?state=" + state + "&nonce=" + nonce
}

func (adapter *fakeProviderAdapter) Exchange(_ context.Context, _, _ string) (*auth.Identity, error) {
	if adapter.exchangeErr != nil {
		return nil, adapter.exchangeErr
	}
	copied := *adapter.identity
	return &copied, nil
}

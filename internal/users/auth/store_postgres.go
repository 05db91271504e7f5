// Copyright (c) 2026 Taskora. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/internal/platform/constants"
	"github.com/taskora/taskora/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
//
// The lockout counter operations are written as single UPDATE statements so
// that concurrent failed logins against the same account serialize inside
// PostgreSQL rather than racing through read-modify-write cycles.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const accountColumns = `
	id, email, passwordhash, provider, providerid,
	firstname, lastname, avatarurl, bio, emailverified,
	loginattempts, lockuntil, lastlogin, createdat, updatedat`

func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Provider,
		&account.ProviderID,
		&account.FirstName,
		&account.LastName,
		&account.AvatarURL,
		&account.Bio,
		&account.EmailVerified,
		&account.LoginAttempts,
		&account.LockUntil,
		&account.LastLogin,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

/*
Create persists a new account record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are
initialized if not provided. The email is normalized to lowercase before it
hits the unique constraint.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (
			id, email, passwordhash, provider, providerid,
			firstname, lastname, avatarurl, bio, emailverified,
			loginattempts, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	account.Email = strings.ToLower(account.Email)

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Provider,
		account.ProviderID,
		account.FirstName,
		account.LastName,
		account.AvatarURL,
		account.Bio,
		account.EmailVerified,
		account.LoginAttempts,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if dberr.IsConflict(err) {
			return apperr.Conflict("An account with this email already exists")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves an account record by its unique email address.

Description: Performs a lookup on the account table using the lowercase form
of the email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE email = $1`

	account, err := scanAccount(repository.pool.QueryRow(context, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return account, nil
}

/*
FindByID retrieves an account record by its unique ID.

Description: Primary key resolution for user accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Account: Hydrated account entity
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE id = $1`

	account, err := scanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return account, nil
}

/*
UpdateProfile persists changes to an account's mutable profile fields.

Description: Synchronizes the in-memory account state with the database,
refreshing the updatedat timestamp. Credential and lockout columns are
deliberately outside this statement.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: Update failures
*/
func (repository *PostgresUserRepository) UpdateProfile(context context.Context, account *Account) error {
	const query = `
		UPDATE users.account
		SET firstname = $2, lastname = $3, avatarurl = $4, bio = $5, updatedat = $6
		WHERE id = $1`

	account.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.FirstName,
		account.LastName,
		account.AvatarURL,
		account.Bio,
		account.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_profile_failed: %w", err)
	}

	return nil
}

/*
SetPassword updates only the password hash for a specific account.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetPassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_password_failed: %w", err)
	}

	return nil
}

/*
AttachProvider links an OAuth provider to an existing account.

Description: The provider columns are only written when no OAuth provider is
linked yet (first-linked provider wins); the avatar is backfilled only when
the account has none. A repeat sign-in through the already-linked provider
is a harmless no-op at the SQL level.

Parameters:
  - context: context.Context
  - userID: string
  - provider: Provider
  - providerID: string
  - avatarURL: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) AttachProvider(context context.Context, userID string, provider Provider, providerID, avatarURL string) error {
	const query = `
		UPDATE users.account
		SET provider = CASE
				WHEN provider IN ('google', 'github') THEN provider
				ELSE $2
			END,
			providerid = CASE
				WHEN provider IN ('google', 'github') THEN providerid
				ELSE $3
			END,
			avatarurl = CASE
				WHEN avatarurl = '' THEN $4
				ELSE avatarurl
			END,
			emailverified = TRUE,
			updatedat = $5
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, provider, providerID, avatarURL, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_attach_provider_failed: %w", err)
	}

	return nil
}

/*
IncrementLoginAttempts records one failed password attempt atomically.

Description: A single UPDATE decides everything in place: an expired lock
resets the counter to 1 and clears the lock; otherwise the counter advances,
and an unlocked account reaching the threshold receives a fresh lock window.
Two concurrent failures cannot both observe the same pre-increment value.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - attempts: The post-write counter value
  - lockUntil: The post-write lock expiry, or nil when unlocked
  - error: Execution errors
*/
func (repository *PostgresUserRepository) IncrementLoginAttempts(context context.Context, userID string) (int, *time.Time, error) {
	const query = `
		UPDATE users.account
		SET loginattempts = CASE
				WHEN lockuntil IS NOT NULL AND lockuntil <= NOW() THEN 1
				ELSE loginattempts + 1
			END,
			lockuntil = CASE
				WHEN lockuntil IS NOT NULL AND lockuntil <= NOW() THEN NULL
				WHEN lockuntil IS NULL AND loginattempts + 1 >= $2 THEN NOW() + $3::interval
				ELSE lockuntil
			END,
			updatedat = NOW()
		WHERE id = $1
		RETURNING loginattempts, lockuntil`

	var attempts int
	var lockUntil *time.Time
	err := repository.pool.QueryRow(context, query,
		userID,
		constants.MaxLoginAttempts,
		constants.AccountLockDuration,
	).Scan(&attempts, &lockUntil)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil, apperr.NotFound("User")
		}
		return 0, nil, fmt.Errorf("postgres_user_repo_increment_attempts_failed: %w", err)
	}

	return attempts, lockUntil, nil
}

/*
ResetLoginAttempts clears the lockout state after a successful login.

Description: Zeroes the counter, drops any lock, and stamps the last login
time in one statement.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) ResetLoginAttempts(context context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET loginattempts = 0, lockuntil = NULL, lastlogin = NOW(), updatedat = NOW()
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_reset_attempts_failed: %w", err)
	}

	return nil
}

// Copyright (c) 2026 Taskora. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/internal/platform/constants"
	"github.com/taskora/taskora/internal/platform/ratelimit"
	"github.com/taskora/taskora/internal/platform/sec"
	"github.com/taskora/taskora/pkg/textnorm"
	"github.com/taskora/taskora/pkg/uuid"
)

// # Service

// Service implements the registration, login, and OAuth sign-in use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, lockout,
// or linking logic must be reviewed by the security team.
type Service struct {
	users    UserRepository
	states   StateRepository
	linker   *Linker
	tokens   *sec.TokenService
	sessions *sec.SessionService
	backoff  *ratelimit.Backoff
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	users UserRepository,
	states StateRepository,
	tokens *sec.TokenService,
	sessions *sec.SessionService,
	backoff *ratelimit.Backoff,
) *Service {
	return &Service{
		users:    users,
		states:   states,
		linker:   NewLinker(users),
		tokens:   tokens,
		sessions: sessions,
		backoff:  backoff,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterResult reports which of the two registration outcomes happened.
type RegisterResult struct {
	User *Account

	// PasswordAdded is true when registration landed on an existing
	// OAuth-only account and set its first password instead of creating
	// a new account.
	PasswordAdded bool

	// Token is a legacy credentials token, issued only on the
	// PasswordAdded path so the member is signed in immediately.
	Token string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member. When the email already belongs
to an OAuth-only account, registration degrades gracefully into setting that
account's first password rather than failing; an account that already has a
password conflicts.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegisterResult: Created entity or upgraded account
  - error: Conflict (if a password identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegisterResult, error) {
	email := strings.ToLower(input.Email)

	// Prevent storing plain-text passwords. Cost balances security and CPU
	// utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	existing, err := service.users.FindByEmail(context, email)
	if err == nil {
		// An account with a password already owns this email.
		if existing.HasPassword() {
			return nil, apperr.Conflict("Email is already registered")
		}

		// OAuth-only account: attach the first password. The OAuth linkage
		// keeps working alongside it.
		if err := service.users.SetPassword(context, existing.ID, hashedPassword); err != nil {
			return nil, fmt.Errorf("auth_service_set_password_failed: %w", err)
		}
		existing.PasswordHash = hashedPassword

		// The registration form also carries names; submitted values replace
		// whatever the provider asserted.
		if firstName := textnorm.Clean(input.FirstName); firstName != "" {
			existing.FirstName = firstName
		}
		if lastName := textnorm.Clean(input.LastName); lastName != "" {
			existing.LastName = lastName
		}
		if err := service.users.UpdateProfile(context, existing); err != nil {
			return nil, fmt.Errorf("auth_service_profile_update_failed: %w", err)
		}

		token, err := service.tokens.Issue(existing.ID, existing.Email, LegacyTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
		}

		return &RegisterResult{User: existing, PasswordAdded: true, Token: token}, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	// Construct the new Account entity. Time-sortable ID to prevent PG index
	// fragmentation.
	user := &Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		Provider:     ProviderCredentials,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}

	if err := service.users.Create(context, user); err != nil {
		if apperr.IsConflict(err) {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return &RegisterResult{User: user}, nil
}

// # Login Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
}

// LoginSession represents a successfully established credentials login.
type LoginSession struct {
	Token     string
	ExpiresAt time.Time
	User      *Account
}

/*
Login validates user credentials and issues a legacy token.

Description: The attempt runs a fixed gauntlet: the per-source backoff guard
first, then account lookup, the lockout check, the password check, and only
then token issuance. Failed password attempts advance both the account
lockout counter and the source backoff; denied attempts (backoff or lockout)
advance neither.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready token and account
  - error: RateLimited, Unauthorized, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	email := strings.ToLower(input.Email)

	// Backoff runs before any storage work so a hammering source cannot
	// even probe for account existence.
	if allowed, wait := service.backoff.Check(input.IPAddress, email); !allowed {
		return nil, apperr.RateLimited(retryAfterSeconds(wait))
	}

	user, err := service.users.FindByEmail(context, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			// Unknown emails still count as failures against the source,
			// or credential stuffing lists would probe for free.
			service.backoff.Failure(input.IPAddress, email)
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// A locked account rejects before the password comparison, so attempts
	// during the lock window cannot stack further lockouts.
	if user.IsLocked() {
		return nil, apperr.Unauthorized("Account locked. Try again later.")
	}

	// An OAuth-only account has no password to compare. The message points
	// at the provider; this is the one deliberate departure from the
	// generic credentials error.
	if !user.HasPassword() {
		return nil, apperr.Unauthorized(fmt.Sprintf("This account uses %s sign-in", user.Provider))
	}

	// Constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		if _, _, err := service.users.IncrementLoginAttempts(context, user.ID); err != nil {
			return nil, fmt.Errorf("auth_service_lockout_write_failed: %w", err)
		}
		service.backoff.Failure(input.IPAddress, email)
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Success clears both ladders.
	if err := service.users.ResetLoginAttempts(context, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_lockout_reset_failed: %w", err)
	}
	service.backoff.Success(input.IPAddress, email)

	token, err := service.tokens.Issue(user.ID, user.Email, LegacyTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &LoginSession{
		Token:     token,
		ExpiresAt: time.Now().Add(LegacyTokenTTL),
		User:      user,
	}, nil
}

// # OAuth Flow

// OAuthStart holds everything the HTTP layer needs to begin a provider flow.
type OAuthStart struct {
	RedirectURL string
}

/*
StartOAuth creates the state and nonce for a new provider flow and stores
them for the callback to consume.

Parameters:
  - context: context.Context
  - adapter: ProviderAdapter
  - callback: string (Application path to land on after sign-in)

Returns:
  - *OAuthStart: The provider authorization URL to redirect to
  - error: Randomness or storage failures
*/
func (service *Service) StartOAuth(context context.Context, adapter ProviderAdapter, callback string) (*OAuthStart, error) {
	state, err := RandomToken(OAuthStateLength)
	if err != nil {
		return nil, err
	}
	nonce, err := RandomToken(OAuthNonceLength)
	if err != nil {
		return nil, err
	}

	entry := StateEntry{
		Provider: adapter.Name(),
		Nonce:    nonce,
		Callback: callback,
	}
	if err := service.states.Set(context, state, entry, constants.OAuthStateTTL); err != nil {
		return nil, err
	}

	return &OAuthStart{RedirectURL: adapter.AuthURL(state, nonce)}, nil
}

// OAuthSession represents a successfully established OAuth sign-in.
type OAuthSession struct {
	Artifact  string
	ExpiresAt time.Time
	User      *Account
	Created   bool
	Callback  string
}

/*
CompleteOAuth finishes a provider flow at the callback.

Description: Consumes the stored state (single use), exchanges the code
under a hard deadline, resolves the identity onto an account through the
linking policy, and issues the session artifact. A successful OAuth sign-in
also clears the account's lockout state: the provider has proven account
ownership more strongly than a password would.

Parameters:
  - ctx: context.Context
  - adapter: ProviderAdapter
  - code: string
  - state: string

Returns:
  - *OAuthSession: Session artifact, account, and post-login callback path
  - error: NotFound (bad state), Unauthorized (failed exchange), or storage errors
*/
func (service *Service) CompleteOAuth(ctx context.Context, adapter ProviderAdapter, code, state string) (*OAuthSession, error) {
	entry, err := service.states.Consume(ctx, state)
	if err != nil {
		return nil, err
	}
	if entry.Provider != adapter.Name() {
		return nil, apperr.NotFound("Sign-in state")
	}

	// The provider exchange talks to an upstream we don't control; a hung
	// upstream must not hold the request open indefinitely.
	exchangeCtx, cancel := context.WithTimeout(ctx, constants.OAuthExchangeTimeout)
	defer cancel()

	identity, err := adapter.Exchange(exchangeCtx, code, entry.Nonce)
	if err != nil {
		return nil, err
	}

	user, created, err := service.linker.Resolve(ctx, *identity)
	if err != nil {
		return nil, fmt.Errorf("auth_service_oauth_link_failed: %w", err)
	}

	if err := service.users.ResetLoginAttempts(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_lockout_reset_failed: %w", err)
	}

	artifact, err := service.sessions.Issue(&sec.Principal{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AvatarURL: user.AvatarURL,
	}, SessionArtifactTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_issue_failed: %w", err)
	}

	return &OAuthSession{
		Artifact:  artifact,
		ExpiresAt: time.Now().Add(SessionArtifactTTL),
		User:      user,
		Created:   created,
		Callback:  entry.Callback,
	}, nil
}

// # Helpers

// retryAfterSeconds converts a wait duration into the whole-seconds form
// clients see, always at least 1.
func retryAfterSeconds(wait time.Duration) int {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// Copyright (c) 2026 Taskora. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate-limit windows, and cross-cutting keys that are
shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Window lengths and request budgets per endpoint class.
  - Security: Token issuers, cookie names, and lockout thresholds.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "taskora-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Coarse Rate Limiting (token bucket, whole API)

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often expired entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Account Lockout

const (
	// MaxLoginAttempts is the number of consecutive password failures that
	// triggers an account-level lock.
	MaxLoginAttempts = 5

	// AccountLockDuration is how long a locked account stays locked.
	AccountLockDuration = 2 * time.Hour
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in signed tokens.
	AuthIssuer = "taskora.app"

	// SessionCookieName is the cookie carrying the OAuth session artifact.
	SessionCookieName = "taskora_session"

	// LegacyTokenCookieName is the cookie carrying the pre-OAuth credentials JWT.
	LegacyTokenCookieName = "token"

	// OAuthStateTTL is how long an OAuth state entry survives in Redis
	// between the upstream redirect and the provider callback.
	OAuthStateTTL = 10 * time.Minute

	// OAuthExchangeTimeout caps the upstream code-exchange round trip.
	// Exceeding it is treated as a provider error, not a hang.
	OAuthExchangeTimeout = 10 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
	HeaderAuthorization = "Authorization"

	// BearerPrefix is the Authorization scheme prefix for the legacy token.
	BearerPrefix = "Bearer "
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCore  = "core"
	SchemaUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixOAuthState = "auth:oauth_state:"
)

// # Route Classification

const (
	// LoginPath is where unauthenticated visitors of protected paths are sent.
	LoginPath = "/login"

	// AppPath is where already-authenticated visitors of auth-entry paths are sent.
	AppPath = "/app"

	// CallbackParam preserves the originally requested path across the login redirect.
	CallbackParam = "callback"
)

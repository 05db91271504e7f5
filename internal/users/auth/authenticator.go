// Copyright (c) 2026 Taskora. All rights reserved.

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/internal/platform/constants"
	"github.com/taskora/taskora/internal/platform/sec"
)

// ErrNoCredentials marks a request that carried nothing resembling a
// credential. The request proceeds anonymously; route guards decide whether
// that is acceptable.
var ErrNoCredentials = errors.New("auth: no credentials presented")

// # Unified Authenticator

// Authenticator resolves a [sec.Principal] from an incoming request by
// running a fixed verifier chain.
//
// # Chain Order
//
// The OAuth session artifact is always tried first, the legacy token
// second. Order matters: during the migration window a browser can hold
// both credentials, and the session artifact is the more current statement
// of who the user is. A verifier that finds no credential of its kind
// yields to the next; a verifier that finds a credential and rejects it
// also yields, so a stale legacy cookie cannot mask a valid artifact and
// vice versa.
type Authenticator struct {
	sessions *sec.SessionService
	tokens   *sec.TokenService
	users    UserRepository
}

// NewAuthenticator constructs the unified verifier chain.
func NewAuthenticator(sessions *sec.SessionService, tokens *sec.TokenService, users UserRepository) *Authenticator {
	return &Authenticator{
		sessions: sessions,
		tokens:   tokens,
		users:    users,
	}
}

/*
Authenticate resolves the request to an authenticated principal.

Parameters:
  - request: *http.Request

Returns:
  - *sec.Principal: The authenticated identity
  - error: ErrNoCredentials, or the last verifier's rejection reason
    (internal logging only; never shown to clients)
*/
func (authenticator *Authenticator) Authenticate(request *http.Request) (*sec.Principal, error) {
	sawCredential := false

	if artifact, ok := sessionArtifactFrom(request); ok {
		sawCredential = true
		principal, err := authenticator.verifySession(request.Context(), artifact)
		if err == nil {
			return principal, nil
		}
	}

	if token, ok := legacyTokenFrom(request); ok {
		sawCredential = true
		principal, err := authenticator.verifyLegacy(token)
		if err == nil {
			return principal, nil
		}
	}

	if !sawCredential {
		return nil, ErrNoCredentials
	}
	return nil, errors.New("auth: invalid or expired credentials")
}

// verifySession validates the artifact signature, then refreshes the display
// claims from the account store.
//
// The store lookup distinguishes two failures: a missing account means the
// artifact points at someone who no longer exists (hard rejection), while a
// transient store error falls back to the claims baked into the artifact so
// a database blip does not log everyone out.
func (authenticator *Authenticator) verifySession(context context.Context, artifact string) (*sec.Principal, error) {
	claims, err := authenticator.sessions.Verify(artifact)
	if err != nil {
		return nil, err
	}

	account, err := authenticator.users.FindByEmail(context, claims.Email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, sec.ErrInvalidSession
		}
		return &sec.Principal{
			UserID:    claims.UserID,
			Email:     claims.Email,
			FirstName: claims.FirstName,
			LastName:  claims.LastName,
			AvatarURL: claims.AvatarURL,
		}, nil
	}

	return &sec.Principal{
		UserID:    account.ID,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		AvatarURL: account.AvatarURL,
	}, nil
}

// verifyLegacy validates a legacy token. No store round trip: the legacy
// path predates profile claims and carries only identity.
func (authenticator *Authenticator) verifyLegacy(token string) (*sec.Principal, error) {
	claims, err := authenticator.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	return &sec.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// # Credential Extraction

func sessionArtifactFrom(request *http.Request) (string, bool) {
	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// legacyTokenFrom prefers the Authorization header over the cookie: API
// clients set the header deliberately, while the cookie may be a leftover
// from a browser session.
func legacyTokenFrom(request *http.Request) (string, bool) {
	header := request.Header.Get(constants.HeaderAuthorization)
	if strings.HasPrefix(header, constants.BearerPrefix) {
		token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
		if token != "" {
			return token, true
		}
	}

	cookie, err := request.Cookie(constants.LegacyTokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Copyright (c) 2026 Taskora. All rights reserved.

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession is returned for every session-artifact verification
// failure, collapsing signature, shape, and expiry reasons into one sentinel
// for the same oracle-resistance reason as [ErrInvalidToken].
var ErrInvalidSession = errors.New("sec: invalid or expired session")

// SessionClaims is the payload of the OAuth session artifact.
//
// # Freshness
//
// The artifact is a pointer to "this email", not a frozen snapshot: the
// authenticator overwrites the display claims from the account store on
// every verification pass, so profile edits take effect without
// re-authentication. The values carried here are only a best-effort
// fallback for when the store is transiently unreachable.
type SessionClaims struct {
	jwt.RegisteredClaims

	UserID    string `json:"uid"`
	Email     string `json:"eml"`
	FirstName string `json:"gnm"`
	LastName  string `json:"fnm"`
	AvatarURL string `json:"avt"`
}

// SessionService mints and verifies the OAuth session artifact.
//
// It signs with a process-wide secret that is distinct from the legacy-token
// secret; both are loaded once at startup and never mutated.
type SessionService struct {
	secret []byte
	issuer string
}

// NewSessionService creates a SessionService signing with the process-wide
// session secret (HS256).
func NewSessionService(secret, issuer string) (*SessionService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: session secret is required")
	}
	return &SessionService{secret: []byte(secret), issuer: issuer}, nil
}

// Issue creates a signed session artifact for an OAuth-authenticated user.
func (service *SessionService) Issue(principal *Principal, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:    principal.UserID,
		Email:     principal.Email,
		FirstName: principal.FirstName,
		LastName:  principal.LastName,
		AvatarURL: principal.AvatarURL,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session artifact: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity of a session artifact.
//
// All failures return [ErrInvalidSession].
func (service *SessionService) Verify(artifact string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(artifact, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

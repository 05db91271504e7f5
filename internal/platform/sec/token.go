// Copyright (c) 2026 Taskora. All rights reserved.

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every legacy-token verification failure.
//
// # Oracle Resistance
//
// Signature mismatch, malformed payload, and expiry all collapse into this
// one sentinel so a caller (or an attacker probing the API) cannot tell the
// failure modes apart.
var ErrInvalidToken = errors.New("sec: invalid or expired token")

// TokenClaims is the payload embedded inside a legacy credentials-path JWT.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the payload small.
	UserID string `json:"uid"`
	Email  string `json:"eml"`
}

// TokenService mints and verifies the legacy credentials-path JWT.
//
// Tokens are stateless: there is no server-side revocation list, so logout
// is purely client-side cookie clearing. This is an accepted limitation of
// the legacy mechanism, not a bug.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a TokenService signing with the process-wide
// legacy-token secret (HS256).
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: legacy token secret is required")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// Issue creates a signed legacy token for the given user.
//
// # Parameters
//   - userID: The ID of the account.
//   - email: The normalized email of the account.
//   - timeToLive: The duration before the token expires.
func (service *TokenService) Issue(userID, email string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity of a legacy token string.
//
// All failures return [ErrInvalidToken]; see the sentinel's doc for why.
func (service *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

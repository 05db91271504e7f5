// Copyright (c) 2026 Taskora. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, token signing and
// verification) from the domain logic. It acts as an Infrastructure service
// injected into the Application layer via small interfaces.
//
// Two independent signers live here, one per credential era:
//
//   - [SessionService] mints and verifies the OAuth session artifact.
//   - [TokenService] mints and verifies the legacy credentials-path JWT.
//
// Their secrets are distinct by contract; sharing one key across both token
// families would let an artifact be replayed as a legacy token.
package sec

// Principal is the resolved identity of the caller for the duration of one request.
//
// # Lifecycle
//
// A Principal is produced fresh per request by the authenticator chain, carried
// in the request context, and discarded at response time. It is never persisted.
type Principal struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Copyright (c) 2026 Taskora. All rights reserved.

package auth

import "time"

// # Authentication Constraints

const (
	// LegacyTokenTTL is the duration a credentials-path JWT remains valid.
	// Fixed at 7 days; there is no server-side revocation before expiry.
	LegacyTokenTTL = 7 * 24 * time.Hour

	// SessionArtifactTTL is the duration an OAuth session artifact remains
	// valid. Matches the legacy token so the two credential eras expire on
	// the same horizon during the migration window.
	SessionArtifactTTL = 7 * 24 * time.Hour

	// OAuthStateLength is the byte length of the random state value.
	OAuthStateLength = 32

	// OAuthNonceLength is the byte length of the random OIDC nonce.
	OAuthNonceLength = 32
)

// Copyright (c) 2026 Taskora. All rights reserved.

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	gh "golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/internal/platform/config"
)

// # Provider Adapters

// ProviderAdapter abstracts one upstream OAuth provider. Adapters own the
// protocol details (authorization URL shape, code exchange, profile fetch)
// and reduce whatever the provider returns to an [Identity].
type ProviderAdapter interface {

	// Name returns the provider tag the adapter serves.
	Name() Provider

	// AuthURL builds the provider's authorization URL for one flow,
	// binding it to the given state and nonce.
	AuthURL(state, nonce string) string

	// Exchange trades the callback code for the asserted identity,
	// verifying the nonce where the protocol carries one. The caller is
	// responsible for bounding the context with a deadline.
	Exchange(context context.Context, code, nonce string) (*Identity, error)
}

// ProviderSet holds the adapters for all configured providers.
type ProviderSet struct {
	adapters map[Provider]ProviderAdapter
}

/*
NewProviderSet builds adapters for every provider with configured client
credentials. Google requires OIDC endpoint discovery, so construction can
fail on network errors; GitHub is statically configured.

Parameters:
  - context: context.Context (Used for OIDC discovery only)
  - cfg: *config.Config

Returns:
  - *ProviderSet: Adapters keyed by provider
  - error: OIDC discovery failures
*/
func NewProviderSet(context context.Context, cfg *config.Config) (*ProviderSet, error) {
	set := &ProviderSet{adapters: make(map[Provider]ProviderAdapter)}

	if cfg.HasGoogleOAuth() {
		adapter, err := newGoogleAdapter(context, cfg)
		if err != nil {
			return nil, fmt.Errorf("oauth_google_setup_failed: %w", err)
		}
		set.adapters[ProviderGoogle] = adapter
	}

	if cfg.HasGithubOAuth() {
		set.adapters[ProviderGithub] = newGithubAdapter(cfg)
	}

	return set, nil
}

// Get returns the adapter for the named provider.
// Unknown or unconfigured providers surface as NotFound so the HTTP layer
// answers 404 without special-casing.
func (set *ProviderSet) Get(name string) (ProviderAdapter, error) {
	adapter, ok := set.adapters[Provider(name)]
	if !ok {
		return nil, apperr.NotFound("Sign-in provider")
	}
	return adapter, nil
}

func callbackURL(cfg *config.Config, provider Provider) string {
	return fmt.Sprintf("%s/api/v1/auth/oauth/%s/callback", cfg.OAuthRedirectBase, provider)
}

// # Google (OIDC)

// googleAdapter signs in through Google's OpenID Connect flow. The identity
// comes from a verified ID token, not a profile API call, so sub, email,
// and the verification flag are asserted cryptographically.
type googleAdapter struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func newGoogleAdapter(context context.Context, cfg *config.Config) (*googleAdapter, error) {

	// Discover Google OIDC endpoints
	provider, err := oidc.NewProvider(context, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	return &googleAdapter{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  callbackURL(cfg, ProviderGoogle),
			Endpoint:     google.Endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.GoogleClientID}),
	}, nil
}

func (adapter *googleAdapter) Name() Provider { return ProviderGoogle }

func (adapter *googleAdapter) AuthURL(state, nonce string) string {
	return adapter.oauth.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
		oauth2.SetAuthURLParam("nonce", nonce),
	)
}

/*
Exchange trades the authorization code for a verified Google identity.

Description: Exchanges the code, verifies the returned ID token signature
and audience, checks the nonce against the one bound to this flow, and
rejects unverified email addresses.

Parameters:
  - context: context.Context (Deadline-bounded by the caller)
  - code: string
  - nonce: string (Expected nonce from the stored flow state)

Returns:
  - *Identity: Normalized profile
  - error: apperr.Unauthorized on any verification failure
*/
func (adapter *googleAdapter) Exchange(context context.Context, code, nonce string) (*Identity, error) {
	token, err := adapter.oauth.Exchange(context, code)
	if err != nil {
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}

	idToken, err := adapter.verifier.Verify(context, rawIDToken)
	if err != nil {
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
		Nonce         string `json:"nonce"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}

	if claims.Sub == "" || claims.Email == "" || !claims.EmailVerified {
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}

	// Nonce mismatch means the ID token was not minted for this flow.
	if claims.Nonce == "" || claims.Nonce != nonce {
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}

	return &Identity{
		Provider:   ProviderGoogle,
		ProviderID: claims.Sub,
		Email:      claims.Email,
		FirstName:  claims.GivenName,
		LastName:   claims.FamilyName,
		AvatarURL:  claims.Picture,
	}, nil
}

// # GitHub

// githubAdapter signs in through GitHub's plain OAuth2 flow. GitHub issues
// no ID token, so the identity comes from two REST calls made with the
// freshly exchanged access token; the nonce is checked upstream against the
// stored flow state and has no wire representation here.
type githubAdapter struct {
	oauth *oauth2.Config
}

func newGithubAdapter(cfg *config.Config) *githubAdapter {
	return &githubAdapter{
		oauth: &oauth2.Config{
			ClientID:     cfg.GithubClientID,
			ClientSecret: cfg.GithubClientSecret,
			RedirectURL:  callbackURL(cfg, ProviderGithub),
			Endpoint:     gh.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
	}
}

func (adapter *githubAdapter) Name() Provider { return ProviderGithub }

func (adapter *githubAdapter) AuthURL(state, nonce string) string {
	// GitHub has no nonce parameter; state alone binds the flow.
	_ = nonce
	return adapter.oauth.AuthCodeURL(state)
}

/*
Exchange trades the authorization code for a GitHub identity.

Description: Exchanges the code, then resolves the profile from the /user
endpoint and the primary verified email from /user/emails. Accounts without
a verified primary email are rejected to keep email a safe linking key.

Parameters:
  - context: context.Context (Deadline-bounded by the caller)
  - code: string
  - nonce: string (Unused; GitHub's flow carries no nonce)

Returns:
  - *Identity: Normalized profile
  - error: apperr.Unauthorized on exchange or profile resolution failure
*/
func (adapter *githubAdapter) Exchange(context context.Context, code, _ string) (*Identity, error) {
	token, err := adapter.oauth.Exchange(context, code)
	if err != nil {
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}

	client := adapter.oauth.Client(context, token)

	var profile struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(context, client, "https://api.github.com/user", &profile); err != nil {
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(context, client, "https://api.github.com/user/emails", &emails); err != nil {
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}

	email := ""
	for _, candidate := range emails {
		if candidate.Primary && candidate.Verified {
			email = candidate.Email
			break
		}
	}
	if profile.ID == 0 || email == "" {
		return nil, apperr.Unauthorized("Sign-in could not be completed")
	}

	firstName, lastName := splitName(profile.Name)
	if firstName == "" {
		firstName = profile.Login
	}

	return &Identity{
		Provider:   ProviderGithub,
		ProviderID: fmt.Sprintf("%d", profile.ID),
		Email:      email,
		FirstName:  firstName,
		LastName:   lastName,
		AvatarURL:  profile.AvatarURL,
	}, nil
}

func getJSON(context context.Context, client *http.Client, url string, out any) error {
	request, err := http.NewRequestWithContext(context, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/vnd.github+json")

	response, err := client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("github api status %d for %s", response.StatusCode, url)
	}

	return json.NewDecoder(response.Body).Decode(out)
}

// splitName breaks a display name into first and last on the first space.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

// # Flow Randomness

// RandomToken returns a URL-safe random string of n bytes of entropy, used
// for OAuth state and nonce values.
func RandomToken(n int) (string, error) {
	buffer := make([]byte, n)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("oauth_random_token_failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

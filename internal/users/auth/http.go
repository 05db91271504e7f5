// Copyright (c) 2026 Taskora. All rights reserved.

/*
Package auth provides the HTTP delivery layer for the authentication core.

It implements the gateway for the credential lifecycle, from account creation
through both sign-in paths to logout.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface, plus the browser-facing
    OAuth redirect dance.
  - Security: Handles token and session-artifact cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/internal/platform/constants"
	"github.com/taskora/taskora/internal/platform/middleware"
	"github.com/taskora/taskora/internal/platform/ratelimit"
	requestutil "github.com/taskora/taskora/internal/platform/request"
	"github.com/taskora/taskora/internal/platform/respond"
	"github.com/taskora/taskora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the credential lifecycle entry
// points (Registration, Login, the OAuth dance, Logout).
type Handler struct {
	authService *Service
	providers   *ProviderSet
	logger      *slog.Logger
	secure      bool
}

// NewHandler constructs a new [Handler] with its dependencies.
// secure controls the Secure flag on issued cookies; it is false only in
// local development over plain HTTP.
func NewHandler(service *Service, providers *ProviderSet, logger *slog.Logger, secure bool) *Handler {
	return &Handler{
		authService: service,
		providers:   providers,
		logger:      logger,
		secure:      secure,
	}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// The limit factory binds one fixed-window profile per route; credential
// endpoints carry the tight auth budget, logout the ordinary api budget.
//
// # Endpoints
//   - POST /register                  : Creates a new account (or adds a password).
//   - POST /login                     : Authenticates and returns a legacy token.
//   - POST /logout                    : Clears credential cookies.
//   - GET  /oauth/{provider}          : Starts the provider sign-in flow.
//   - GET  /oauth/{provider}/callback : Completes the provider sign-in flow.
func (handler *Handler) Routes(limit middleware.LimitFactory) chi.Router {
	router := chi.NewRouter()

	router.With(limit(ratelimit.ProfileAuth)).Post("/register", handler.register)
	router.With(limit(ratelimit.ProfileAuth)).Post("/login", handler.login)
	router.With(limit(ratelimit.ProfileAPI)).Post("/logout", handler.logout)

	router.With(limit(ratelimit.ProfileAuth)).Get("/oauth/{provider}", handler.oauthStart)
	router.With(limit(ratelimit.ProfileAuth)).Get("/oauth/{provider}/callback", handler.oauthCallback)

	return router
}

// # Request Payloads

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input (including password strength and content
screening), then either creates a fresh account or, when the email belongs
to an OAuth-only account, sets that account's first password.

Request:
  - Body: registerRequest (Email, Password, FirstName, LastName)

Response:
  - 201: User: Created user profile
  - 200: Token + User: Password added to an existing OAuth account
  - 400: ErrInvalidJSON: Bad input, weak password, or validation failure
  - 409: ErrConflict: Email already registered with a password
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, 254).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password).
		MaxLen(FieldFirstName, input.FirstName, 100).
		MaxLen(FieldLastName, input.LastName, 100).
		Safe(FieldEmail, input.Email).
		Safe(FieldFirstName, input.FirstName).
		Safe(FieldLastName, input.LastName)

	handler.logSuspicious(request, validator)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.PasswordAdded {
		handler.setLegacyCookie(writer, result.Token, time.Now().Add(LegacyTokenTTL))
		respond.OK(writer, map[string]any{
			FieldMessage: "Password added to your account",
			FieldToken:   result.Token,
			FieldUser:    result.User,
		})
		return
	}

	respond.Created(writer, result.User)
}

/*
Login authenticates a user with email and password.

POST /api/v1/auth/login

Description: Verifies credentials behind the per-source backoff guard and
the account lockout, then issues the legacy token as both a response field
and an HttpOnly cookie.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Legacy token and user profile
  - 401: ErrUnauthorized: Invalid credentials, locked, or OAuth-only account
  - 429: ErrRateLimited: Source is backing off; Retry-After is set
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:     input.Email,
		Password:  input.Password,
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setLegacyCookie(writer, session.Token, session.ExpiresAt)

	respond.OK(writer, map[string]any{
		FieldToken: session.Token,
		FieldUser:  session.User,
	})
}

/*
Logout clears all credential cookies.

POST /api/v1/auth/logout

Description: Both the legacy token and the session artifact are stateless,
so logout is purely client-side cookie clearing; nothing is revoked
server-side. Idempotent.

Response:
  - 204: No Content: Cookies cleared
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.clearCookie(writer, constants.LegacyTokenCookieName)
	handler.clearCookie(writer, constants.SessionCookieName)
	respond.NoContent(writer)
}

// # OAuth Dance

/*
OAuthStart begins a provider sign-in flow.

GET /api/v1/auth/oauth/{provider}?callback=/some/path

Description: Mints the state and nonce, stores them server-side, and
redirects the browser to the provider's authorization page. The optional
callback query parameter records where to land after sign-in; only
same-origin paths are honored.

Response:
  - 302: Redirect to the provider
  - 404: ErrNotFound: Unknown or unconfigured provider
*/
func (handler *Handler) oauthStart(writer http.ResponseWriter, request *http.Request) {
	adapter, err := handler.providers.Get(requestutil.Param(request, FieldProvider))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	callback := sanitizeCallback(request.URL.Query().Get(constants.CallbackParam))

	start, err := handler.authService.StartOAuth(request.Context(), adapter, callback)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.Redirect(writer, request, start.RedirectURL, http.StatusFound)
}

/*
OAuthCallback completes a provider sign-in flow.

GET /api/v1/auth/oauth/{provider}/callback?code=...&state=...

Description: Consumes the stored state (single use), exchanges the code
with the provider, links or creates the account, sets the session artifact
cookie, and sends the browser to its post-login destination.

Response:
  - 302: Redirect to the recorded callback path, or /app
  - 401: ErrUnauthorized: Provider exchange or verification failed
  - 404: ErrNotFound: Unknown provider or invalid state
*/
func (handler *Handler) oauthCallback(writer http.ResponseWriter, request *http.Request) {
	adapter, err := handler.providers.Get(requestutil.Param(request, FieldProvider))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	code := request.URL.Query().Get(FieldCode)
	state := request.URL.Query().Get(FieldState)
	if code == "" || state == "" {
		respond.Error(writer, request, apperr.ValidationError("Missing code or state parameter"))
		return
	}

	session, err := handler.authService.CompleteOAuth(request.Context(), adapter, code, state)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    session.Artifact,
		Path:     "/",
		Expires:  session.ExpiresAt,
		Secure:   handler.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	destination := session.Callback
	if destination == "" {
		destination = constants.AppPath
	}

	http.Redirect(writer, request, destination, http.StatusFound)
}

// # Cookie Helpers

func (handler *Handler) setLegacyCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.LegacyTokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		Secure:   handler.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) clearCookie(writer http.ResponseWriter, name string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   handler.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// logSuspicious records a security event for every field that tripped the
// content screen. Screening failures still return a plain validation error;
// the detail lives only in the logs.
func (handler *Handler) logSuspicious(request *http.Request, validator *validate.Validator) {
	fields := validator.SuspiciousFields()
	if len(fields) == 0 {
		return
	}
	handler.logger.Warn("suspicious input rejected",
		slog.String("path", request.URL.Path),
		slog.String("ip", middleware.RealIP(request)),
		slog.String("fields", strings.Join(fields, ",")),
	)
}

// sanitizeCallback keeps post-login redirects on-origin. Anything that is
// not a plain absolute path (open redirect attempts, protocol-relative
// URLs) collapses to empty, which later defaults to /app.
func sanitizeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host != "" || parsed.Scheme != "" {
		return ""
	}
	return raw
}

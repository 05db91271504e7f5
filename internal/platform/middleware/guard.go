// Copyright (c) 2026 Taskora. All rights reserved.

package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/taskora/taskora/internal/platform/apperr"
	"github.com/taskora/taskora/internal/platform/constants"
	"github.com/taskora/taskora/internal/platform/ctxutil"
	"github.com/taskora/taskora/internal/platform/ratelimit"
	"github.com/taskora/taskora/internal/platform/respond"
	"github.com/taskora/taskora/internal/platform/sec"
)

// PrincipalResolver resolves the caller identity from an inbound request.
//
// # Why an interface?
//
// Defining PrincipalResolver here decouples the middleware from the `auth`
// package's verifier chain, allowing us to easily inject fakes during unit
// testing. The concrete implementation tries the OAuth session artifact
// first, then the legacy bearer/cookie token.
type PrincipalResolver interface {
	Authenticate(request *http.Request) (*sec.Principal, error)
}

// Authenticate resolves and injects the caller identity for every request.
//
// # Flow
//  1. Ask the resolver chain for a principal.
//  2. On success, inject [*sec.Principal] into the request context.
//  3. On failure, the request proceeds as anonymous; the specific failure
//     reason is logged at debug level only, never sent to the client.
//
// Resolution is side-effect-free; enforcement belongs to [RequireAuth]
// and [RouteGuard].
func Authenticate(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal, err := resolver.Authenticate(request)
			if err != nil {
				// Reason is for logs only; responses never differentiate.
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(),
					"authentication_unresolved", slog.String("reason", err.Error()))
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Route Classification

// GuardRoutes is the fixed allow/deny table of path prefixes for the
// boundary guard.
type GuardRoutes struct {
	// Protected prefixes require a resolved principal; anonymous visitors
	// are redirected to the login page with the original path preserved.
	Protected []string

	// AuthEntry prefixes (login/register pages) redirect already-resolved
	// principals away to the application.
	AuthEntry []string
}

// RouteGuard classifies each request path and redirects callers that are on
// the wrong side of the authentication boundary.
//
// # Usage
//
// Must be registered AFTER [Authenticate]. API routes under /api are left
// to [RequireAuth]'s 401 handling; the guard's redirects are for page
// navigation.
func RouteGuard(routes GuardRoutes) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())
			path := request.URL.Path

			// 1. Protected area: anonymous visitors go to login, keeping
			// the original destination as a callback target.
			if principal == nil && hasPrefix(path, routes.Protected) {
				target := constants.LoginPath + "?" + constants.CallbackParam + "=" + url.QueryEscape(path)
				http.Redirect(writer, request, target, http.StatusFound)
				return
			}

			// 2. Auth entry: an already-authenticated visitor has no
			// business on the login or register pages.
			if principal != nil && hasPrefix(path, routes.AuthEntry) {
				http.Redirect(writer, request, constants.AppPath, http.StatusFound)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// hasPrefix reports whether path falls under any of the given prefixes.
func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// # Security Headers

// SecurityHeaders attaches the fixed response-header contract to every
// response. These are not configurable per route.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := writer.Header()
			header.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			header.Set("X-Content-Type-Options", "nosniff")
			header.Set("X-Frame-Options", "DENY")
			header.Set("X-XSS-Protection", "1; mode=block")
			header.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			header.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(writer, request)
		})
	}
}

// # Fixed-Window Throttling

// LimitFactory binds a fixed-window profile to a route. Handlers receive
// one from the composition root so every route declares its own budget
// class without knowing about the shared limiter instance.
type LimitFactory func(profile ratelimit.Profile) func(http.Handler) http.Handler

// NewLimitFactory returns a LimitFactory over the given limiter.
func NewLimitFactory(limiter *ratelimit.Limiter) LimitFactory {
	return func(profile ratelimit.Profile) func(http.Handler) http.Handler {
		return Limit(limiter, profile)
	}
}

// Limit applies a fixed-window budget from the ratelimit component, keyed
// by (client IP, request path).
//
// Denials return 429 with a Retry-After header carrying the caller-visible
// wait in whole seconds (always at least 1).
func Limit(limiter *ratelimit.Limiter, profile ratelimit.Profile) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			key := RealIP(request) + "|" + request.URL.Path

			allowed, retryAfter := limiter.Allow(key, profile)
			if !allowed {
				// Round up: under-reporting the wait invites an immediate
				// retry that will also be denied.
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				respond.Error(writer, request, apperr.RateLimited(seconds))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

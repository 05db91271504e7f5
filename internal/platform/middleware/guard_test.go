// Copyright (c) 2026 Taskora. All rights reserved.

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskora/taskora/internal/platform/ctxutil"
	"github.com/taskora/taskora/internal/platform/middleware"
	"github.com/taskora/taskora/internal/platform/ratelimit"
	"github.com/taskora/taskora/internal/platform/sec"
)

// staticResolver always answers with the configured principal or error.
type staticResolver struct {
	principal *sec.Principal
	err       error
}

func (resolver *staticResolver) Authenticate(_ *http.Request) (*sec.Principal, error) {
	return resolver.principal, resolver.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestSecurityHeaders verifies the fixed response-header contract is attached
verbatim to every response.
*/
func TestSecurityHeaders(t *testing.T) {
	handler := middleware.SecurityHeaders()(okHandler())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/any", nil))

	expected := map[string]string{
		"Strict-Transport-Security": "max-age=63072000; includeSubDomains",
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"X-XSS-Protection":          "1; mode=block",
		"Permissions-Policy":        "camera=(), microphone=(), geolocation=()",
		"Referrer-Policy":           "strict-origin-when-cross-origin",
	}
	for name, value := range expected {
		assert.Equal(t, value, recorder.Header().Get(name), name)
	}
}

/*
TestAuthenticate verifies the resolver outcome is reflected in the request
context: a principal on success, anonymous continuation on failure.
*/
func TestAuthenticate(t *testing.T) {
	t.Run("resolved_principal_injected", func(t *testing.T) {
		var seen *sec.Principal
		handler := middleware.Authenticate(&staticResolver{
			principal: &sec.Principal{UserID: "acct-1", Email: "member@example.com"},
		})(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			seen = ctxutil.GetPrincipal(request.Context())
			writer.WriteHeader(http.StatusOK)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

		require.NotNil(t, seen)
		assert.Equal(t, "acct-1", seen.UserID)
	})

	t.Run("failure_proceeds_anonymous", func(t *testing.T) {
		var seen *sec.Principal
		handler := middleware.Authenticate(&staticResolver{
			err: errors.New("invalid credentials"),
		})(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			seen = ctxutil.GetPrincipal(request.Context())
			writer.WriteHeader(http.StatusOK)
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))

		assert.Nil(t, seen)
		assert.Equal(t, http.StatusOK, recorder.Code, "resolution never blocks, enforcement does")
	})
}

/*
TestRequireAuth verifies the enforcement middleware: 401 for anonymous
requests, pass-through when a principal is present.
*/
func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(okHandler())

	t.Run("anonymous_rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("principal_passes", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{UserID: "acct-1"})

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request.WithContext(ctx))

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

/*
TestRouteGuard covers the page-navigation boundary: anonymous visitors in
the protected area bounce to login with a callback, authenticated visitors
on auth entry pages bounce to the application, everything else passes.
*/
func TestRouteGuard(t *testing.T) {
	guard := middleware.RouteGuard(middleware.GuardRoutes{
		Protected: []string{"/app"},
		AuthEntry: []string{"/login", "/register"},
	})
	handler := guard(okHandler())

	withPrincipal := func(request *http.Request) *http.Request {
		ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{UserID: "acct-1"})
		return request.WithContext(ctx)
	}

	tests := []struct {
		name          string
		path          string
		authenticated bool
		wantStatus    int
		wantLocation  string
	}{
		{"anonymous_protected_root", "/app", false, http.StatusFound, "/login?callback=%2Fapp"},
		{"anonymous_protected_subpath", "/app/tasks/42", false, http.StatusFound, "/login?callback=%2Fapp%2Ftasks%2F42"},
		{"anonymous_login_page", "/login", false, http.StatusOK, ""},
		{"anonymous_public_page", "/about", false, http.StatusOK, ""},
		{"authenticated_protected", "/app/tasks", true, http.StatusOK, ""},
		{"authenticated_login_page", "/login", true, http.StatusFound, "/app"},
		{"authenticated_register_page", "/register", true, http.StatusFound, "/app"},
		{"prefix_requires_boundary", "/application", false, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authenticated {
				request = withPrincipal(request)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, recorder.Header().Get("Location"))
			}
		})
	}
}

/*
TestLimit verifies the throttling middleware: requests within budget pass,
the first over-budget request gets 429 with a Retry-After of at least one
second.
*/
func TestLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	limiter := ratelimit.NewLimiter(ctx)
	handler := middleware.Limit(limiter, ratelimit.ProfileSensitive)(okHandler())

	for i := 0; i < ratelimit.ProfileSensitive.MaxRequests; i++ {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/me/password", nil))
		require.Equal(t, http.StatusOK, recorder.Code, "request %d should be within budget", i+1)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/me/password", nil))

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	retryAfter, err := strconv.Atoi(recorder.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)

	// A different path keeps its own budget under the same profile factory.
	factory := middleware.NewLimitFactory(limiter)
	otherHandler := factory(ratelimit.ProfileSensitive)(okHandler())
	otherRecorder := httptest.NewRecorder()
	otherHandler.ServeHTTP(otherRecorder, httptest.NewRequest(http.MethodPost, "/api/v1/other", nil))
	assert.Equal(t, http.StatusOK, otherRecorder.Code)
}

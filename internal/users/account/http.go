// Copyright (c) 2026 Taskora. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskora/taskora/internal/platform/middleware"
	"github.com/taskora/taskora/internal/platform/ratelimit"
	requestutil "github.com/taskora/taskora/internal/platform/request"
	"github.com/taskora/taskora/internal/platform/respond"
	"github.com/taskora/taskora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the /me profile endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the profile endpoints.
// Every route requires an authenticated principal. The password endpoint
// carries the sensitive budget; the rest use the ordinary api budget.
//
// # Endpoints
//   - GET   /         : Current profile.
//   - PATCH /         : Partial profile update.
//   - POST  /password : Set or change the password.
func (handler *Handler) Routes(limit middleware.LimitFactory) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.With(limit(ratelimit.ProfileAPI)).Get("/", handler.me)
	router.With(limit(ratelimit.ProfileAPI)).Patch("/", handler.update)
	router.With(limit(ratelimit.ProfileSensitive)).Post("/password", handler.changePassword)

	return router
}

// # Request Payloads

type updateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
Me returns the authenticated member's profile.

GET /api/v1/me

Response:
  - 200: Account: Full profile
  - 401: ErrUnauthorized: Not signed in
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.Get(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
Update applies a partial profile edit.

PATCH /api/v1/me

Description: Absent fields are left untouched; present-but-empty fields are
cleared. All text passes the content screen.

Request:
  - Body: updateRequest (FirstName, LastName, AvatarURL, Bio; all optional)

Response:
  - 200: Account: Updated profile
  - 400: ErrInvalidJSON: Bad input or screened content
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.FirstName != nil {
		validator.MaxLen("first_name", *input.FirstName, 100).Safe("first_name", *input.FirstName)
	}
	if input.LastName != nil {
		validator.MaxLen("last_name", *input.LastName, 100).Safe("last_name", *input.LastName)
	}
	if input.AvatarURL != nil {
		validator.MaxLen("avatar_url", *input.AvatarURL, 500).Safe("avatar_url", *input.AvatarURL)
	}
	if input.Bio != nil {
		validator.MaxLen("bio", *input.Bio, 1000).Safe("bio", *input.Bio)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.Update(request.Context(), userID, UpdateInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		AvatarURL: input.AvatarURL,
		Bio:       input.Bio,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
ChangePassword sets or replaces the member's password.

POST /api/v1/me/password

Description: Members with a password must supply their current one. Members
who signed up through OAuth set their first password here without a current
one; the success message tells the two cases apart so the client can phrase
its confirmation correctly.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Message: "Password set" or "Password changed"
  - 400: ErrInvalidJSON: Weak new password
  - 401: ErrUnauthorized: Wrong current password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("new_password", input.NewPassword).
		Password("new_password", input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.accountService.ChangePassword(request.Context(), userID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	message := "Password changed"
	if result.InitialSet {
		message = "Password set"
	}

	respond.OK(writer, map[string]string{"message": message})
}

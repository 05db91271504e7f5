// Copyright (c) 2026 Taskora. All rights reserved.

package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskora/taskora/internal/platform/middleware"
	"github.com/taskora/taskora/internal/platform/ratelimit"
	requestutil "github.com/taskora/taskora/internal/platform/request"
	"github.com/taskora/taskora/internal/platform/respond"
	"github.com/taskora/taskora/internal/platform/validate"
	"github.com/taskora/taskora/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the CRUD endpoints. Reads carry the generous read budget,
// writes the ordinary api budget.
func (handler *Handler) Routes(limit middleware.LimitFactory) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.With(limit(ratelimit.ProfileRead)).Get("/", handler.listTasks)
	router.With(limit(ratelimit.ProfileRead)).Get("/{id}", handler.getTask)
	router.With(limit(ratelimit.ProfileAPI)).Post("/", handler.createTask)
	router.With(limit(ratelimit.ProfileAPI)).Patch("/{id}", handler.updateTask)
	router.With(limit(ratelimit.ProfileAPI)).Delete("/{id}", handler.deleteTask)

	return router
}

func (handler *Handler) listTasks(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	filter := Filter{
		Status: Status(request.URL.Query().Get(FieldStatus)),
	}

	tasks, total, err := handler.service.ListTasks(request.Context(), ownerID, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, tasks, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getTask(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.GetTask(request.Context(), ownerID, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

func (handler *Handler) createTask(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Task
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	input.OwnerID = ownerID

	if err := handler.service.CreateTask(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateTask(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Task
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.service.UpdateTask(request.Context(), ownerID, requestutil.Param(request, "id"), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteTask(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteTask(request.Context(), ownerID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

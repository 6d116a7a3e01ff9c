package projects

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/FerDom92/task-manager-pro/internal/permissions"
	"github.com/FerDom92/task-manager-pro/internal/platform/httpx"
	"github.com/FerDom92/task-manager-pro/internal/shared"
	"github.com/FerDom92/task-manager-pro/internal/tasks"
)

// TaskLister exposes the slice of the tasks service the projects API
// needs for the project task listing.
type TaskLister interface {
	ListByProject(ctx context.Context, projectID string) ([]tasks.Task, error)
}

// Handler wires HTTP endpoints for projects and memberships.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	taskList  TaskLister
	guard     *permissions.Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, taskList TaskLister, guard *permissions.Guard) *Handler {
	return &Handler{logger: logger, service: service, taskList: taskList, guard: guard, validator: validator.New()}
}

// MountRoutes registers project routes. The router must sit behind the
// auth middleware; per-resource authorization is enforced by the guard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)

	view := h.guard.RequireProject(permissions.ProjectActionView)
	manage := h.guard.RequireProject(permissions.ProjectActionManageMembers)

	r.With(view).Get("/{id}", h.handleGet)
	r.With(h.guard.RequireProject(permissions.ProjectActionUpdate)).Patch("/{id}", h.handleUpdate)
	r.With(h.guard.RequireProject(permissions.ProjectActionDelete)).Delete("/{id}", h.handleDelete)
	r.With(view).Get("/{id}/tasks", h.handleTasks)
	r.With(view).Get("/{id}/members", h.handleMembers)
	r.With(manage).Post("/{id}/members", h.handleAddMember)
	r.With(manage).Patch("/{id}/members/{userId}", h.handleUpdateMemberRole)
	r.With(manage).Delete("/{id}/members/{userId}", h.handleRemoveMember)
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

type updateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

type addMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=ADMIN MEMBER VIEWER"`
}

type updateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN MEMBER VIEWER"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID := shared.UserIDFromContext(r.Context())
	view, err := h.service.Create(r.Context(), userID, CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		h.respondError(w, "create project", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	views, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.respondError(w, "list projects", err)
		return
	}
	if views == nil {
		views = []View{}
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	view, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get project", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	project, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		h.respondError(w, "update project", err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTasks(w http.ResponseWriter, r *http.Request) {
	list, err := h.taskList.ListByProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "list project tasks", err)
		return
	}
	if list == nil {
		list = []tasks.Task{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.Members(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "list members", err)
		return
	}
	if members == nil {
		members = []Member{}
	}
	httpx.JSON(w, http.StatusOK, members)
}

func (h *Handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inviterID := shared.UserIDFromContext(r.Context())
	member, err := h.service.AddMember(r.Context(), inviterID, chi.URLParam(r, "id"), req.UserID, permissions.Role(req.Role))
	if err != nil {
		h.respondError(w, "add member", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, member)
}

func (h *Handler) handleUpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req updateMemberRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	member, err := h.service.UpdateMemberRole(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userId"), permissions.Role(req.Role))
	if err != nil {
		h.respondError(w, "update member role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, member)
}

func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, "remove member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrAlreadyMember):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrOwnerImmutable):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

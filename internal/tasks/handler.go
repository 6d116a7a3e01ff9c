package tasks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/FerDom92/task-manager-pro/internal/permissions"
	"github.com/FerDom92/task-manager-pro/internal/platform/httpx"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// Handler wires HTTP endpoints for tasks.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     *permissions.Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *permissions.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers task routes. The router must sit behind the auth
// middleware; per-resource authorization is enforced by the guard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/stats", h.handleStats)
	r.With(h.guard.RequireTask(permissions.TaskActionView)).Get("/{id}", h.handleGet)
	r.With(h.guard.RequireTask(permissions.TaskActionUpdate)).Patch("/{id}", h.handleUpdate)
	r.With(h.guard.RequireTask(permissions.TaskActionDelete)).Delete("/{id}", h.handleDelete)
	r.With(h.guard.RequireTask(permissions.TaskActionAssign)).Post("/{id}/assign", h.handleAssign)
}

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CategoryID  *string    `json:"categoryId"`
	ProjectID   *string    `json:"projectId"`
	AssigneeID  *string    `json:"assigneeId"`
}

// updateTaskRequest keeps nullable fields as raw JSON so a missing key,
// an explicit null, and a value can be told apart.
type updateTaskRequest struct {
	Title       *string         `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Status      *string         `json:"status"`
	Priority    *string         `json:"priority"`
	DueDate     json.RawMessage `json:"dueDate"`
	CategoryID  json.RawMessage `json:"categoryId"`
	ProjectID   json.RawMessage `json:"projectId"`
	AssigneeID  json.RawMessage `json:"assigneeId"`
}

type assignTaskRequest struct {
	AssigneeID json.RawMessage `json:"assigneeId"`
}

type taskListResponse struct {
	Tasks      []Task            `json:"tasks"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID := shared.UserIDFromContext(r.Context())
	task, err := h.service.Create(r.Context(), userID, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      Status(req.Status),
		Priority:    Priority(req.Priority),
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		h.respondError(w, "create task", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	tasks, pagination, err := h.service.List(r.Context(), userID, parseFilters(r))
	if err != nil {
		h.respondError(w, "list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	httpx.JSON(w, http.StatusOK, taskListResponse{Tasks: tasks, Pagination: pagination})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		h.respondError(w, "task stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := UpdateInput{Title: req.Title, Description: req.Description}
	if req.Status != nil {
		status := Status(*req.Status)
		in.Status = &status
	}
	if req.Priority != nil {
		priority := Priority(*req.Priority)
		in.Priority = &priority
	}
	var err error
	if in.DueDate, in.ClearDue, err = optionalTime(req.DueDate); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "dueDate must be an RFC 3339 timestamp or null")
		return
	}
	if in.CategoryID, in.ClearCat, err = optionalString(req.CategoryID); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "categoryId must be a string or null")
		return
	}
	if in.ProjectID, in.ClearProj, err = optionalString(req.ProjectID); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "projectId must be a string or null")
		return
	}
	if in.AssigneeID, in.ClearAssign, err = optionalString(req.AssigneeID); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "assigneeId must be a string or null")
		return
	}

	userID := shared.UserIDFromContext(r.Context())
	task, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		h.respondError(w, "update task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req assignTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	assigneeID, _, err := optionalString(req.AssigneeID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "assigneeId must be a string or null")
		return
	}
	userID := shared.UserIDFromContext(r.Context())
	task, err := h.service.Assign(r.Context(), userID, chi.URLParam(r, "id"), assigneeID)
	if err != nil {
		h.respondError(w, "assign task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var denied *permissions.DeniedError
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, permissions.ErrProjectNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", permissions.ReasonProjectNotFound)
	case errors.As(err, &denied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", denied.Reason)
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseFilters(r *http.Request) Filters {
	q := r.URL.Query()
	f := Filters{
		Status:     Status(q.Get("status")),
		Priority:   Priority(q.Get("priority")),
		CategoryID: q.Get("categoryId"),
		ProjectID:  q.Get("projectId"),
		AssigneeID: q.Get("assigneeId"),
		Search:     q.Get("search"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	return f
}

func optionalString(raw json.RawMessage) (value *string, clear bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, err
	}
	return &s, false, nil
}

func optionalTime(raw json.RawMessage) (value *time.Time, clear bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, false, err
	}
	return &t, false, nil
}

package categories

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/FerDom92/task-manager-pro/internal/platform/httpx"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// Store is the persistence dependency of the handler. Categories carry
// no business rules beyond ownership scoping, so there is no service
// layer in between.
type Store interface {
	Create(ctx context.Context, userID, name, color string) (Category, error)
	List(ctx context.Context, userID string) ([]Category, error)
	Update(ctx context.Context, userID, id, name, color string) (Category, error)
	Delete(ctx context.Context, userID, id string) error
}

// Handler wires HTTP endpoints for categories.
type Handler struct {
	logger    *slog.Logger
	store     Store
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, store Store) *Handler {
	return &Handler{logger: logger, store: store, validator: validator.New()}
}

// MountRoutes registers category routes behind the auth middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type categoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID := shared.UserIDFromContext(r.Context())
	category, err := h.store.Create(r.Context(), userID, req.Name, req.Color)
	if err != nil {
		h.respondError(w, "create category", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	list, err := h.store.List(r.Context(), userID)
	if err != nil {
		h.respondError(w, "list categories", err)
		return
	}
	if list == nil {
		list = []Category{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID := shared.UserIDFromContext(r.Context())
	category, err := h.store.Update(r.Context(), userID, chi.URLParam(r, "id"), req.Name, req.Color)
	if err != nil {
		h.respondError(w, "update category", err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	if err := h.store.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrNameTaken):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

package permissions

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FerDom92/task-manager-pro/internal/platform/httpx"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// Handler exposes the capability summary endpoints consumed by the
// frontend to pre-render permission-gated UI in one round trip.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountTaskRoutes registers the task summary route on a /tasks subrouter.
func (h *Handler) MountTaskRoutes(r chi.Router) {
	r.Get("/{id}/permissions", h.taskPermissions)
}

// MountProjectRoutes registers the project summary route on a /projects subrouter.
func (h *Handler) MountProjectRoutes(r chi.Router) {
	r.Get("/{id}/permissions", h.projectPermissions)
}

func (h *Handler) taskPermissions(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	if userID == "" {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	perms, err := h.service.TaskPermissions(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", ReasonTaskNotFound)
			return
		}
		h.logger.Error("task permission summary", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (h *Handler) projectPermissions(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	if userID == "" {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	perms, err := h.service.ProjectPermissions(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", ReasonProjectNotFound)
			return
		}
		h.logger.Error("project permission summary", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

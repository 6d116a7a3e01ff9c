package notifications

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FerDom92/task-manager-pro/internal/platform/httpx"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// Handler wires HTTP endpoints for the notification feed.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers notification routes behind the auth middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/unread-count", h.handleUnreadCount)
	r.Patch("/{id}/read", h.handleMarkRead)
	r.Patch("/read-all", h.handleMarkAllRead)
	r.Delete("/{id}", h.handleDelete)
	r.Delete("/", h.handleDeleteAll)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"
	list, err := h.service.List(r.Context(), userID, unreadOnly)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Notification{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		h.logger.Error("unread count", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	n, err := h.service.MarkRead(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("mark read", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		h.logger.Error("mark all read", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete notification", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	if err := h.service.DeleteAll(r.Context(), userID); err != nil {
		h.logger.Error("delete all notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FerDom92/task-manager-pro/internal/platform/httpx"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// Handler wires the dashboard endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the dashboard route behind the auth middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

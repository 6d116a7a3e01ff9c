package permissions

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FerDom92/task-manager-pro/internal/platform/httpx"
	"github.com/FerDom92/task-manager-pro/internal/shared"
)

// ErrUnauthenticated indicates no verified caller identity reached the
// guard; the upstream auth middleware did not run or rejected the caller.
var ErrUnauthenticated = errors.New("permissions: caller not authenticated")

// DeniedError is a permission denial carrying the resolver's reason.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return e.Reason
}

// GuardInput is the transport-independent guard contract: the adapter
// fills in whatever identifiers the request carries.
type GuardInput struct {
	CallerID   string
	ResourceID string
}

// Guard enforces a statically declared action in front of an operation.
// It converts resolver output into exactly one of three rejection
// categories: ErrUnauthenticated, ErrTaskNotFound/ErrProjectNotFound, or
// DeniedError. A nil return means the operation may proceed unmodified.
type Guard struct {
	service *Service
	logger  *slog.Logger
}

// NewGuard constructs a Guard.
func NewGuard(service *Service, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{service: service, logger: logger}
}

// CheckTask enforces a task action. An empty action or resource id is a
// pass-through: unrestricted operations and collection-level operations
// are authorized by query scoping in the data layer, not here.
func (g *Guard) CheckTask(ctx context.Context, in GuardInput, action TaskAction) error {
	if action == "" {
		return nil
	}
	if in.CallerID == "" {
		return ErrUnauthenticated
	}
	if in.ResourceID == "" {
		return nil
	}
	check, err := g.service.CanAccessTask(ctx, in.CallerID, in.ResourceID, action)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return &DeniedError{Reason: check.Reason}
	}
	return nil
}

// CheckProject enforces a project action with the same contract as CheckTask.
func (g *Guard) CheckProject(ctx context.Context, in GuardInput, action ProjectAction) error {
	if action == "" {
		return nil
	}
	if in.CallerID == "" {
		return ErrUnauthenticated
	}
	if in.ResourceID == "" {
		return nil
	}
	check, err := g.service.CanAccessProject(ctx, in.CallerID, in.ResourceID, action)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return &DeniedError{Reason: check.Reason}
	}
	return nil
}

// RequireTask returns chi middleware enforcing a task action for routes
// carrying an {id} URL parameter.
func (g *Guard) RequireTask(action TaskAction) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in := GuardInput{
				CallerID:   shared.UserIDFromContext(r.Context()),
				ResourceID: chi.URLParam(r, "id"),
			}
			if err := g.CheckTask(r.Context(), in, action); err != nil {
				g.reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireProject returns chi middleware enforcing a project action for
// routes carrying an {id} URL parameter.
func (g *Guard) RequireProject(action ProjectAction) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in := GuardInput{
				CallerID:   shared.UserIDFromContext(r.Context()),
				ResourceID: chi.URLParam(r, "id"),
			}
			if err := g.CheckProject(r.Context(), in, action); err != nil {
				g.reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// reject maps guard rejections onto the transport. Denied probes receive
// 403 with the reason; only a genuinely absent resource yields 404.
func (g *Guard) reject(w http.ResponseWriter, r *http.Request, err error) {
	var denied *DeniedError
	switch {
	case errors.Is(err, ErrUnauthenticated):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
	case errors.Is(err, ErrTaskNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", ReasonTaskNotFound)
	case errors.Is(err, ErrProjectNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", ReasonProjectNotFound)
	case errors.As(err, &denied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", denied.Reason)
	default:
		g.logger.Error("permission check failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

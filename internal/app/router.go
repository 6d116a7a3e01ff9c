package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/FerDom92/task-manager-pro/internal/auth"
	"github.com/FerDom92/task-manager-pro/internal/categories"
	"github.com/FerDom92/task-manager-pro/internal/dashboard"
	"github.com/FerDom92/task-manager-pro/internal/notifications"
	"github.com/FerDom92/task-manager-pro/internal/observability"
	"github.com/FerDom92/task-manager-pro/internal/permissions"
	"github.com/FerDom92/task-manager-pro/internal/projects"
	"github.com/FerDom92/task-manager-pro/internal/tasks"
	"github.com/FerDom92/task-manager-pro/internal/users"
	"github.com/FerDom92/task-manager-pro/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	AuthMiddleware       *auth.Middleware
	AuthHandler          *auth.Handler
	TasksHandler         *tasks.Handler
	ProjectsHandler      *projects.Handler
	CategoriesHandler    *categories.Handler
	NotificationsHandler *notifications.Handler
	DashboardHandler     *dashboard.Handler
	UsersHandler         *users.Handler
	PermissionsHandler   *permissions.Handler
	JobHandler           *jobs.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r, params.AuthMiddleware.RequireAuth)
	})

	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireAuth)

		r.Route("/tasks", func(r chi.Router) {
			params.TasksHandler.MountRoutes(r)
			params.PermissionsHandler.MountTaskRoutes(r)
		})
		r.Route("/projects", func(r chi.Router) {
			params.ProjectsHandler.MountRoutes(r)
			params.PermissionsHandler.MountProjectRoutes(r)
		})
		r.Route("/categories", params.CategoriesHandler.MountRoutes)
		r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

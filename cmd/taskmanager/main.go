package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/FerDom92/task-manager-pro/internal/app"
	"github.com/FerDom92/task-manager-pro/internal/auth"
	"github.com/FerDom92/task-manager-pro/internal/categories"
	"github.com/FerDom92/task-manager-pro/internal/dashboard"
	"github.com/FerDom92/task-manager-pro/internal/notifications"
	"github.com/FerDom92/task-manager-pro/internal/observability"
	"github.com/FerDom92/task-manager-pro/internal/permissions"
	"github.com/FerDom92/task-manager-pro/internal/platform/db"
	"github.com/FerDom92/task-manager-pro/internal/projects"
	"github.com/FerDom92/task-manager-pro/internal/tasks"
	"github.com/FerDom92/task-manager-pro/internal/users"
	"github.com/FerDom92/task-manager-pro/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, redisClient)
	authMiddleware := auth.NewMiddleware(tokens)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	permissionsService := permissions.NewService(permissions.NewRepository(dbpool))
	guard := permissions.NewGuard(permissionsService, logger)
	permissionsHandler := permissions.NewHandler(logger, permissionsService)

	enqueuer := jobs.NewEnqueuer(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := enqueuer.Close(); err != nil {
			logger.Warn("enqueuer close", slog.Any("error", err))
		}
	}()

	tasksRepo := tasks.NewRepository(dbpool)
	tasksService := tasks.NewService(tasksRepo, guard, enqueuer, logger)
	tasksHandler := tasks.NewHandler(logger, tasksService, guard)

	projectsRepo := projects.NewRepository(dbpool)
	projectsService := projects.NewService(projectsRepo, enqueuer, logger)
	projectsHandler := projects.NewHandler(logger, projectsService, tasksService, guard)

	categoriesHandler := categories.NewHandler(logger, categories.NewRepository(dbpool))

	notificationsService := notifications.NewService(notifications.NewRepository(dbpool))
	notificationsHandler := notifications.NewHandler(logger, notificationsService)

	dashboardService := dashboard.NewService(dashboard.NewRepository(dbpool))
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	usersHandler := users.NewHandler(logger, users.NewRepository(dbpool))

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		AuthMiddleware:       authMiddleware,
		AuthHandler:          authHandler,
		TasksHandler:         tasksHandler,
		ProjectsHandler:      projectsHandler,
		CategoriesHandler:    categoriesHandler,
		NotificationsHandler: notificationsHandler,
		DashboardHandler:     dashboardHandler,
		UsersHandler:         usersHandler,
		PermissionsHandler:   permissionsHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

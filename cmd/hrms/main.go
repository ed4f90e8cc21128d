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

	"github.com/atlas-hrms/atlas-hrms/internal/agents"
	"github.com/atlas-hrms/atlas-hrms/internal/analytics"
	"github.com/atlas-hrms/atlas-hrms/internal/app"
	"github.com/atlas-hrms/atlas-hrms/internal/auth"
	"github.com/atlas-hrms/atlas-hrms/internal/employees"
	"github.com/atlas-hrms/atlas-hrms/internal/observability"
	platformcache "github.com/atlas-hrms/atlas-hrms/internal/platform/cache"
	platformdb "github.com/atlas-hrms/atlas-hrms/internal/platform/db"
	"github.com/atlas-hrms/atlas-hrms/internal/rbac"
	"github.com/atlas-hrms/atlas-hrms/internal/recruitment"
	"github.com/atlas-hrms/atlas-hrms/internal/settings"
	"github.com/atlas-hrms/atlas-hrms/internal/shared"
	"github.com/atlas-hrms/atlas-hrms/internal/users"
	"github.com/atlas-hrms/atlas-hrms/jobs"
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

	dbpool, err := platformdb.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := platformcache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "hrms_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo, auditLogger, logger, rbac.ServiceConfig{StrictNames: cfg.StrictPermissionNames})
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	rolesHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	analyticsRepo := analytics.NewRepository(dbpool)
	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache)
	analyticsHandler := analytics.NewHandler(logger, analyticsService, rbacMiddleware)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, auditLogger, logger, &jobs.UserNotifier{Client: jobsClient}, analyticsService)
	usersHandler := users.NewHandler(logger, usersService, rbacService, rbacMiddleware)

	employeesRepo := employees.NewRepository(dbpool)
	employeesService := employees.NewService(employeesRepo, analyticsService, logger)
	employeesHandler := employees.NewHandler(logger, employeesService, rbacMiddleware)

	recruitmentRepo := recruitment.NewRepository(dbpool)
	recruitmentService := recruitment.NewService(recruitmentRepo)
	recruitmentHandler := recruitment.NewHandler(logger, recruitmentService, rbacMiddleware)

	agentsRepo := agents.NewRepository(dbpool)
	agentsService := agents.NewService(agentsRepo)
	agentsHandler := agents.NewHandler(logger, agentsService, rbacMiddleware)

	settingsRepo := settings.NewRepository(dbpool)
	settingsService := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(logger, settingsService, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		RolesHandler:       rolesHandler,
		UsersHandler:       usersHandler,
		EmployeesHandler:   employeesHandler,
		RecruitmentHandler: recruitmentHandler,
		AgentsHandler:      agentsHandler,
		SettingsHandler:    settingsHandler,
		AnalyticsHandler:   analyticsHandler,
		JobHandler:         jobHandler,
		Pool:               dbpool,
		Metrics:            metrics,
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

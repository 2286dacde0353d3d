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

	"github.com/quarrydesk/quarrydesk/internal/accounting/accounts"
	"github.com/quarrydesk/quarrydesk/internal/accounting/journals"
	"github.com/quarrydesk/quarrydesk/internal/accounting/periods"
	"github.com/quarrydesk/quarrydesk/internal/accounting/reports"
	"github.com/quarrydesk/quarrydesk/internal/app"
	"github.com/quarrydesk/quarrydesk/internal/auth"
	"github.com/quarrydesk/quarrydesk/internal/expenses"
	"github.com/quarrydesk/quarrydesk/internal/export"
	"github.com/quarrydesk/quarrydesk/internal/observability"
	"github.com/quarrydesk/quarrydesk/internal/platform/cache"
	"github.com/quarrydesk/quarrydesk/internal/platform/db"
	"github.com/quarrydesk/quarrydesk/internal/sales"
	"github.com/quarrydesk/quarrydesk/internal/shared"
	"github.com/quarrydesk/quarrydesk/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "quarrydesk_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	authService := auth.NewService(auth.NewRepository(pool))
	accountsService := accounts.NewService(accounts.NewRepository(pool), auditLogger)
	journalsService := journals.NewService(journals.NewRepository(pool), auditLogger)
	journalsService.WithMetrics(metrics)
	periodsService := periods.NewService(periods.NewRepository(pool), auditLogger, jobs.PeriodNotifier{Client: jobClient})
	reportsService := reports.NewService(reports.NewRepository(pool))
	salesService := sales.NewService(sales.NewRepository(pool), journalsService, accountsService)
	expensesService := expenses.NewService(expenses.NewRepository(pool), journalsService, accountsService)

	router := app.NewRouter(app.RouterParams{
		Middleware: app.MiddlewareConfig{
			Logger:         logger,
			Config:         cfg,
			SessionManager: sessionManager,
			CSRFManager:    csrfManager,
			Metrics:        metrics,
		},
		Pool:    pool,
		Redis:   redisClient,
		Metrics: metrics,

		AuthHandler:     auth.NewHandler(logger, authService, sessionManager, csrfManager),
		AccountsHandler: accounts.NewHandler(logger, accountsService),
		JournalsHandler: journals.NewHandler(logger, journalsService),
		PeriodsHandler:  periods.NewHandler(logger, periodsService),
		ReportsHandler:  reports.NewHandler(logger, reportsService, export.Renderer{}),
		SalesHandler:    sales.NewHandler(logger, salesService),
		ExpensesHandler: expenses.NewHandler(logger, expensesService),
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

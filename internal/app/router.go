package app

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/quarrydesk/quarrydesk/internal/accounting/accounts"
	"github.com/quarrydesk/quarrydesk/internal/accounting/journals"
	"github.com/quarrydesk/quarrydesk/internal/accounting/periods"
	"github.com/quarrydesk/quarrydesk/internal/accounting/reports"
	"github.com/quarrydesk/quarrydesk/internal/auth"
	"github.com/quarrydesk/quarrydesk/internal/expenses"
	"github.com/quarrydesk/quarrydesk/internal/observability"
	"github.com/quarrydesk/quarrydesk/internal/platform/httpx"
	"github.com/quarrydesk/quarrydesk/internal/sales"
	"github.com/quarrydesk/quarrydesk/internal/shared"
)

// RouterParams collects everything NewRouter needs to assemble the HTTP API.
type RouterParams struct {
	Middleware MiddlewareConfig
	Pool       *pgxpool.Pool
	Redis      *redis.Client
	Metrics    *observability.Metrics

	AuthHandler     *auth.Handler
	AccountsHandler *accounts.Handler
	JournalsHandler *journals.Handler
	PeriodsHandler  *periods.Handler
	ReportsHandler  *reports.Handler
	SalesHandler    *sales.Handler
	ExpensesHandler *expenses.Handler
}

// NewRouter wires middleware, health and metrics endpoints, and the
// quarry-scoped API routes.
func NewRouter(params RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(params.Middleware) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		status := map[string]string{"status": "ok", "db": "ok", "redis": "ok"}
		code := http.StatusOK
		if params.Pool != nil {
			if err := params.Pool.Ping(ctx); err != nil {
				status["status"], status["db"] = "degraded", "down"
				code = http.StatusServiceUnavailable
			}
		}
		if params.Redis != nil {
			if err := params.Redis.Ping(ctx).Err(); err != nil {
				status["status"], status["redis"] = "degraded", "down"
				code = http.StatusServiceUnavailable
			}
		}
		httpx.JSON(w, code, status)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.AuthHandler != nil {
		r.Route("/api/auth", params.AuthHandler.MountRoutes)
	}

	r.Route("/api/quarries/{quarryID}", func(r chi.Router) {
		r.Use(quarryScope)
		r.Route("/accounts", params.AccountsHandler.MountRoutes)
		r.Route("/journal-entries", params.JournalsHandler.MountRoutes)
		r.Route("/periods", params.PeriodsHandler.MountRoutes)
		r.Route("/reports", params.ReportsHandler.MountRoutes)
		r.Route("/sales", params.SalesHandler.MountRoutes)
		r.Route("/expenses", params.ExpensesHandler.MountRoutes)
	})

	return r
}

// quarryScope resolves the quarry id path parameter into the request context.
func quarryScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "quarryID"), 10, 64)
		if err != nil || id <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "quarry id must be numeric")
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithQuarry(r.Context(), id)))
	})
}

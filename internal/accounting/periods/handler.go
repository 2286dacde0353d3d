package periods

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quarrydesk/quarrydesk/internal/platform/httpx"
	"github.com/quarrydesk/quarrydesk/internal/shared"
)

// Handler exposes accounting period management over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the period routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listYear)
	r.Get("/current", h.current)
	r.Post("/seed", h.seedYear)
	r.Get("/{periodID}", h.get)
	r.Post("/{periodID}/close", h.close)
}

type seedYearRequest struct {
	FiscalYear int `json:"fiscal_year" validate:"required,min=2000,max=2100"`
}

func (h *Handler) seedYear(w http.ResponseWriter, r *http.Request) {
	var req seedYearRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	quarryID := shared.QuarryFromContext(r.Context())
	seeded, err := h.service.SeedYear(r.Context(), quarryID, req.FiscalYear, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("failed to seed fiscal year", slog.Int("fiscal_year", req.FiscalYear), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"periods": seeded})
}

type closePeriodRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "periodID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "period id must be numeric")
		return
	}
	var req closePeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	closed, err := h.service.Close(r.Context(), id, shared.ActorFromContext(r.Context()), req.Notes)
	if err != nil {
		h.logger.Error("failed to close period", slog.Int64("period_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, closed)
}

func (h *Handler) listYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("fiscal_year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "fiscal_year query parameter is required")
		return
	}
	quarryID := shared.QuarryFromContext(r.Context())
	items, err := h.service.ListYear(r.Context(), quarryID, year)
	if err != nil {
		h.logger.Error("failed to list periods", slog.Int("fiscal_year", year), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": items})
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be formatted YYYY-MM-DD")
			return
		}
		date = parsed
	}
	quarryID := shared.QuarryFromContext(r.Context())
	period, err := h.service.FindByDate(r.Context(), quarryID, date)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "periodID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "period id must be numeric")
		return
	}
	period, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

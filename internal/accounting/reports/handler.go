package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/quarrydesk/quarrydesk/internal/platform/httpx"
	"github.com/quarrydesk/quarrydesk/internal/shared"
)

// Exporter renders a trial balance into a downloadable document.
type Exporter interface {
	TrialBalanceCSV(tb TrialBalance, from, to time.Time) ([]byte, error)
	TrialBalanceXLSX(tb TrialBalance, from, to time.Time) ([]byte, error)
	TrialBalancePDF(tb TrialBalance, from, to time.Time) ([]byte, error)
}

// Handler serves trial balance reports and their export formats.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	exporter Exporter
}

func NewHandler(logger *slog.Logger, service *Service, exporter Exporter) *Handler {
	return &Handler{logger: logger, service: service, exporter: exporter}
}

// MountRoutes registers the report routes. Exports are rate limited since
// rendering a workbook or PDF is markedly heavier than the JSON view.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.trialBalance)
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Get("/trial-balance/export", h.exportTrialBalance)
	})
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	quarryID := shared.QuarryFromContext(r.Context())
	tb, err := h.service.TrialBalance(r.Context(), quarryID, from, to)
	if err != nil {
		h.logger.Error("failed to build trial balance", slog.Int64("quarry_id", quarryID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"trial_balance": tb,
		"balanced":      tb.Balanced(),
	})
}

func (h *Handler) exportTrialBalance(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	format := r.URL.Query().Get("format")
	quarryID := shared.QuarryFromContext(r.Context())
	tb, err := h.service.TrialBalance(r.Context(), quarryID, from, to)
	if err != nil {
		h.logger.Error("failed to build trial balance", slog.Int64("quarry_id", quarryID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	var (
		payload     []byte
		contentType string
		extension   string
	)
	switch format {
	case "", "csv":
		payload, err = h.exporter.TrialBalanceCSV(tb, from, to)
		contentType = "text/csv"
		extension = "csv"
	case "xlsx":
		payload, err = h.exporter.TrialBalanceXLSX(tb, from, to)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		extension = "xlsx"
	case "pdf":
		payload, err = h.exporter.TrialBalancePDF(tb, from, to)
		contentType = "application/pdf"
		extension = "pdf"
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "format must be csv, xlsx, or pdf")
		return
	}
	if err != nil {
		h.logger.Error("failed to export trial balance", slog.String("format", format), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	filename := fmt.Sprintf("trial-balance-%s-%s.%s", from.Format("20060102"), to.Format("20060102"), extension)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("from must be formatted YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("to must be formatted YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must not precede from")
	}
	return from, to, nil
}

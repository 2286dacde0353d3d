package expenses

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/quarrydesk/quarrydesk/internal/platform/httpx"
	"github.com/quarrydesk/quarrydesk/internal/shared"
)

// Handler exposes operating expense recording over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the expense routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.record)
	r.Get("/{expenseID}", h.get)
}

type recordExpenseRequest struct {
	ExpenseDate string          `json:"expense_date" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidFrom    string          `json:"paid_from" validate:"required,oneof=CASH BANK"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req recordExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	expenseDate, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "expense_date must be formatted YYYY-MM-DD")
		return
	}
	in := RecordExpenseInput{
		QuarryID:    shared.QuarryFromContext(r.Context()),
		ExpenseDate: expenseDate,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		PaidFrom:    PaymentMethod(req.PaidFrom),
		ActorID:     shared.ActorFromContext(r.Context()),
	}
	if err := in.Validate(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	expense, err := h.service.RecordExpense(r.Context(), in)
	if err != nil {
		h.logger.Error("failed to record expense", slog.String("category", req.Category), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, expense)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	quarryID := shared.QuarryFromContext(r.Context())
	page := shared.ParsePagination(r)
	items, err := h.service.List(r.Context(), quarryID, page.PerPage, page.Offset())
	if err != nil {
		h.logger.Error("failed to list expenses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"expenses": items, "page": page.Page})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "expenseID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "expense id must be numeric")
		return
	}
	expense, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

package sales

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

// Handler exposes aggregate sale recording over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the sales routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.record)
	r.Get("/{saleID}", h.get)
}

type recordSaleRequest struct {
	SaleDate          string          `json:"sale_date" validate:"required"`
	CustomerName      string          `json:"customer_name"`
	ProductName       string          `json:"product_name" validate:"required"`
	Quantity          decimal.Decimal `json:"quantity"`
	PricePerUnit      decimal.Decimal `json:"price_per_unit"`
	CommissionPerUnit decimal.Decimal `json:"commission_per_unit"`
	LoadersFeeRate    decimal.Decimal `json:"loaders_fee_rate"`
	LandRateFee       decimal.Decimal `json:"land_rate_fee"`
	RejectsFee        decimal.Decimal `json:"rejects_fee"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req recordSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saleDate, err := time.Parse("2006-01-02", req.SaleDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "sale_date must be formatted YYYY-MM-DD")
		return
	}
	in := RecordSaleInput{
		QuarryID:          shared.QuarryFromContext(r.Context()),
		SaleDate:          saleDate,
		CustomerName:      req.CustomerName,
		ProductName:       req.ProductName,
		Quantity:          req.Quantity,
		PricePerUnit:      req.PricePerUnit,
		CommissionPerUnit: req.CommissionPerUnit,
		LoadersFeeRate:    req.LoadersFeeRate,
		LandRateFee:       req.LandRateFee,
		RejectsFee:        req.RejectsFee,
		ActorID:           shared.ActorFromContext(r.Context()),
	}
	if err := in.Validate(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sale, err := h.service.RecordSale(r.Context(), in)
	if err != nil {
		h.logger.Error("failed to record sale", slog.String("product", req.ProductName), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	quarryID := shared.QuarryFromContext(r.Context())
	page := shared.ParsePagination(r)
	items, err := h.service.List(r.Context(), quarryID, page.PerPage, page.Offset())
	if err != nil {
		h.logger.Error("failed to list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales": items, "page": page.Page})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "sale id must be numeric")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSaleNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}
